package cmd

import (
	"fmt"
	"strings"

	"github.com/spigell/collabspace/internal/directory"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List projects",
	Run: func(cmd *cobra.Command, _ []string) {
		log, config := setup()
		if err := listProjects(cmd, config, log); err != nil {
			log.Fatal("listing projects", zap.Error(err))
		}
	},
}

var projectsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a project",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		log, config := setup()
		if err := createProject(cmd, config, log, args[0]); err != nil {
			log.Fatal("creating project", zap.Error(err))
		}
	},
}

var projectsJoinCmd = &cobra.Command{
	Use:   "join <project-id> <user-id>",
	Short: "Add a user to a project",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		log, config := setup()

		store, err := openDirectory(cmd.Context(), config, log)
		if err != nil {
			log.Fatal("opening directory", zap.Error(err))
		}
		defer store.Close()

		if err := store.AddMember(cmd.Context(), args[0], args[1]); err != nil {
			log.Fatal("joining project", zap.Error(err))
		}
		log.Info("added member to project", zap.String("project_id", args[0]), zap.String("user_id", args[1]))
	},
}

func init() {
	rootCmd.AddCommand(projectsCmd)
	projectsCmd.AddCommand(projectsCreateCmd, projectsJoinCmd)

	projectsCreateCmd.Flags().String("description", "", "what the project is about")
	projectsCreateCmd.Flags().String("created-by", "", "id of the creating user")
	projectsCreateCmd.Flags().StringSlice("roles", nil, "comma separated roles still needed")
	projectsCreateCmd.Flags().StringSlice("stack", nil, "comma separated tech stack")
}

func listProjects(cmd *cobra.Command, config *Config, log *zap.Logger) error {
	store, err := openDirectory(cmd.Context(), config, log)
	if err != nil {
		return err
	}
	defer store.Close()

	projects, err := store.ListProjects(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput() {
		return printJSON(out, projects)
	}
	for _, p := range projects {
		fmt.Fprintf(out, "%-38s %-20s %-9s members: %s\n", p.ID, p.Name, p.Status, strings.Join(p.Members, ", "))
		if len(p.RequiredRoles) > 0 {
			fmt.Fprintf(out, "%38s needs: %s\n", "", strings.Join(p.RequiredRoles, ", "))
		}
	}
	return nil
}

func createProject(cmd *cobra.Command, config *Config, log *zap.Logger, name string) error {
	flags := cmd.Flags()
	description, _ := flags.GetString("description")
	createdBy, _ := flags.GetString("created-by")
	roles, _ := flags.GetStringSlice("roles")
	stack, _ := flags.GetStringSlice("stack")

	store, err := openDirectory(cmd.Context(), config, log)
	if err != nil {
		return err
	}
	defer store.Close()

	id, err := store.CreateProject(cmd.Context(), directory.Project{
		Name:          name,
		Description:   description,
		CreatedBy:     createdBy,
		RequiredRoles: roles,
		TechStack:     stack,
	})
	if err != nil {
		return err
	}

	log.Info("project created", zap.String("project_id", id))
	fmt.Fprintln(cmd.OutOrStdout(), id)
	return nil
}
