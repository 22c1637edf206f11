package cmd

import (
	"fmt"
	"strings"

	"github.com/spigell/collabspace/internal/directory"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List student profiles in the directory",
	Run: func(cmd *cobra.Command, _ []string) {
		log, config := setup()
		if err := listUsers(cmd, config, log); err != nil {
			log.Fatal("listing users", zap.Error(err))
		}
	},
}

var usersAddCmd = &cobra.Command{
	Use:   "add <id> <name>",
	Short: "Add or update a student profile",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		log, config := setup()
		if err := addUser(cmd, config, log, args[0], args[1]); err != nil {
			log.Fatal("adding user", zap.Error(err))
		}
	},
}

var usersSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo users and projects",
	Run: func(cmd *cobra.Command, _ []string) {
		log, config := setup()

		store, err := openDirectory(cmd.Context(), config, log)
		if err != nil {
			log.Fatal("opening directory", zap.Error(err))
		}
		defer store.Close()

		if err := store.Seed(cmd.Context()); err != nil {
			log.Fatal("seeding directory", zap.Error(err))
		}
		log.Info("demo directory loaded",
			zap.Int("users", len(directory.DemoUsers)),
			zap.Int("projects", len(directory.DemoProjects)),
		)
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersAddCmd, usersSeedCmd)

	usersAddCmd.Flags().String("department", "", "department")
	usersAddCmd.Flags().Int("year", 0, "year of study")
	usersAddCmd.Flags().StringSlice("skills", nil, "comma separated skills")
	usersAddCmd.Flags().StringSlice("interests", nil, "comma separated interests")
	usersAddCmd.Flags().String("bio", "", "short bio")
	usersAddCmd.Flags().String("college", "", "college")
}

func listUsers(cmd *cobra.Command, config *Config, log *zap.Logger) error {
	store, err := openDirectory(cmd.Context(), config, log)
	if err != nil {
		return err
	}
	defer store.Close()

	users, err := store.ListUsers(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput() {
		return printJSON(out, users)
	}
	for _, u := range users {
		fmt.Fprintf(out, "%-6s %-16s %-26s year %d  skills: %s\n", u.ID, u.Name, u.Department, u.Year, strings.Join(u.Skills, ", "))
	}
	return nil
}

func addUser(cmd *cobra.Command, config *Config, log *zap.Logger, id, name string) error {
	flags := cmd.Flags()
	department, _ := flags.GetString("department")
	year, _ := flags.GetInt("year")
	skills, _ := flags.GetStringSlice("skills")
	interests, _ := flags.GetStringSlice("interests")
	bio, _ := flags.GetString("bio")
	college, _ := flags.GetString("college")

	store, err := openDirectory(cmd.Context(), config, log)
	if err != nil {
		return err
	}
	defer store.Close()

	user := directory.User{
		ID:         id,
		Name:       name,
		Department: department,
		Year:       year,
		Skills:     skills,
		Interests:  interests,
		Bio:        bio,
		College:    college,
	}
	if err := store.UpsertUser(cmd.Context(), user); err != nil {
		return err
	}

	log.Info("user saved", zap.String("user_id", id))
	return nil
}
