package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var careerCmd = &cobra.Command{
	Use:   "career [skills...]",
	Short: "Suggest roles, missing skills and a learning path",
	Long:  "Suggest roles, missing skills and a learning path. Skills come from the arguments (comma or space separated) or from a user's profile via --user.",
	Run: func(cmd *cobra.Command, args []string) {
		log, config := setup()
		if err := career(cmd, config, log, args); err != nil {
			log.Fatal("navigating career", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(careerCmd)

	careerCmd.Flags().String("user", "", "take skills from this user's profile")
}

func career(cmd *cobra.Command, config *Config, log *zap.Logger, args []string) error {
	ctx := cmd.Context()

	skills := splitSkills(args)
	if userID, _ := cmd.Flags().GetString("user"); userID != "" {
		store, err := openDirectory(ctx, config, log)
		if err != nil {
			return err
		}
		user, err := store.GetUser(ctx, userID)
		store.Close()
		if err != nil {
			return err
		}
		skills = append(user.Skills, skills...)
	}

	gateway, err := newGateway(cmd, config, log)
	if err != nil {
		return err
	}

	plan, err := gateway.NavigateCareer(ctx, skills)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput() {
		return printJSON(out, plan)
	}

	fmt.Fprintf(out, "Recommended roles: %s\n", strings.Join(plan.RecommendedRoles, ", "))
	fmt.Fprintf(out, "Missing skills:    %s\n", strings.Join(plan.MissingSkills, ", "))
	fmt.Fprintln(out, "Learning path:")
	for _, step := range plan.LearningPath {
		fmt.Fprintf(out, "  %s\n", step)
	}
	return nil
}

// splitSkills accepts "Go, SQL" as well as "Go SQL".
func splitSkills(args []string) []string {
	var skills []string
	for _, arg := range args {
		for _, s := range strings.Split(arg, ",") {
			if s = strings.TrimSpace(s); s != "" {
				skills = append(skills, s)
			}
		}
	}
	return skills
}
