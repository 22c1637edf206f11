package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spigell/collabspace/internal/directory"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var teamCmd = &cobra.Command{
	Use:   "team <project description...>",
	Short: "Assemble a team for a project description",
	Args:  cobra.ArbitraryArgs,
	Run: func(cmd *cobra.Command, args []string) {
		log, config := setup()
		if err := team(cmd, config, log, strings.Join(args, " ")); err != nil {
			log.Fatal("building team", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(teamCmd)

	teamCmd.Flags().String("project", "", "project id; its description is used when none is given and the team can be added to it")
	teamCmd.Flags().BoolP("auto-approve", "y", false, "add the proposed team to the project without asking")
}

func team(cmd *cobra.Command, config *Config, log *zap.Logger, description string) error {
	ctx := cmd.Context()

	store, err := openDirectory(ctx, config, log)
	if err != nil {
		return err
	}
	defer store.Close()

	projectID, _ := cmd.Flags().GetString("project")

	var project *directory.Project
	var exclude []string
	if projectID != "" {
		if project, err = store.GetProject(ctx, projectID); err != nil {
			return err
		}
		exclude = project.Members
		if strings.TrimSpace(description) == "" {
			description = project.Name + ": " + project.Description
		}
	}

	candidates, err := preparePool(ctx, store, config, log, exclude...)
	if err != nil {
		return err
	}

	gateway, err := newGateway(cmd, config, log)
	if err != nil {
		return err
	}

	plan, err := gateway.BuildTeam(ctx, description, candidates)
	if err != nil {
		return err
	}

	log.Info("team assembled", zap.Int("members", len(plan.Members)), zap.Int("predicted_success", plan.SuccessScore))

	users, err := usersByID(ctx, store)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput() {
		if err := printJSON(out, plan); err != nil {
			return err
		}
	} else {
		if len(plan.Members) == 0 {
			fmt.Fprintln(out, "No team could be assembled.")
			return nil
		}
		fmt.Fprintf(out, "Predicted success: %d%%\n", plan.SuccessScore)
		if len(plan.Roles) > 0 {
			fmt.Fprintf(out, "Roles: %s\n", strings.Join(plan.Roles, ", "))
		}
		for _, m := range plan.Members {
			fmt.Fprintf(out, "  %-20s %s (%s)\n      %s\n", m.Role, nameOf(users, m.CandidateID), m.CandidateID, m.Justification)
		}
	}

	if project == nil || len(plan.Members) == 0 {
		return nil
	}

	approve, _ := cmd.Flags().GetBool("auto-approve")
	if !approve {
		confirm := promptui.Prompt{
			Label:     fmt.Sprintf("Add %d members to %s", len(plan.Members), project.Name),
			IsConfirm: true,
		}
		if _, err := confirm.Run(); err != nil {
			if errors.Is(err, promptui.ErrAbort) || errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				log.Info("exiting", zap.String("reason", "team not confirmed"))
				return nil
			}
			return err
		}
	}

	for _, m := range plan.Members {
		if err := store.AddMember(ctx, project.ID, m.CandidateID); err != nil {
			return err
		}
	}
	log.Info("team added to project", zap.String("project_id", project.ID), zap.Int("members", len(plan.Members)))

	return nil
}
