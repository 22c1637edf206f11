package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spigell/collabspace/internal/directory"
	"github.com/spigell/collabspace/internal/matching"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	PromptDone = "done"
)

var findCmd = &cobra.Command{
	Use:   "find <query...>",
	Short: "Find collaborators matching a free-text query",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		log, config := setup()
		if err := find(cmd, config, log, strings.Join(args, " ")); err != nil {
			log.Fatal("finding collaborators", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(findCmd)

	findCmd.Flags().String("as", "", "id of the requesting user, never suggested")
	findCmd.Flags().String("project", "", "project id; its members are excluded and picked matches can be invited")
}

func find(cmd *cobra.Command, config *Config, log *zap.Logger, query string) error {
	ctx := cmd.Context()

	store, err := openDirectory(ctx, config, log)
	if err != nil {
		return err
	}
	defer store.Close()

	requester, _ := cmd.Flags().GetString("as")
	projectID, _ := cmd.Flags().GetString("project")

	exclude := []string{requester}
	var project *directory.Project
	if projectID != "" {
		if project, err = store.GetProject(ctx, projectID); err != nil {
			return err
		}
		exclude = append(exclude, project.Members...)
	}

	candidates, err := preparePool(ctx, store, config, log, exclude...)
	if err != nil {
		return err
	}

	gateway, err := newGateway(cmd, config, log)
	if err != nil {
		return err
	}

	matches, err := gateway.FindCollaborators(ctx, query, candidates)
	if err != nil {
		return err
	}

	log.Info("collaborator search finished", zap.Int("matches", len(matches)))

	users, err := usersByID(ctx, store)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput() {
		return printJSON(out, struct {
			Matches matching.MatchResultSet `json:"matches"`
		}{matches})
	}

	if len(matches) == 0 {
		fmt.Fprintln(out, "No collaborators found.")
		return nil
	}
	for _, m := range matches {
		fmt.Fprintf(out, "%3d%%  %s (%s)\n      %s\n", m.Score, nameOf(users, m.CandidateID), m.CandidateID, m.Justification)
	}

	if project == nil {
		return nil
	}
	return invite(ctx, store, log, project, matches, users)
}

// invite lets the user pick matches one by one and adds them to project.
func invite(ctx context.Context, store *directory.SQLiteStore, log *zap.Logger, project *directory.Project, matches matching.MatchResultSet, users map[string]directory.User) error {
	remaining := append(matching.MatchResultSet(nil), matches...)

	for len(remaining) > 0 {
		items := make([]string, 0, len(remaining)+1)
		for _, m := range remaining {
			items = append(items, fmt.Sprintf("%s %s / %d%%", m.CandidateID, nameOf(users, m.CandidateID), m.Score))
		}

		picker := promptui.Select{
			Label: fmt.Sprintf("Invite to %s? Choose and press ENTER", project.Name),
			Items: append(items, PromptDone),
		}

		_, selected, err := picker.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return nil
			}
			return err
		}
		if selected == PromptDone {
			return nil
		}

		userID := strings.Split(selected, " ")[0]
		if err := store.AddMember(ctx, project.ID, userID); err != nil {
			return err
		}
		log.Info("added member to project", zap.String("project_id", project.ID), zap.String("user_id", userID))

		next := remaining[:0]
		for _, m := range remaining {
			if m.CandidateID != userID {
				next = append(next, m)
			}
		}
		remaining = next
	}

	return nil
}
