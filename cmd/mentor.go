package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var mentorCmd = &cobra.Command{
	Use:   "mentor <message...>",
	Short: "Ask the AI mentor for advice",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		log, config := setup()

		gateway, err := newGateway(cmd, config, log)
		if err != nil {
			log.Fatal("building gateway", zap.Error(err))
		}

		advice, err := gateway.MentorAdvice(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			log.Fatal("asking mentor", zap.Error(err))
		}

		if jsonOutput() {
			printJSON(cmd.OutOrStdout(), map[string]string{"text": advice})
			return
		}
		fmt.Fprintln(cmd.OutOrStdout(), advice)
	},
}

func init() {
	rootCmd.AddCommand(mentorCmd)
}
