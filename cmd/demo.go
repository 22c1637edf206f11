package cmd

import (
	"fmt"
	"strings"

	"github.com/spigell/collabspace/internal/matching"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var demoCmd = &cobra.Command{
	Use:       "demo on|off|status",
	Short:     "Persistently switch demo mode, in which the scoring backend is never contacted",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"on", "off", "status"},
	Run: func(cmd *cobra.Command, args []string) {
		log, config := setup()
		if err := demo(cmd, config, args[0]); err != nil {
			log.Fatal("switching demo mode", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

func demo(cmd *cobra.Command, config *Config, action string) error {
	switch action {
	case "on":
		if err := setDemoMarker(config.DataDir, true); err != nil {
			return err
		}
	case "off":
		if err := setDemoMarker(config.DataDir, false); err != nil {
			return err
		}
	case "status":
	default:
		return fmt.Errorf("invalid action: %s", action)
	}

	mode, source, err := resolveMode(cmd, config)
	if err != nil {
		return err
	}
	if strings.TrimSpace(config.Backend.URL) == "" && mode == matching.ModeOnline {
		mode, source = matching.ModeOffline, sourceBackend
	}

	fmt.Fprintf(cmd.OutOrStdout(), "matching mode: %s (%s)\n", mode, source)
	return nil
}
