package cmd

import (
	"context"
	"fmt"

	"github.com/spigell/collabspace/internal/ai"
	"github.com/spigell/collabspace/internal/ai/gemini"
	"github.com/spigell/collabspace/internal/logger"
	"github.com/spigell/collabspace/internal/secrets"
	"github.com/spigell/collabspace/internal/server"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the AI scoring backend used by the matching gateway",
	Run: func(cmd *cobra.Command, _ []string) {
		log, config := setup()
		if err := serve(cmd.Context(), config, log); err != nil {
			log.Fatal("serving", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "address to listen on (default :8080)")
	viper.BindPFlag("server.listen", serveCmd.Flags().Lookup("listen"))
}

func serve(ctx context.Context, config *Config, log *zap.Logger) error {
	log.Info("starting the scoring backend", zap.String("version", version))

	scorer, err := newScorer(ctx, config.AI.Gemini, log)
	if err != nil {
		return fmt.Errorf("building scorer: %w", err)
	}

	return server.New(scorer, log).Run(ctx, config.Server.Listen)
}

func newScorer(ctx context.Context, cfg *GeminiConfig, log *zap.Logger) (ai.Scorer, error) {
	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.APIKey,
		File:  cfg.APIKeyFile,
		Env:   []string{"GEMINI_API_KEY"},
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file, GEMINI_API_KEY_FILE or GEMINI_API_KEY)", err)
	}

	genLogger := logger.WithFields(
		logger.WithCommonFields(log, "gemini", cfg.Model),
		zap.Int("ai_retry_attempts", cfg.MaxRetries),
	)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Model, cfg.MaxRetries, genLogger)
	if err != nil {
		return nil, err
	}

	scorerLogger := logger.WithCommonFields(log, "gemini", generator.Model())

	return gemini.NewScorer(generator, cfg.MaxLogLength, scorerLogger), nil
}
