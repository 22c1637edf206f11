package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spigell/collabspace/internal/backend"
	"github.com/spigell/collabspace/internal/directory"
	"github.com/spigell/collabspace/internal/logger"
	"github.com/spigell/collabspace/internal/matching"
	"github.com/spigell/collabspace/internal/pool"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	dbFileName     = "collabspace.db"
	demoMarkerName = "demo-mode"
)

// Mode sources, reported by `demo status` and logged at startup.
const (
	sourceFlag    = "flag"
	sourceConfig  = "config"
	sourceMarker  = "marker"
	sourceDefault = "default"
	sourceBackend = "no backend configured"
)

// setup loads the logger and config shared by every command. Failures are fatal.
func setup() (*zap.Logger, *Config) {
	logger, err := logger.New(app, viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	pretty, _ := json.MarshalIndent(redacted(config), "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	return logger, config
}

// redacted returns a copy of config that is safe to log.
func redacted(config *Config) Config {
	c := *config
	if c.AI != nil && c.AI.Gemini != nil {
		ai := *c.AI
		gemini := *c.AI.Gemini
		if gemini.APIKey != "" {
			gemini.APIKey = "***"
		}
		ai.Gemini = &gemini
		c.AI = &ai
	}
	return c
}

func openDirectory(ctx context.Context, config *Config, log *zap.Logger) (*directory.SQLiteStore, error) {
	if err := os.MkdirAll(config.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	path := filepath.Join(config.DataDir, dbFileName)
	store, err := directory.NewSQLiteStore(path)
	if err != nil {
		return nil, err
	}

	users, err := store.ListUsers(ctx)
	if err != nil {
		store.Close()
		return nil, err
	}
	if len(users) == 0 {
		log.Info("empty directory, loading demo users and projects", zap.String("path", path))
		if err := store.Seed(ctx); err != nil {
			store.Close()
			return nil, err
		}
	}

	return store, nil
}

// resolveMode picks the matching mode: --demo flag, then the demo-mode config
// key (or COLLABSPACE_DEMO_MODE), then the marker written by `demo on`.
func resolveMode(flags *cobra.Command, config *Config) (matching.Mode, string, error) {
	if flag := flags.Flag("demo"); flag != nil && flag.Changed {
		demo, err := strconv.ParseBool(flag.Value.String())
		if err != nil {
			return "", "", fmt.Errorf("parsing --demo: %w", err)
		}
		return modeFromDemo(demo), sourceFlag, nil
	}

	if value := strings.TrimSpace(config.DemoMode); value != "" {
		if demo, err := strconv.ParseBool(value); err == nil {
			return modeFromDemo(demo), sourceConfig, nil
		}
		mode, err := matching.ParseMode(value)
		if err != nil {
			return "", "", fmt.Errorf("parsing demo-mode: %w", err)
		}
		return mode, sourceConfig, nil
	}

	on, err := demoMarkerSet(config.DataDir)
	if err != nil {
		return "", "", err
	}
	if on {
		return matching.ModeOffline, sourceMarker, nil
	}

	return matching.ModeOnline, sourceDefault, nil
}

func modeFromDemo(demo bool) matching.Mode {
	if demo {
		return matching.ModeOffline
	}
	return matching.ModeOnline
}

func demoMarkerPath(dataDir string) string {
	return filepath.Join(dataDir, demoMarkerName)
}

func demoMarkerSet(dataDir string) (bool, error) {
	_, err := os.Stat(demoMarkerPath(dataDir))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("checking demo marker: %w", err)
}

func setDemoMarker(dataDir string, on bool) error {
	path := demoMarkerPath(dataDir)
	if !on {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("removing demo marker: %w", err)
		}
		return nil
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(string(matching.ModeOffline)+"\n"), 0o644); err != nil {
		return fmt.Errorf("writing demo marker: %w", err)
	}
	return nil
}

// newGateway builds the matching gateway. Without a backend URL the gateway
// runs offline whatever the resolved mode.
func newGateway(cmd *cobra.Command, config *Config, log *zap.Logger) (*matching.Gateway, error) {
	mode, source, err := resolveMode(cmd, config)
	if err != nil {
		return nil, err
	}

	var remote matching.Remote
	url := strings.TrimSpace(config.Backend.URL)
	if url != "" {
		client := backend.New(url, 2*config.Backend.Timeout, log, config.Backend.MaxLogLength)
		if ua := strings.TrimSpace(config.Backend.UserAgent); ua != "" {
			client.UserAgent = ua
		}
		remote = client
	} else if mode == matching.ModeOnline {
		source = sourceBackend
	}

	gwLogger := logger.WithGatewayFields(log, string(mode), url)
	gateway := matching.NewGateway(remote, matching.Options{Mode: mode, Timeout: config.Backend.Timeout}, gwLogger)

	gwLogger.Debug("matching gateway ready",
		zap.String("effective_mode", string(gateway.Mode())),
		zap.String("mode_source", source),
	)

	return gateway, nil
}

// preparePool snapshots the directory and runs the configured pool steps.
// exclude lists ids that must never be suggested, such as current members.
func preparePool(ctx context.Context, store *directory.SQLiteStore, config *Config, log *zap.Logger, exclude ...string) ([]matching.Candidate, error) {
	candidates, err := store.Pool(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading candidate pool: %w", err)
	}

	steps := []pool.Filter{
		pool.NewExcludeIDs(exclude...),
		pool.NewExcludeFile(config.Pool.ExcludeFile),
		pool.NewDepartment(config.Pool.Departments...),
		pool.NewLimit(config.Pool.Limit),
	}

	prepared, err := pool.Run(ctx, log, steps, candidates)
	if err != nil {
		return nil, fmt.Errorf("preparing candidate pool: %w", err)
	}

	log.Info("candidate pool ready", zap.Int("directory", len(candidates)), zap.Int("pool", len(prepared)))
	return prepared, nil
}

func jsonOutput() bool {
	return strings.EqualFold(strings.TrimSpace(viper.GetString("output")), "json")
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func nameOf(users map[string]directory.User, id string) string {
	if u, ok := users[id]; ok && u.Name != "" {
		return u.Name
	}
	return id
}

func usersByID(ctx context.Context, store *directory.SQLiteStore) (map[string]directory.User, error) {
	users, err := store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]directory.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return byID, nil
}
