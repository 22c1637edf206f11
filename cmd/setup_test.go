package cmd

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spigell/collabspace/internal/directory"
	"github.com/spigell/collabspace/internal/matching"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func demoCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().Bool("demo", false, "")
	if err := cmd.Flags().Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return cmd
}

func TestResolveMode(t *testing.T) {
	cases := []struct {
		name       string
		args       []string
		configured string
		marker     bool
		expect     matching.Mode
		source     string
	}{
		{name: "default", expect: matching.ModeOnline, source: sourceDefault},
		{name: "marker", marker: true, expect: matching.ModeOffline, source: sourceMarker},
		{name: "config bool", configured: "true", marker: false, expect: matching.ModeOffline, source: sourceConfig},
		{name: "config mode", configured: "demo", expect: matching.ModeOffline, source: sourceConfig},
		{name: "config overrides marker", configured: "online", marker: true, expect: matching.ModeOnline, source: sourceConfig},
		{name: "flag overrides everything", args: []string{"--demo=false"}, configured: "offline", marker: true, expect: matching.ModeOnline, source: sourceFlag},
		{name: "flag on", args: []string{"--demo"}, expect: matching.ModeOffline, source: sourceFlag},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			if err := setDemoMarker(dir, tc.marker); err != nil {
				t.Fatalf("setDemoMarker: %v", err)
			}

			mode, source, err := resolveMode(demoCommand(t, tc.args...), &Config{DemoMode: tc.configured, DataDir: dir})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if mode != tc.expect || source != tc.source {
				t.Fatalf("expected %s from %s, got %s from %s", tc.expect, tc.source, mode, source)
			}
		})
	}
}

func TestResolveModeInvalidConfig(t *testing.T) {
	_, _, err := resolveMode(demoCommand(t), &Config{DemoMode: "sometimes", DataDir: t.TempDir()})
	if err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestDemoMarkerToggle(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")

	if err := setDemoMarker(dir, false); err != nil {
		t.Fatalf("turning off a missing marker: %v", err)
	}
	if err := setDemoMarker(dir, true); err != nil {
		t.Fatalf("turning on: %v", err)
	}
	on, err := demoMarkerSet(dir)
	if err != nil || !on {
		t.Fatalf("expected marker to be set: %v, %v", on, err)
	}
	if err := setDemoMarker(dir, false); err != nil {
		t.Fatalf("turning off: %v", err)
	}
	if on, _ := demoMarkerSet(dir); on {
		t.Fatalf("expected marker to be removed")
	}
}

func TestNewGatewayWithoutBackendIsOffline(t *testing.T) {
	config := &Config{DataDir: t.TempDir(), Backend: &BackendConfig{Timeout: time.Second}}

	gateway, err := newGateway(demoCommand(t), config, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gateway.Mode() != matching.ModeOffline {
		t.Fatalf("expected offline gateway, got %s", gateway.Mode())
	}

	config.Backend.URL = "http://127.0.0.1:1"
	gateway, err = newGateway(demoCommand(t), config, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gateway.Mode() != matching.ModeOnline {
		t.Fatalf("expected online gateway, got %s", gateway.Mode())
	}
}

func TestPreparePool(t *testing.T) {
	ctx := context.Background()
	config := &Config{
		DataDir: t.TempDir(),
		Pool:    &PoolConfig{Departments: []string{"Computer Science", "Electrical Engineering"}},
	}

	store, err := openDirectory(ctx, config, zap.NewNop())
	if err != nil {
		t.Fatalf("openDirectory: %v", err)
	}
	defer store.Close()

	candidates, err := preparePool(ctx, store, config, zap.NewNop(), "u1")
	if err != nil {
		t.Fatalf("preparePool: %v", err)
	}
	if len(candidates) != 1 || candidates[0].ID != "u3" {
		t.Fatalf("unexpected pool: %+v", candidates)
	}
}

func TestOpenDirectorySeedsOnce(t *testing.T) {
	ctx := context.Background()
	config := &Config{DataDir: t.TempDir()}

	store, err := openDirectory(ctx, config, zap.NewNop())
	if err != nil {
		t.Fatalf("openDirectory: %v", err)
	}
	if err := store.UpsertUser(ctx, directory.User{ID: "u9", Name: "Mia"}); err != nil {
		t.Fatalf("UpsertUser: %v", err)
	}
	store.Close()

	store, err = openDirectory(ctx, config, zap.NewNop())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()

	users, err := store.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != len(directory.DemoUsers)+1 {
		t.Fatalf("expected demo users plus one, got %d", len(users))
	}
}

func TestGetConfigDecodesKeys(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")
	err := v.ReadConfig(strings.NewReader(`
backend:
  url: http://localhost:8080
  timeout: 5s
pool:
  departments: [Computer Science]
  limit: 10
ai:
  gemini:
    model: gemini-2.5-pro
`))
	if err != nil {
		t.Fatalf("read config: %v", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if config.Backend.URL != "http://localhost:8080" || config.Backend.Timeout != 5*time.Second {
		t.Fatalf("unexpected backend config: %+v", config.Backend)
	}
	if config.Pool.Limit != 10 || len(config.Pool.Departments) != 1 {
		t.Fatalf("unexpected pool config: %+v", config.Pool)
	}
	if config.AI.Gemini.Model != "gemini-2.5-pro" || config.AI.Gemini.MaxRetries != 2 {
		t.Fatalf("unexpected gemini config: %+v", config.AI.Gemini)
	}
	if config.Server.Listen != ":8080" || config.DataDir != ".collabspace" {
		t.Fatalf("unexpected defaults: %+v %q", config.Server, config.DataDir)
	}
}

func TestSplitSkills(t *testing.T) {
	got := splitSkills([]string{"Go, SQL", "Docker", " ,"})
	if strings.Join(got, "|") != "Go|SQL|Docker" {
		t.Fatalf("unexpected skills: %v", got)
	}
}

func TestRedactedConfig(t *testing.T) {
	config := &Config{AI: &AIConfig{Gemini: &GeminiConfig{APIKey: "secret"}}}

	safe := redacted(config)
	if safe.AI.Gemini.APIKey != "***" {
		t.Fatalf("api key not redacted")
	}
	if config.AI.Gemini.APIKey != "secret" {
		t.Fatalf("original config must not change")
	}
}
