package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func TestVersionCommand(t *testing.T) {
	cases := []struct {
		name   string
		output string
		check  func(t *testing.T, out string)
	}{
		{
			name: "text",
			check: func(t *testing.T, out string) {
				if !strings.HasPrefix(out, app+" version: "+version) {
					t.Fatalf("unexpected output %q", out)
				}
				if !strings.Contains(out, dbFileName) {
					t.Fatalf("expected db file in %q", out)
				}
			},
		},
		{
			name:   "json",
			output: "json",
			check: func(t *testing.T, out string) {
				var info versionInfo
				if err := json.Unmarshal([]byte(out), &info); err != nil {
					t.Fatalf("decode %q: %v", out, err)
				}
				if info.App != app || info.Version != version || info.DBFile != dbFileName || info.Go == "" {
					t.Fatalf("unexpected version info %+v", info)
				}
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			viper.Set("output", tc.output)
			t.Cleanup(func() { viper.Set("output", "") })

			var buf bytes.Buffer
			versionCmd.SetOut(&buf)
			t.Cleanup(func() { versionCmd.SetOut(nil) })

			if err := versionCmd.RunE(versionCmd, nil); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tc.check(t, buf.String())
		})
	}
}
