package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"vogsdemo/internal/config"
	"vogsdemo/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	assets     *httptest.Server
	requests   int
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	t.Setenv("HOME", t.TempDir())
	t.Setenv("VOGSDEMO_ASSET_BASE_URL", "")
	t.Setenv("VOGSDEMO_API_TOKEN", "")

	env := &cliTestEnv{}
	env.assets = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env.requests++
		switch strings.TrimPrefix(r.URL.Path, "/") {
		case "scene-001.splat":
			_, _ = w.Write(testsupport.SplatBytes(64))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(env.assets.Close)

	env.cfg = testsupport.NewConfig(t,
		testsupport.WithAssetBaseURL(env.assets.URL),
		testsupport.WithManifest(testsupport.SampleManifest()),
	)
	env.configPath = filepath.Join(testsupport.BaseDir(env.cfg), "config.toml")
	writeTestConfig(t, env.configPath, env.cfg)
	return env
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q\n---\n%s", needle, haystack)
	}
}
