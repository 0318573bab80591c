package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"themeshot/internal/browser"
	"themeshot/internal/config"
)

type stubDriver struct {
	launchErr error
	shots     []string
}

func (d *stubDriver) Launch(context.Context, browser.LaunchOptions) (browser.Browser, error) {
	if d.launchErr != nil {
		return nil, d.launchErr
	}
	return stubBrowser{d}, nil
}

type stubBrowser struct{ d *stubDriver }

func (b stubBrowser) NewSession(context.Context, browser.SessionOptions) (browser.Session, error) {
	return stubSession{b.d}, nil
}

func (stubBrowser) Close() error { return nil }

type stubSession struct{ d *stubDriver }

func (stubSession) Navigate(context.Context, string, time.Duration) error { return nil }
func (stubSession) Click(context.Context, string) (bool, error)          { return false, nil }
func (stubSession) Evaluate(context.Context, string, any) (any, error)   { return true, nil }
func (stubSession) Close() error                                          { return nil }

func (s stubSession) Screenshot(_ context.Context, path string, _ browser.ShotOptions) error {
	s.d.shots = append(s.d.shots, filepath.Base(path))
	return os.WriteFile(path, []byte("image"), 0o644)
}

// setup writes a config with zero delays and swaps the driver and
// environment hooks for the test's duration.
func setup(t *testing.T, d *stubDriver) (cfgPath, outDir, runsDir string) {
	t.Helper()
	root := t.TempDir()
	outDir = filepath.Join(root, "assets")
	runsDir = filepath.Join(root, "runs")
	cfgPath = filepath.Join(root, ".themeshot.yml")
	data := "output_dir: " + outDir + "\n" +
		"runs_dir: " + runsDir + "\n" +
		"settle_delay: 1ms\n" +
		"theme_apply_delay: 1ms\n" +
		"toggle_delay: 1ms\n" +
		"delay_between_projects: 1ms\n" +
		"delay_between_themes: 1ms\n" +
		"retry_delay: 1ms\n"
	if err := os.WriteFile(cfgPath, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	prevDriver, prevEnv := newDriver, environment
	newDriver = func(string, *slog.Logger) (browser.Driver, error) { return d, nil }
	environment = func() config.Env { return config.Env{} }
	t.Cleanup(func() {
		newDriver, environment = prevDriver, prevEnv
	})
	return cfgPath, outDir, runsDir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	cmd.SetArgs(args)
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestGenerateThenVerify(t *testing.T) {
	d := &stubDriver{}
	cfgPath, _, _ := setup(t, d)

	out, err := execute(t, "generate", "--config", cfgPath, "--project", "hyprl")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(out, "2/2 successful") {
		t.Fatalf("unexpected summary:\n%s", out)
	}
	if strings.Join(d.shots, ",") != "hyprl-light.png,hyprl-dark.png" {
		t.Fatalf("unexpected shots: %v", d.shots)
	}

	if _, err := execute(t, "verify", "--config", cfgPath, "--project", "hyprl"); err != nil {
		t.Fatalf("verify after generate: %v", err)
	}
}

func TestVerifyIncomplete(t *testing.T) {
	cfgPath, _, _ := setup(t, &stubDriver{})

	out, err := execute(t, "verify", "--config", cfgPath, "--format", "json")
	if !errors.Is(err, errIncomplete) {
		t.Fatalf("verify error = %v, want errIncomplete", err)
	}
	var rep struct {
		TotalExpected int  `json:"total_expected"`
		Success       bool `json:"success"`
	}
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		t.Fatalf("decode report: %v\n%s", err, out)
	}
	if rep.TotalExpected != 8 || rep.Success {
		t.Fatalf("unexpected report: %+v", rep)
	}
}

func TestEnsureToleratesLaunchFailure(t *testing.T) {
	d := &stubDriver{launchErr: errors.New("chromium not installed")}
	cfgPath, _, _ := setup(t, d)

	if _, err := execute(t, "ensure", "--config", cfgPath); err != nil {
		t.Fatalf("ensure must not fail: %v", err)
	}
}

func TestEnsureSkipsWhenComplete(t *testing.T) {
	d := &stubDriver{}
	cfgPath, outDir, _ := setup(t, d)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, f := range []string{"hyprl-light.png", "hyprl-dark.png"} {
		if err := os.WriteFile(filepath.Join(outDir, f), []byte("image"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := execute(t, "ensure", "--config", cfgPath, "--project", "hyprl"); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if len(d.shots) != 0 {
		t.Fatalf("ensure generated despite complete assets: %v", d.shots)
	}
}

func TestEnsureGeneratesMissing(t *testing.T) {
	d := &stubDriver{}
	cfgPath, _, _ := setup(t, d)

	if _, err := execute(t, "ensure", "--config", cfgPath, "--project", "notehole", "--theme", "dark"); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if strings.Join(d.shots, ",") != "notehole-dark.png" {
		t.Fatalf("unexpected shots: %v", d.shots)
	}
}

func TestRunsListsGeneratedRun(t *testing.T) {
	cfgPath, _, _ := setup(t, &stubDriver{})

	if _, err := execute(t, "runs", "--config", cfgPath); err != nil {
		t.Fatalf("runs on empty dir: %v", err)
	}
	if _, err := execute(t, "generate", "--config", cfgPath, "--project", "portfolio"); err != nil {
		t.Fatalf("generate: %v", err)
	}
	out, err := execute(t, "runs", "--config", cfgPath, "--format", "json")
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	var manifests []struct {
		RunID string `json:"run_id"`
	}
	if err := json.Unmarshal([]byte(out), &manifests); err != nil {
		t.Fatalf("decode runs: %v\n%s", err, out)
	}
	if len(manifests) != 1 || manifests[0].RunID == "" {
		t.Fatalf("unexpected runs: %+v", manifests)
	}
}

func TestRejectsUnknownFormat(t *testing.T) {
	cfgPath, _, _ := setup(t, &stubDriver{})
	if _, err := execute(t, "verify", "--config", cfgPath, "--format", "xml"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
