package runner

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/oklog/ulid/v2"
)

// ErrUnknownRun is returned for ids that are malformed or have no manifest.
var ErrUnknownRun = errors.New("unknown run")

// LoadManifest reads a manifest from disk.
func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

// FindRuns returns the ids of the finished runs under runsDir, newest
// first. A run directory without a manifest (a run whose browser never
// launched) is skipped. A missing directory means no runs yet.
func FindRuns(runsDir string) ([]string, error) {
	entries, err := os.ReadDir(runsDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var ids []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := ulid.ParseStrict(e.Name()); err != nil {
			continue
		}
		if _, err := os.Stat(filepath.Join(runsDir, e.Name(), "run.json")); err != nil {
			continue
		}
		ids = append(ids, e.Name())
	}
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))
	return ids, nil
}

// RunPaths returns the manifest and log paths of run id under runsDir. The
// id must be a well-formed run id.
func RunPaths(runsDir, id string) (manifest, log string, err error) {
	if _, err := ulid.ParseStrict(id); err != nil {
		return "", "", fmt.Errorf("%w: %q", ErrUnknownRun, id)
	}
	dir := filepath.Join(runsDir, id)
	return filepath.Join(dir, "run.json"), filepath.Join(dir, "logs", "runner.ndjson"), nil
}

// LoadRun reads the manifest of run id under runsDir.
func LoadRun(runsDir, id string) (Manifest, error) {
	manifestPath, _, err := RunPaths(runsDir, id)
	if err != nil {
		return Manifest{}, err
	}
	m, err := LoadManifest(manifestPath)
	if errors.Is(err, os.ErrNotExist) {
		return Manifest{}, fmt.Errorf("%w: %q", ErrUnknownRun, id)
	}
	return m, err
}
