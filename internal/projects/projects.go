// Package projects holds the static list of sites whose screenshots are
// captured and served on the portfolio grid.
package projects

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"themeshot/internal/theme"
)

// Project is one portfolio entry. Records are defined once and never
// mutated; every component reads them by value.
type Project struct {
	ID          int    `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	URL         string `yaml:"url" json:"url"`
	Repo        string `yaml:"repo" json:"repo,omitempty"`
	OutputBase  string `yaml:"output_base" json:"output_base"`
	Description string `yaml:"description" json:"description,omitempty"`

	// SettleDelay overrides the configured post-load wait when non-zero.
	SettleDelay time.Duration `yaml:"settle_delay" json:"settle_delay,omitempty"`
	// InitScript is an optional userscript injected before navigation.
	InitScript string `yaml:"init_script" json:"init_script,omitempty"`
}

// Default returns the built-in registry.
func Default() []Project {
	return []Project{
		{
			ID:          1,
			Name:        "HyprL",
			URL:         "https://hyprl.projectpile.tech",
			Repo:        "https://github.com/Manpreet113/hyprL",
			OutputBase:  "hyprl",
			Description: "HyprL takes the power of Hyprland and makes it approachable for everyone by providing one-command installation and beginner friendly guides.",
			SettleDelay: 3 * time.Second,
		},
		{
			ID:          2,
			Name:        "Portfolio",
			URL:         "https://manpreet.tech",
			Repo:        "https://github.com/Manpreet113/portfolio-site",
			OutputBase:  "portfolio",
			Description: "A showcase of my work, featuring projects that demonstrate my skills and expertise.",
		},
		{
			ID:          3,
			Name:        "Project Pile",
			URL:         "https://projectpile.tech",
			Repo:        "https://github.com/Manpreet113/ProjectPile",
			OutputBase:  "projectpile",
			Description: "The root domain for Project Pile, a collection of my projects and experiments in web development and design.",
		},
		{
			ID:          4,
			Name:        "NoteHole",
			URL:         "https://notehole.projectpile.tech",
			Repo:        "https://github.com/Manpreet113/NoteHole",
			OutputBase:  "notehole",
			Description: "A secure encrypted note-taking app built from using React, Tailwind CSS, and Supabase.",
		},
	}
}

// Filename is the deterministic output name for a capture of p in t.
func (p Project) Filename(t theme.Theme, ext string) string {
	return fmt.Sprintf("%s-%s.%s", p.OutputBase, t, ext)
}

// Validate checks that list is usable as a registry.
func Validate(list []Project) error {
	if len(list) == 0 {
		return errors.New("project list is empty")
	}
	ids := make(map[int]bool, len(list))
	bases := make(map[string]bool, len(list))
	for i, p := range list {
		switch {
		case p.ID <= 0:
			return fmt.Errorf("project %d: id must be positive", i)
		case strings.TrimSpace(p.Name) == "":
			return fmt.Errorf("project %d: name is required", p.ID)
		case strings.TrimSpace(p.URL) == "":
			return fmt.Errorf("project %q: url is required", p.Name)
		case strings.TrimSpace(p.OutputBase) == "":
			return fmt.Errorf("project %q: output_base is required", p.Name)
		case strings.ContainsAny(p.OutputBase, `/\`):
			return fmt.Errorf("project %q: output_base must not contain path separators", p.Name)
		}
		if ids[p.ID] {
			return fmt.Errorf("duplicate project id %d", p.ID)
		}
		if bases[p.OutputBase] {
			return fmt.Errorf("duplicate output_base %q", p.OutputBase)
		}
		ids[p.ID] = true
		bases[p.OutputBase] = true
	}
	return nil
}

// Select returns the projects whose name or output base matches one of
// names (case-insensitive), keeping registry order. An empty names list
// selects everything.
func Select(list []Project, names []string) ([]Project, error) {
	if len(names) == 0 {
		return append([]Project(nil), list...), nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[strings.ToLower(strings.TrimSpace(n))] = true
	}
	var out []Project
	for _, p := range list {
		if want[strings.ToLower(p.Name)] || want[strings.ToLower(p.OutputBase)] {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no project matches %v", names)
	}
	return out, nil
}
