// Package verify checks that the capture output convention is satisfied:
// one non-empty image per (project, theme) pair in the output directory.
// It only reads files.
package verify

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"themeshot/internal/projects"
	"themeshot/internal/theme"
)

// Entry is the state of one expected file.
type Entry struct {
	Project   string      `json:"project"`
	Theme     theme.Theme `json:"theme"`
	File      string      `json:"file"`
	Found     bool        `json:"found"`
	SizeBytes int64       `json:"size_bytes,omitempty"`
	// Luminance is the mean relative luminance (0..1) of the image, when
	// it could be decoded.
	Luminance *float64 `json:"luminance,omitempty"`
}

// Comparison sets a project's light and dark captures side by side.
type Comparison struct {
	Project    string `json:"project"`
	LightBytes int64  `json:"light_bytes"`
	DarkBytes  int64  `json:"dark_bytes"`
	DeltaBytes int64  `json:"delta_bytes"`
	// ThemeSuspect flags a dark capture that is not darker than the light
	// one. Advisory only; it does not affect Success.
	ThemeSuspect bool `json:"theme_suspect"`
}

// Report is the result of Check.
type Report struct {
	Dir           string       `json:"dir"`
	TotalExpected int          `json:"total_expected"`
	TotalFound    int          `json:"total_found"`
	Success       bool         `json:"success"`
	Entries       []Entry      `json:"entries"`
	Comparisons   []Comparison `json:"comparisons,omitempty"`
}

// Missing returns the entries that were not found.
func (r Report) Missing() []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if !e.Found {
			out = append(out, e)
		}
	}
	return out
}

// Check stats every expected file under dir. A zero-byte file counts as
// missing.
func Check(dir string, list []projects.Project, themes []theme.Theme, ext string) Report {
	rep := Report{
		Dir:           dir,
		TotalExpected: len(list) * len(themes),
		Entries:       make([]Entry, 0, len(list)*len(themes)),
	}
	for _, p := range list {
		for _, t := range themes {
			e := Entry{Project: p.Name, Theme: t, File: p.Filename(t, ext)}
			path := filepath.Join(dir, e.File)
			if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() && info.Size() > 0 {
				e.Found = true
				e.SizeBytes = info.Size()
				if l, err := meanLuminance(path); err == nil {
					e.Luminance = &l
				}
				rep.TotalFound++
			}
			rep.Entries = append(rep.Entries, e)
		}
	}
	rep.Success = rep.TotalFound == rep.TotalExpected
	if rep.Success {
		rep.Comparisons = compare(rep.Entries)
	}
	return rep
}

func compare(entries []Entry) []Comparison {
	type pair struct{ light, dark *Entry }
	var order []string
	pairs := map[string]*pair{}
	for i := range entries {
		e := &entries[i]
		pr, ok := pairs[e.Project]
		if !ok {
			pr = &pair{}
			pairs[e.Project] = pr
			order = append(order, e.Project)
		}
		switch e.Theme {
		case theme.Light:
			pr.light = e
		case theme.Dark:
			pr.dark = e
		}
	}
	var out []Comparison
	for _, name := range order {
		pr := pairs[name]
		if pr.light == nil || pr.dark == nil {
			continue
		}
		c := Comparison{
			Project:    name,
			LightBytes: pr.light.SizeBytes,
			DarkBytes:  pr.dark.SizeBytes,
			DeltaBytes: pr.dark.SizeBytes - pr.light.SizeBytes,
		}
		if pr.light.Luminance != nil && pr.dark.Luminance != nil {
			c.ThemeSuspect = *pr.dark.Luminance >= *pr.light.Luminance
		}
		out = append(out, c)
	}
	return out
}

// meanLuminance decodes the image at path and averages the relative
// luminance of a sample grid of its pixels.
func meanLuminance(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return 0, err
	}
	b := img.Bounds()
	step := max(1, min(b.Dx(), b.Dy())/64)
	var sum float64
	var n int
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			r, g, bl, _ := img.At(x, y).RGBA()
			sum += (0.2126*float64(r) + 0.7152*float64(g) + 0.0722*float64(bl)) / 0xffff
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return sum / float64(n), nil
}
