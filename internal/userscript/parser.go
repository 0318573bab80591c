// Package userscript reads the metadata header of init scripts that a
// project can have injected before its page loads.
package userscript

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
)

// Meta holds the parsed metadata block of a userscript.
type Meta struct {
	Name        string   `json:"name"`
	Namespace   string   `json:"namespace,omitempty"`
	Version     string   `json:"version,omitempty"`
	Description string   `json:"description,omitempty"`
	Match       []string `json:"match,omitempty"`
	Include     []string `json:"include,omitempty"`
	Exclude     []string `json:"exclude,omitempty"`
	RunAt       string   `json:"run_at,omitempty"`
}

// Script is a parsed userscript with its source.
type Script struct {
	Path   string
	Meta   Meta
	Source string
}

// Load reads and parses the userscript at p.
func Load(p string) (Script, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return Script{}, err
	}
	meta, err := Parse(data)
	if err != nil {
		return Script{}, fmt.Errorf("%s: %w", p, err)
	}
	return Script{Path: p, Meta: meta, Source: string(data)}, nil
}

// Parse reads the // ==UserScript== header block of src.
func Parse(src []byte) (Meta, error) {
	var (
		meta Meta
		in   bool
	)
	scanner := bufio.NewScanner(bytes.NewReader(src))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "// ==UserScript==") {
			in = true
			continue
		}
		if strings.HasPrefix(line, "// ==/UserScript==") {
			break
		}
		if !in {
			continue
		}
		key, val, ok := directive(line)
		if !ok {
			continue
		}
		switch key {
		case "name":
			meta.Name = val
		case "namespace":
			meta.Namespace = val
		case "version":
			meta.Version = val
		case "description":
			meta.Description = val
		case "match":
			meta.Match = append(meta.Match, val)
		case "include":
			meta.Include = append(meta.Include, val)
		case "exclude":
			meta.Exclude = append(meta.Exclude, val)
		case "run-at":
			meta.RunAt = val
		}
	}
	if err := scanner.Err(); err != nil {
		return Meta{}, err
	}
	if meta.Name == "" {
		return Meta{}, errors.New("missing @name in userscript metadata")
	}
	return meta, nil
}

func directive(line string) (key, val string, ok bool) {
	rest := strings.TrimSpace(strings.TrimPrefix(line, "//"))
	if !strings.HasPrefix(rest, "@") {
		return "", "", false
	}
	key, val, _ = strings.Cut(rest[1:], " ")
	val = strings.TrimSpace(val)
	if key == "" || val == "" {
		return "", "", false
	}
	return key, val, true
}

// Matches reports whether the script applies to url. A script without any
// @match or @include applies everywhere; @exclude always wins.
func (m Meta) Matches(url string) bool {
	for _, pat := range m.Exclude {
		if globMatch(pat, url) {
			return false
		}
	}
	if len(m.Match) == 0 && len(m.Include) == 0 {
		return true
	}
	for _, pat := range append(append([]string{}, m.Match...), m.Include...) {
		if globMatch(pat, url) {
			return true
		}
	}
	return false
}

// globMatch treats * as "any run of characters", including slashes. A
// pattern ending in the bare origin also matches the origin with a slash.
func globMatch(pattern, s string) bool {
	if pattern == "*" || pattern == "<all_urls>" {
		return true
	}
	if globMatchExact(pattern, s) {
		return true
	}
	return !strings.HasSuffix(s, "/") && globMatchExact(pattern, s+"/")
}

func globMatchExact(pattern, s string) bool {
	parts := strings.Split(pattern, "*")
	if len(parts) == 1 {
		return pattern == s
	}
	if !strings.HasPrefix(s, parts[0]) {
		return false
	}
	s = s[len(parts[0]):]
	last := parts[len(parts)-1]
	for _, part := range parts[1 : len(parts)-1] {
		i := strings.Index(s, part)
		if i < 0 {
			return false
		}
		s = s[i+len(part):]
	}
	return strings.HasSuffix(s, last) && len(s) >= len(last)
}

// Name returns a short label for logs.
func (s Script) Name() string {
	if s.Meta.Name != "" {
		return s.Meta.Name
	}
	return path.Base(s.Path)
}
