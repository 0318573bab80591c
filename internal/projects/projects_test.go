package projects

import (
	"testing"
	"time"

	"themeshot/internal/theme"
)

func TestDefaultRegistry(t *testing.T) {
	list := Default()
	if len(list) != 4 {
		t.Fatalf("Default() returned %d projects, want 4", len(list))
	}
	if err := Validate(list); err != nil {
		t.Fatalf("Validate(Default()) error = %v", err)
	}
	if list[0].OutputBase != "hyprl" || list[0].SettleDelay != 3*time.Second {
		t.Fatalf("unexpected HyprL record: %+v", list[0])
	}
}

func TestFilename(t *testing.T) {
	p := Project{OutputBase: "notehole"}
	if got := p.Filename(theme.Dark, "png"); got != "notehole-dark.png" {
		t.Fatalf("Filename() = %q", got)
	}
}

func TestValidateRejectsDuplicates(t *testing.T) {
	list := Default()
	list[1].OutputBase = list[0].OutputBase
	if err := Validate(list); err == nil {
		t.Fatal("expected duplicate output_base error")
	}

	list = Default()
	list[2].ID = 1
	if err := Validate(list); err == nil {
		t.Fatal("expected duplicate id error")
	}

	list = Default()
	list[3].OutputBase = "../escape"
	if err := Validate(list); err == nil {
		t.Fatal("expected path separator error")
	}

	if err := Validate(nil); err == nil {
		t.Fatal("expected empty list error")
	}
}

func TestSelect(t *testing.T) {
	got, err := Select(Default(), []string{"notehole", "project pile"})
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if len(got) != 2 || got[0].Name != "Project Pile" || got[1].Name != "NoteHole" {
		t.Fatalf("unexpected selection: %+v", got)
	}

	all, err := Select(Default(), nil)
	if err != nil || len(all) != 4 {
		t.Fatalf("Select(nil) = %d, %v", len(all), err)
	}

	if _, err := Select(Default(), []string{"missing"}); err == nil {
		t.Fatal("expected no-match error")
	}
}
