package browser

import (
	"context"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	"themeshot/internal/theme"
)

func TestNewSelectsDriver(t *testing.T) {
	d, err := New("playwright", nil)
	if err != nil {
		t.Fatalf("New(playwright) error = %v", err)
	}
	if _, ok := d.(*Playwright); !ok {
		t.Fatalf("New(playwright) = %T", d)
	}

	d, err = New("rod", nil)
	if err != nil {
		t.Fatalf("New(rod) error = %v", err)
	}
	if _, ok := d.(*Rod); !ok {
		t.Fatalf("New(rod) = %T", d)
	}

	if _, err := New("selenium", nil); err == nil {
		t.Fatal("expected unknown driver error")
	}
}

func TestColorScheme(t *testing.T) {
	if colorScheme(theme.Dark) != playwright.ColorSchemeDark {
		t.Fatal("dark theme should map to dark color scheme")
	}
	if colorScheme(theme.Light) != playwright.ColorSchemeLight {
		t.Fatal("light theme should map to light color scheme")
	}
	if colorScheme("") != nil {
		t.Fatal("unset theme should leave the color scheme alone")
	}
}

func TestTimeoutMS(t *testing.T) {
	if got := timeoutMS(context.Background(), 0); got != nil {
		t.Fatalf("timeoutMS(no deadline, 0) = %v, want nil", *got)
	}
	if got := timeoutMS(context.Background(), 30*time.Second); got == nil || *got != 30000 {
		t.Fatalf("timeoutMS(no deadline, 30s) = %v, want 30000", got)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if got := timeoutMS(ctx, 30*time.Second); got == nil || *got <= 0 || *got > 1000 {
		t.Fatalf("timeoutMS(1s deadline, 30s) = %v, want (0, 1000]", got)
	}
	if got := timeoutMS(ctx, 10*time.Millisecond); got == nil || *got != 10 {
		t.Fatalf("timeoutMS(1s deadline, 10ms) = %v, want 10", got)
	}

	expired, cancelExpired := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancelExpired()
	if got := timeoutMS(expired, 0); got == nil || *got != 1 {
		t.Fatalf("timeoutMS(expired) = %v, want 1", got)
	}
}
