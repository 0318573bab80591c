package verify

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"themeshot/internal/projects"
	"themeshot/internal/theme"
)

func writePNG(t *testing.T, path string, c color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, c)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestCheckLightOnly(t *testing.T) {
	dir := t.TempDir()
	list := projects.Default()
	for _, p := range list {
		writePNG(t, filepath.Join(dir, p.Filename(theme.Light, "png")), color.White)
	}

	rep := Check(dir, list, theme.All(), "png")

	require.Equal(t, 8, rep.TotalExpected)
	require.Equal(t, 4, rep.TotalFound)
	require.False(t, rep.Success)
	require.Empty(t, rep.Comparisons)
	missing := rep.Missing()
	require.Len(t, missing, 4)
	for _, e := range missing {
		require.Equal(t, theme.Dark, e.Theme)
	}
}

func TestCheckAllPresent(t *testing.T) {
	dir := t.TempDir()
	list := projects.Default()[:2]
	writePNG(t, filepath.Join(dir, "hyprl-light.png"), color.White)
	writePNG(t, filepath.Join(dir, "hyprl-dark.png"), color.Black)
	// a "dark" capture that came out light: coercion did not take
	writePNG(t, filepath.Join(dir, "portfolio-light.png"), color.White)
	writePNG(t, filepath.Join(dir, "portfolio-dark.png"), color.White)

	rep := Check(dir, list, theme.All(), "png")

	require.True(t, rep.Success)
	require.Equal(t, 4, rep.TotalFound)
	require.Len(t, rep.Comparisons, 2)
	require.Equal(t, "HyprL", rep.Comparisons[0].Project)
	require.False(t, rep.Comparisons[0].ThemeSuspect)
	require.True(t, rep.Comparisons[1].ThemeSuspect)
	require.NotNil(t, rep.Entries[0].Luminance)
	require.InDelta(t, 1.0, *rep.Entries[0].Luminance, 0.01)
	require.InDelta(t, 0.0, *rep.Entries[1].Luminance, 0.01)
}

func TestCheckEmptyFileIsMissing(t *testing.T) {
	dir := t.TempDir()
	list := projects.Default()[:1]
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hyprl-light.png"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hyprl-dark.png"), []byte("not an image"), 0o644))

	rep := Check(dir, list, theme.All(), "png")

	require.Equal(t, 1, rep.TotalFound)
	require.False(t, rep.Entries[0].Found)
	require.True(t, rep.Entries[1].Found)
	require.Nil(t, rep.Entries[1].Luminance)
}

func TestCheckMissingDir(t *testing.T) {
	rep := Check(filepath.Join(t.TempDir(), "nope"), projects.Default(), theme.All(), "png")
	require.Equal(t, 0, rep.TotalFound)
	require.False(t, rep.Success)
}
