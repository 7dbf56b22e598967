package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/odlove/tealeaf/internal/forum"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	p, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p.Theme != defaultTheme {
		t.Fatalf("theme = %q, want default", p.Theme)
	}
	if p.SortMode() != forum.SortAsc {
		t.Fatalf("sort mode = %v, want ascending", p.SortMode())
	}
	if p.SeeAuthorOnly {
		t.Fatalf("see-author default = true, want false")
	}
}

func TestLoadMalformedFileDegradesToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	if err := os.WriteFile(path, []byte("theme = ["), 0o644); err != nil {
		t.Fatalf("write prefs: %v", err)
	}
	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p.Theme != defaultTheme || p.Sort != defaultSort {
		t.Fatalf("prefs = %+v, want defaults", p)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "prefs.toml")
	want := Prefs{Theme: "Nord", Sort: "desc", SeeAuthorOnly: true}
	if err := Save(path, want); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got != want {
		t.Fatalf("prefs = %+v, want %+v", got, want)
	}
	if got.SortMode() != forum.SortDesc {
		t.Fatalf("sort mode = %v, want descending", got.SortMode())
	}
}

func TestSortNameRoundTrip(t *testing.T) {
	for _, m := range []forum.SortMode{forum.SortAsc, forum.SortDesc, forum.SortHot} {
		p := Prefs{Sort: SortName(m)}
		if p.SortMode() != m {
			t.Fatalf("sort %v round-tripped to %v", m, p.SortMode())
		}
	}
}
