package domain

import (
	"os"
	"path/filepath"
	"testing"
)

func writeOutline(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "outline.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write outline: %v", err)
	}
	return path
}

func TestLoadOutline(t *testing.T) {
	path := writeOutline(t, `{"title": "Plan", "sections": [{"heading": "A"}, {"heading": "B"}]}`)

	o, err := LoadOutline(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if o.Title != "Plan" {
		t.Errorf("title = %q", o.Title)
	}
	if len(o.Sections) != 2 {
		t.Errorf("section count = %d, want 2", len(o.Sections))
	}
}

func TestLoadOutlineRejectsEmptySections(t *testing.T) {
	path := writeOutline(t, `{"title": "Empty", "sections": []}`)
	if _, err := LoadOutline(path); err == nil {
		t.Fatal("expected error for outline with no sections")
	}
}

func TestLoadOutlineRejectsBadJSON(t *testing.T) {
	path := writeOutline(t, `{"title": `)
	if _, err := LoadOutline(path); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestRGBValid(t *testing.T) {
	if !(RGB{0, 128, 255}).Valid() {
		t.Error("in-range color reported invalid")
	}
	if (RGB{-1, 0, 0}).Valid() {
		t.Error("negative component reported valid")
	}
	if (RGB{0, 256, 0}).Valid() {
		t.Error("component above 255 reported valid")
	}
}
