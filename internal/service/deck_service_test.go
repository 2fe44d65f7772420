package service_test

import (
	"path/filepath"
	"testing"

	"slidesmith/internal/service"
	"slidesmith/internal/storage"
)

func newTestService(t *testing.T) *service.DeckService {
	t.Helper()
	dir := t.TempDir()
	db, err := storage.New(filepath.Join(dir, "workspace.db"), dir)
	if err != nil {
		t.Fatalf("open workspace db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return service.NewDeckService(storage.NewDeckStore(db), dir)
}

// ─────────────────────────────────────────────────────────────
// Registry behavior
// ─────────────────────────────────────────────────────────────

func TestDeckService_CreateBecomesCurrent(t *testing.T) {
	svc := newTestService(t)

	id, err := svc.Create("quarterly")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if svc.CurrentID() != id {
		t.Errorf("current = %q, want %q", svc.CurrentID(), id)
	}

	pres, resolved, err := svc.Resolve("")
	if err != nil {
		t.Fatalf("resolve current: %v", err)
	}
	if resolved != id {
		t.Errorf("resolved id = %q, want %q", resolved, id)
	}
	if pres.SlideCount() != 0 {
		t.Errorf("new deck slide count = %d, want 0", pres.SlideCount())
	}
}

func TestDeckService_ResolveWithoutOpenDeck(t *testing.T) {
	svc := newTestService(t)

	if _, _, err := svc.Resolve(""); err == nil {
		t.Fatal("expected error when no presentation is open")
	}
	if _, _, err := svc.Resolve("missing-id"); err == nil {
		t.Fatal("expected error for unknown id")
	}
}

func TestDeckService_SwitchAndList(t *testing.T) {
	svc := newTestService(t)

	first, _ := svc.Create("alpha")
	second, _ := svc.Create("beta")

	if svc.CurrentID() != second {
		t.Fatalf("current = %q, want most recently created %q", svc.CurrentID(), second)
	}
	if err := svc.Switch(first); err != nil {
		t.Fatalf("switch: %v", err)
	}
	if svc.CurrentID() != first {
		t.Errorf("current after switch = %q, want %q", svc.CurrentID(), first)
	}
	if err := svc.Switch("nope"); err == nil {
		t.Error("expected error switching to unknown id")
	}

	list := svc.List()
	if len(list) != 2 {
		t.Fatalf("list length = %d, want 2", len(list))
	}
	for _, d := range list {
		if d.ID == first && !d.Current {
			t.Error("expected first deck to be flagged current")
		}
		if d.ID == second && d.Current {
			t.Error("expected second deck not to be current")
		}
	}
}

// ─────────────────────────────────────────────────────────────
// Save / reopen round trip
// ─────────────────────────────────────────────────────────────

func TestDeckService_SaveAndReopen(t *testing.T) {
	svc := newTestService(t)
	dir := t.TempDir()

	id, err := svc.Create("roundtrip")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	pres, _, _ := svc.Resolve(id)
	slide, err := pres.AddSlide(0)
	if err != nil {
		t.Fatalf("add slide: %v", err)
	}
	slide.SetTitle("Hello")

	path := filepath.Join(dir, "out.pptx")
	saved, err := svc.Save(id, path)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved != path {
		t.Errorf("saved path = %q, want %q", saved, path)
	}

	// Second save with no path reuses the first one.
	again, err := svc.Save(id, "")
	if err != nil {
		t.Fatalf("re-save: %v", err)
	}
	if again != path {
		t.Errorf("re-save path = %q, want %q", again, path)
	}

	reopened, err := svc.Open(path)
	if err != nil {
		t.Fatalf("open saved file: %v", err)
	}
	info, err := svc.Info(reopened)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if info.SlideCount != 1 {
		t.Errorf("reopened slide count = %d, want 1", info.SlideCount)
	}
	if info.Name != "out" {
		t.Errorf("reopened name = %q, want %q", info.Name, "out")
	}

	p2, _, _ := svc.Resolve(reopened)
	if got := p2.Slides[0].Title(); got != "Hello" {
		t.Errorf("title after round trip = %q, want %q", got, "Hello")
	}
}

func TestDeckService_InfoReportsLayouts(t *testing.T) {
	svc := newTestService(t)

	id, _ := svc.Create("layouts")
	info, err := svc.Info(id)
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if len(info.Layouts) == 0 {
		t.Fatal("expected built-in template to expose layouts")
	}
	if info.SlideWidth <= 0 || info.SlideHeight <= 0 {
		t.Errorf("slide size = %gx%g in, want positive", info.SlideWidth, info.SlideHeight)
	}
}
