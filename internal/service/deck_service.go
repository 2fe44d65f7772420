package service

import (
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"slidesmith/internal/deck"
	"slidesmith/internal/domain"
	"slidesmith/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Deck Service — in-memory registry of open presentations
// ─────────────────────────────────────────────────────────────

// DeckService holds every presentation opened or created in this process and
// tracks which one is current. All registry access goes through the mutex;
// tool handlers may be invoked concurrently.
type DeckService struct {
	mu      sync.Mutex
	decks   map[string]*openDeck
	current string

	store   *storage.DeckStore // nil when running without a workspace db
	dataDir string
}

type openDeck struct {
	id   string
	name string
	path string // last save/open path, "" until first save
	pres *deck.Presentation
}

// NewDeckService creates a DeckService. store may be nil; bookkeeping is
// best-effort and never fails a document operation.
func NewDeckService(store *storage.DeckStore, dataDir string) *DeckService {
	return &DeckService{
		decks:   make(map[string]*openDeck),
		store:   store,
		dataDir: dataDir,
	}
}

// Create registers a new blank presentation and makes it current.
func (s *DeckService) Create(name string) (string, error) {
	pres := deck.New()
	if name == "" {
		name = "Untitled"
	}

	s.mu.Lock()
	id := uuid.New().String()
	s.decks[id] = &openDeck{id: id, name: name, pres: pres}
	s.current = id
	s.mu.Unlock()

	s.record(&domain.DeckRecord{ID: id, Name: name})
	return id, nil
}

// Open loads a .pptx file from disk, registers it, and makes it current.
func (s *DeckService) Open(path string) (string, error) {
	pres, err := deck.Open(path)
	if err != nil {
		return "", fmt.Errorf("open presentation: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	s.mu.Lock()
	id := uuid.New().String()
	s.decks[id] = &openDeck{id: id, name: name, path: path, pres: pres}
	s.current = id
	s.mu.Unlock()

	s.record(&domain.DeckRecord{ID: id, Name: name, FilePath: path, SlideCount: pres.SlideCount()})
	return id, nil
}

// Save writes the presentation to path. An empty id targets the current
// presentation; an empty path reuses the last known path and falls back to
// "<name>.pptx" under the data directory.
func (s *DeckService) Save(id, path string) (string, error) {
	d, err := s.lookup(id)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	if path == "" {
		path = d.path
	}
	if path == "" {
		path = filepath.Join(s.dataDir, d.name+".pptx")
	}
	s.mu.Unlock()

	if err := d.pres.SaveFile(path); err != nil {
		return "", fmt.Errorf("save presentation: %w", err)
	}

	s.mu.Lock()
	d.path = path
	s.mu.Unlock()

	s.update(&domain.DeckRecord{ID: d.id, Name: d.name, FilePath: path, SlideCount: d.pres.SlideCount()})
	return path, nil
}

// Switch makes the given presentation current.
func (s *DeckService) Switch(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.decks[id]; !ok {
		return fmt.Errorf("presentation not found: %s", id)
	}
	s.current = id
	return nil
}

// DeckSummary describes one registered presentation.
type DeckSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	FilePath   string `json:"file_path,omitempty"`
	SlideCount int    `json:"slide_count"`
	Current    bool   `json:"current"`
}

// List returns every registered presentation, current one flagged.
func (s *DeckService) List() []DeckSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]DeckSummary, 0, len(s.decks))
	for id, d := range s.decks {
		out = append(out, DeckSummary{
			ID:         id,
			Name:       d.name,
			FilePath:   d.path,
			SlideCount: d.pres.SlideCount(),
			Current:    id == s.current,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Info returns structural metadata for a presentation. Empty id means current.
func (s *DeckService) Info(id string) (*domain.PresentationInfo, error) {
	d, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	w, h := d.pres.SlideSize()
	return &domain.PresentationInfo{
		ID:          d.id,
		Name:        d.name,
		FilePath:    d.path,
		SlideCount:  d.pres.SlideCount(),
		SlideWidth:  deck.ToInches(w),
		SlideHeight: deck.ToInches(h),
		Layouts:     d.pres.LayoutNames(),
	}, nil
}

// Resolve returns the presentation for id, or the current one when id is
// empty. The registry id comes back alongside so callers can report it.
func (s *DeckService) Resolve(id string) (*deck.Presentation, string, error) {
	d, err := s.lookup(id)
	if err != nil {
		return nil, "", err
	}
	return d.pres, d.id, nil
}

// CurrentID returns the current presentation id, or "" when none is open.
func (s *DeckService) CurrentID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Runs returns the recorded generation runs for a presentation.
func (s *DeckService) Runs(id string) ([]domain.GenerationRun, error) {
	if s.store == nil {
		return nil, nil
	}
	d, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	return s.store.ListRuns(d.id)
}

// RecordRun persists a generation run. Best-effort.
func (s *DeckService) RecordRun(r *domain.GenerationRun) {
	if s.store == nil {
		return
	}
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if err := s.store.RecordRun(r); err != nil {
		log.Printf("[deck] record generation run: %v", err)
	}
}

func (s *DeckService) lookup(id string) (*openDeck, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "" {
		id = s.current
	}
	if id == "" {
		return nil, fmt.Errorf("no presentation is currently open")
	}
	d, ok := s.decks[id]
	if !ok {
		return nil, fmt.Errorf("presentation not found: %s", id)
	}
	return d, nil
}

func (s *DeckService) record(rec *domain.DeckRecord) {
	if s.store == nil {
		return
	}
	if err := s.store.CreateDeck(rec); err != nil {
		log.Printf("[deck] record deck: %v", err)
	}
}

func (s *DeckService) update(rec *domain.DeckRecord) {
	if s.store == nil {
		return
	}
	if err := s.store.UpdateDeck(rec); err != nil {
		log.Printf("[deck] update deck: %v", err)
	}
}
