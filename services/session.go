package services

import (
	"context"
	"errors"
	"sync"
	"time"
)

// LoadState tracks the catalog fetch of a session.
type LoadState int

const (
	LoadIdle LoadState = iota
	LoadLoading
	LoadReady
	LoadFailed
)

func (s LoadState) String() string {
	switch s {
	case LoadLoading:
		return "loading"
	case LoadReady:
		return "ready"
	case LoadFailed:
		return "failed"
	}
	return "idle"
}

// ErrCatalogNotReady is returned by Export while no catalog is usable.
var ErrCatalogNotReady = errors.New("catalog is not loaded")

// Session is the estimating state of one user: the loaded catalog, the
// selection and the discount. Every mutator recomputes the summary and
// passes it to subscribers.
type Session struct {
	ID string

	mu        sync.Mutex
	catalog   CatalogStore
	selection *Selection
	discount  DiscountInput
	state     LoadState
	loadErr   error
	loadSeq   uint64
	lastSeen  time.Time
	listeners []func(SummaryView)
}

func NewSession(id string) *Session {
	return &Session{ID: id, selection: NewSelection(), lastSeen: time.Now()}
}

// Subscribe registers fn to receive the summary after every mutation.
func (s *Session) Subscribe(fn func(SummaryView)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Load fetches the catalog from src. Loads may overlap; only the most
// recently started one is applied and earlier results are discarded.
func (s *Session) Load(ctx context.Context, src CatalogSource) error {
	s.mu.Lock()
	s.loadSeq++
	seq := s.loadSeq
	s.state = LoadLoading
	s.loadErr = nil
	s.touch()
	s.mu.Unlock()

	entries, err := FetchCatalog(ctx, src)

	s.mu.Lock()
	if seq != s.loadSeq {
		s.mu.Unlock()
		return nil
	}
	if err != nil {
		s.catalog.Clear()
		s.state = LoadFailed
		s.loadErr = err
	} else {
		s.catalog.Replace(entries)
		s.state = LoadReady
	}
	s.selection.Reset()
	view, listeners := s.snapshotLocked()
	s.mu.Unlock()

	notify(listeners, view)
	return err
}

// Toggle flips catalog entry index in or out of the selection.
func (s *Session) Toggle(index int) bool {
	s.mu.Lock()
	s.touch()
	changed := s.selection.Toggle(index, s.catalog.Len())
	view, listeners := s.snapshotLocked()
	s.mu.Unlock()

	notify(listeners, view)
	return changed
}

// SetDiscount parses raw and stores it. Invalid input prices as 0 and is
// reported through the returned DiscountInput and the summary view.
func (s *Session) SetDiscount(raw string) DiscountInput {
	d := ParseDiscount(raw)

	s.mu.Lock()
	s.touch()
	s.discount = d
	view, listeners := s.snapshotLocked()
	s.mu.Unlock()

	notify(listeners, view)
	return d
}

// Summary prices the current selection.
func (s *Session) Summary() SummaryView {
	s.mu.Lock()
	defer s.mu.Unlock()
	view, _ := s.snapshotLocked()
	return view
}

func (s *Session) snapshotLocked() (SummaryView, []func(SummaryView)) {
	entries := s.selection.Entries(s.catalog.entries)
	view := presentSession(PriceSelection(entries, s.discount.Percent), len(entries), s.discount)
	return view, append(([]func(SummaryView))(nil), s.listeners...)
}

func notify(listeners []func(SummaryView), view SummaryView) {
	for _, fn := range listeners {
		fn(view)
	}
}

func (s *Session) touch() { s.lastSeen = time.Now() }

// SessionView is a consistent snapshot for rendering a page.
type SessionView struct {
	State     LoadState
	LoadError string
	Catalog   []CatalogEntry
	Selected  map[int]bool
	Summary   SummaryView
	CanExport bool

	// Priced and DiscountPercent are the raw figures behind Summary.
	Priced          PricedSummary
	DiscountPercent float64
}

func (s *Session) View() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := SessionView{
		State:    s.state,
		Catalog:  s.catalog.Entries(),
		Selected: make(map[int]bool, s.selection.Len()),
	}
	if s.loadErr != nil {
		v.LoadError = s.loadErr.Error()
	}
	for _, i := range s.selection.Indices() {
		v.Selected[i] = true
	}
	entries := s.selection.Entries(s.catalog.entries)
	v.Priced = PriceSelection(entries, s.discount.Percent)
	v.DiscountPercent = s.discount.Percent
	v.Summary = presentSession(v.Priced, len(entries), s.discount)
	v.CanExport = s.canExportLocked()
	return v
}

func (s *Session) State() LoadState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CanExport reports whether the catalog is loaded and something is selected.
func (s *Session) CanExport() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canExportLocked()
}

func (s *Session) canExportLocked() bool {
	return s.state == LoadReady && !s.selection.IsEmpty()
}

// Selected returns the selected entries in ascending catalog order.
func (s *Session) Selected() []CatalogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.Entries(s.catalog.entries)
}

// Export renders the current selection with x. Export is refused while the
// catalog is loading or failed to load.
func (s *Session) Export(ctx context.Context, x *QuoteExporter, meta QuoteMetadata) (*Document, error) {
	s.mu.Lock()
	s.touch()
	state := s.state
	entries := s.selection.Entries(s.catalog.entries)
	discount := s.discount.Percent
	s.mu.Unlock()

	if state != LoadReady {
		return nil, ErrCatalogNotReady
	}
	return x.Export(ctx, entries, discount, meta)
}

// IdleSince reports how long the session has been unused at now.
func (s *Session) IdleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}
