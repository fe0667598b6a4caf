package mandelray

import (
	"fmt"
	"sync"
)

// PaletteSet is the selectable list of palettes plus the selected color
// mode. Every change is published to subscribers, which typically trigger
// a cache redraw of the current frame.
//
// PaletteSet is safe for concurrent use.
type PaletteSet struct {
	mu       sync.Mutex
	palettes []*Palette
	selected int
	mode     ColorMode

	subs   map[int]func(Coloring)
	nextID int

	// gen counts changes; delivered is the last gen handed to subscribers.
	// notifyMu serializes deliveries so they are never reordered.
	notifyMu  sync.Mutex
	gen       uint64
	delivered uint64
}

// NewPaletteSet creates a set holding palettes, the first one selected.
// Nil palettes are skipped. When none remain the built-in palettes are
// used.
func NewPaletteSet(palettes ...*Palette) *PaletteSet {
	kept := make([]*Palette, 0, len(palettes))
	for _, p := range palettes {
		if p != nil {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		kept = BuiltinPalettes()
	}
	return &PaletteSet{
		palettes: kept,
		subs:     make(map[int]func(Coloring)),
	}
}

// Palettes returns the palettes in order.
func (s *PaletteSet) Palettes() []*Palette {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Palette(nil), s.palettes...)
}

// Add appends a palette and returns its index.
func (s *PaletteSet) Add(p *Palette) (int, error) {
	if p == nil {
		return 0, fmt.Errorf("%w: nil palette", ErrInvalidPalette)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.palettes = append(s.palettes, p)
	return len(s.palettes) - 1, nil
}

// Selected returns the selected palette.
func (s *PaletteSet) Selected() *Palette {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.palettes[s.selected]
}

// Mode returns the selected color mode.
func (s *PaletteSet) Mode() ColorMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Coloring returns the current palette and mode.
func (s *PaletteSet) Coloring() Coloring {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.coloringLocked()
}

func (s *PaletteSet) coloringLocked() Coloring {
	return Coloring{Palette: s.palettes[s.selected], Mode: s.mode}
}

// Select selects the palette with the given name, ignoring case, spaces
// and punctuation.
func (s *PaletteSet) Select(name string) error {
	key := foldName(name)
	s.mu.Lock()
	for i, p := range s.palettes {
		if foldName(p.name) == key {
			return s.changeLocked(i, s.mode)
		}
	}
	s.mu.Unlock()
	return fmt.Errorf("%w: %q", ErrUnknownPalette, name)
}

// SelectIndex selects the i-th palette.
func (s *PaletteSet) SelectIndex(i int) error {
	s.mu.Lock()
	if i < 0 || i >= len(s.palettes) {
		s.mu.Unlock()
		return fmt.Errorf("%w: index %d", ErrUnknownPalette, i)
	}
	return s.changeLocked(i, s.mode)
}

// Next selects the following palette, wrapping around, and returns it.
func (s *PaletteSet) Next() *Palette {
	s.mu.Lock()
	i := (s.selected + 1) % len(s.palettes)
	p := s.palettes[i]
	_ = s.changeLocked(i, s.mode)
	return p
}

// SetMode selects the color mode.
func (s *PaletteSet) SetMode(m ColorMode) error {
	if int(m) >= len(colorModeNames) {
		return fmt.Errorf("mandelray: unknown color mode %d", m)
	}
	s.mu.Lock()
	return s.changeLocked(s.selected, m)
}

// changeLocked applies a selection, releases s.mu and notifies
// subscribers when something changed.
func (s *PaletteSet) changeLocked(selected int, mode ColorMode) error {
	if selected == s.selected && mode == s.mode {
		s.mu.Unlock()
		return nil
	}
	s.selected, s.mode = selected, mode
	s.gen++
	s.mu.Unlock()

	s.notify()
	return nil
}

// notify delivers the latest coloring unless a concurrent change already
// did. Subscribers run outside s.mu but one delivery at a time, so the last
// coloring a subscriber sees is always the current one.
func (s *PaletteSet) notify() {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if s.delivered == s.gen {
		s.mu.Unlock()
		return
	}
	s.delivered = s.gen
	c := s.coloringLocked()
	subs := make([]func(Coloring), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(c)
	}
}

// Subscribe registers fn to be called with the new coloring after every
// change of palette or mode. Changes that race are coalesced into one call
// carrying the newest coloring. fn must not change the set. The returned
// function unsubscribes.
func (s *PaletteSet) Subscribe(fn func(Coloring)) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}
