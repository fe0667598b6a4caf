// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"image"
	"image/color"
	"sync"
	"sync/atomic"

	pcolor "github.com/gogpu/mandelray/internal/color"
	"github.com/gogpu/mandelray/internal/parallel"
)

// ImageSurface is an in-memory Surface backed by a packed pixel slice.
//
// Dirty regions are tracked per band of rows and can be consumed either by
// polling Collect (a display loop) or by registering a listener with
// OnDirty (push notification on every Release and MarkDirty).
//
// Example:
//
//	s := surface.NewImageSurface(800, 600)
//	defer s.Close()
//
//	buf, _ := s.Acquire()
//	buf.Set(10, 10, 0xFFFF0000)
//	s.Release(buf, image.Rect(0, 10, 800, 11))
//
//	img := s.Snapshot()
type ImageSurface struct {
	// mu is the exclusive-access lock handed out by Acquire.
	mu     sync.Mutex
	width  int
	height int
	pix    []uint32
	closed bool

	dirty atomic.Pointer[parallel.DirtyBands]

	listenersMu sync.RWMutex
	listeners   map[int]func(image.Rectangle)
	nextID      int
}

// NewImageSurface creates a transparent surface with the given dimensions.
// Negative dimensions are treated as zero.
func NewImageSurface(width, height int) *ImageSurface {
	s := &ImageSurface{listeners: make(map[int]func(image.Rectangle))}
	s.resize(width, height)
	return s
}

var _ ResizableSurface = (*ImageSurface)(nil)

// Width returns the surface width.
func (s *ImageSurface) Width() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width
}

// Height returns the surface height.
func (s *ImageSurface) Height() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.height
}

// Acquire locks the surface for writing.
func (s *ImageSurface) Acquire() (*Buffer, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	return &Buffer{Pix: s.pix, Stride: s.width, Width: s.width, Height: s.height}, nil
}

// Release unlocks the surface and reports dirty to listeners.
func (s *ImageSurface) Release(buf *Buffer, dirty image.Rectangle) {
	buf.Pix = nil
	s.mu.Unlock()
	s.MarkDirty(dirty)
}

// MarkDirty flags r as changed and notifies listeners.
func (s *ImageSurface) MarkDirty(r image.Rectangle) {
	d := s.dirty.Load()
	if d == nil {
		return
	}
	r = r.Intersect(image.Rect(0, 0, s.Width(), s.Height()))
	if r.Empty() {
		return
	}
	d.MarkRect(r)
	s.notify(r)
}

// Clear fills the surface with c.
func (s *ImageSurface) Clear(c color.Color) {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	packed := pcolor.Pack(n.R, n.G, n.B, n.A)

	s.mu.Lock()
	for i := range s.pix {
		s.pix[i] = packed
	}
	w, h := s.width, s.height
	s.mu.Unlock()

	s.markAll(w, h)
}

// Resize reallocates the surface; the new contents are transparent.
func (s *ImageSurface) Resize(width, height int) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.resize(width, height)
	w, h := s.width, s.height
	s.mu.Unlock()

	s.markAll(w, h)
	return nil
}

func (s *ImageSurface) markAll(w, h int) {
	d := s.dirty.Load()
	if d == nil || w <= 0 || h <= 0 {
		return
	}
	d.MarkAll()
	s.notify(image.Rect(0, 0, w, h))
}

// resize must be called with s.mu held (or before the surface is shared).
func (s *ImageSurface) resize(width, height int) {
	width, height = max(width, 0), max(height, 0)
	s.width = width
	s.height = height
	s.pix = make([]uint32, width*height)
	s.dirty.Store(parallel.NewDirtyBands(width, height))
}

// Collect returns the rows changed since the previous call and resets the
// dirty state. The rectangle is empty when nothing changed.
func (s *ImageSurface) Collect() image.Rectangle {
	d := s.dirty.Load()
	if d == nil || d.IsEmpty() {
		return image.Rectangle{}
	}
	return d.Collect()
}

// OnDirty registers fn to be called with every region marked dirty.
// fn runs on the writer's goroutine and must not block. The returned
// function removes the listener.
func (s *ImageSurface) OnDirty(fn func(image.Rectangle)) (remove func()) {
	s.listenersMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.listenersMu.Unlock()

	return func() {
		s.listenersMu.Lock()
		delete(s.listeners, id)
		s.listenersMu.Unlock()
	}
}

func (s *ImageSurface) notify(r image.Rectangle) {
	s.listenersMu.RLock()
	defer s.listenersMu.RUnlock()
	for _, fn := range s.listeners {
		fn(r)
	}
}

// Pixels returns a copy of the packed pixels.
func (s *ImageSurface) Pixels() []uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]uint32(nil), s.pix...)
}

// Snapshot returns the current contents as an RGBA image.
// The returned image is a copy.
func (s *ImageSurface) Snapshot() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()

	img := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	if len(s.pix) > 0 {
		pcolor.ToRGBA(img.Pix, s.pix)
	}
	return img
}

// SnapshotInto copies the contents into dst, reallocating it when the size
// differs, and returns the image that was written.
func (s *ImageSurface) SnapshotInto(dst *image.RGBA) *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()

	if dst == nil || dst.Bounds().Dx() != s.width || dst.Bounds().Dy() != s.height {
		dst = image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	}
	if len(s.pix) > 0 {
		pcolor.ToRGBA(dst.Pix, s.pix)
	}
	return dst
}

// Close releases the pixel memory. Close is idempotent.
func (s *ImageSurface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.pix = nil
	s.dirty.Store(nil)
	return nil
}
