package mandelray

import (
	"sync"

	"github.com/gogpu/mandelray/internal/cache"
)

// History is the ordered list of visited frames with a movable cursor.
//
// Submitting inserts the new frame directly after the cursor and moves the
// cursor onto it; frames ahead of the cursor are kept, so stepping
// forward after a zoom from an earlier position still reaches them.
//
// Only a bounded number of frames keep their iteration buffers. Each time
// a frame becomes current it is marked as recently used; the least
// recently visited frames beyond the limit drop their buffer.
//
// History is safe for concurrent use.
type History struct {
	mu       sync.Mutex
	frames   []*Frame
	cursor   int
	resident *cache.LRU[*Frame, struct{}]
}

// NewHistory creates an empty history.
func NewHistory(opts ...HistoryOption) *History {
	o := historyOptions{resident: DefaultResidentFrames}
	for _, opt := range opts {
		opt(&o)
	}
	return &History{
		cursor: -1,
		resident: cache.New[*Frame, struct{}](o.resident, func(f *Frame, _ struct{}) {
			f.Discard()
			Logger().Debug("frame buffer evicted", "frame", f.ID())
		}),
	}
}

// Submit creates a frame for v, inserts it after the cursor and makes it
// current.
func (h *History) Submit(v Viewport) *Frame {
	f := NewFrame(v)
	h.SubmitFrame(f)
	return f
}

// SubmitFrame inserts f after the cursor and makes it current.
func (h *History) SubmitFrame(f *Frame) {
	h.mu.Lock()
	i := h.cursor + 1
	h.frames = append(h.frames, nil)
	copy(h.frames[i+1:], h.frames[i:])
	h.frames[i] = f
	h.cursor = i
	n := len(h.frames)
	h.mu.Unlock()

	h.resident.Set(f, struct{}{})
	Logger().Info("frame submitted", "frame", f.ID(), "viewport", f.Viewport().String(),
		"index", i, "len", n, "resident", h.Resident())
}

// Current returns the frame under the cursor, or nil when empty.
func (h *History) Current() *Frame {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cursor < 0 {
		return nil
	}
	return h.frames[h.cursor]
}

// Back moves the cursor one frame back. It returns the new current frame
// and false when already at the first frame.
func (h *History) Back() (*Frame, bool) {
	return h.move(func(i, _ int) int { return i - 1 })
}

// Forward moves the cursor one frame forward. It returns the new current
// frame and false when already at the last frame.
func (h *History) Forward() (*Frame, bool) {
	return h.move(func(i, _ int) int { return i + 1 })
}

// Home moves the cursor to the first frame.
func (h *History) Home() (*Frame, bool) {
	return h.move(func(int, int) int { return 0 })
}

func (h *History) move(next func(cursor, n int) int) (*Frame, bool) {
	h.mu.Lock()
	if len(h.frames) == 0 {
		h.mu.Unlock()
		return nil, false
	}
	i := next(h.cursor, len(h.frames))
	if i < 0 || i >= len(h.frames) || i == h.cursor {
		f := h.frames[h.cursor]
		h.mu.Unlock()
		return f, false
	}
	h.cursor = i
	f := h.frames[i]
	h.mu.Unlock()

	h.resident.Set(f, struct{}{})
	return f, true
}

// CanStepBack reports whether Back would move the cursor.
func (h *History) CanStepBack() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor > 0
}

// CanStepForward reports whether Forward would move the cursor.
func (h *History) CanStepForward() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor >= 0 && h.cursor < len(h.frames)-1
}

// Len returns the number of frames.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.frames)
}

// Resident returns how many frames are currently tracked as keeping their
// iteration buffers.
func (h *History) Resident() int { return h.resident.Len() }

// Index returns the cursor position, or -1 when empty.
func (h *History) Index() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor
}

// Frames returns the frames in order.
func (h *History) Frames() []*Frame {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*Frame(nil), h.frames...)
}
