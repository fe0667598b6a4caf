package mandelray

import "sync/atomic"

// Epoch is a monotonically advancing render generation counter.
//
// Every render request advances the epoch and receives a Token naming the
// generation it belongs to. A token goes stale as soon as a newer request
// advances the epoch; workers poll Stale between rows and stop early.
type Epoch struct {
	n atomic.Uint64
}

// Advance starts a new generation and returns its token. All tokens
// issued earlier become stale.
func (e *Epoch) Advance() Token {
	return Token{epoch: e, gen: e.n.Add(1)}
}

// Current returns a token for the current generation without advancing.
func (e *Epoch) Current() Token {
	return Token{epoch: e, gen: e.n.Load()}
}

// Generation returns the current generation number.
func (e *Epoch) Generation() uint64 {
	return e.n.Load()
}

// Token identifies one render generation. The zero Token never goes stale.
type Token struct {
	epoch *Epoch
	gen   uint64
}

// Stale reports whether a newer generation has been started.
func (t Token) Stale() bool {
	return t.epoch != nil && t.epoch.n.Load() != t.gen
}

// Generation returns the generation the token was issued for.
func (t Token) Generation() uint64 { return t.gen }
