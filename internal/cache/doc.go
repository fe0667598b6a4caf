// Package cache provides a small generic LRU used to bound how many
// rendered frames keep their iteration buffers in memory.
//
//	resident := cache.New[*Frame, struct{}](8, func(f *Frame, _ struct{}) {
//	    f.Discard()
//	})
//	resident.Set(frame, struct{}{})
//
// LRU is safe for concurrent use.
package cache
