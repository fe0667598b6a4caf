// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package surface provides the display surface abstraction the renderer
// writes into.
//
// A Surface owns its pixel memory. Writers never hold on to it: each batch
// of writes is bracketed by Acquire and Release, and Release carries the
// region that changed so presenters can copy only what moved.
//
// # Surface Types
//
//   - ImageSurface: in-memory packed ARGB pixels with row-band dirty tracking
//
// # Usage
//
//	s := surface.NewImageSurface(640, 480)
//	defer s.Close()
//
//	buf, err := s.Acquire()
//	if err != nil {
//	    return err
//	}
//	copy(buf.Row(0), line)
//	s.Release(buf, surface.RowRect(buf.Width, 0, 1))
//
//	if r := s.Collect(); !r.Empty() {
//	    present(s.Snapshot(), r)
//	}
//
// # Thread Safety
//
// All Surface methods are safe for concurrent use. Acquire serializes
// writers; a goroutine must Release before acquiring again.
package surface
