// Package store provides the default per-request application state container.
//
// A Store is created for every rendered request and shared by all data hooks
// of that request. Hooks of different component branches run on different
// goroutines, so every operation is mutex guarded:
//
//	s := store.New(map[string]any{"locale": "en"})
//	s.Set("user", user)
//	s.Update("visits", func(v any) any {
//	    n, _ := v.(int)
//	    return n + 1
//	})
//	state := s.Snapshot() // copy, safe to serialize
//
// Logical write conflicts (two hooks writing the same key) are not
// arbitrated; the last write wins.
package store
