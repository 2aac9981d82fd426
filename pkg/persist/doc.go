// Package persist saves selected state fields to a Store and restores them
// when an app starts.
//
// A Persister is a bead instance: it owns the store key, the hydration flag
// and the write-behind saver, so two apps persisting under different keys
// never share state.
//
//	p := persist.NewPersister(store, "todos", persist.Fields("todos", "newText"))
//	defer p.Close(ctx)
//
//	app, err := sparkle.New(sparkle.Config{
//	    Seed:  bead.State{"todos": []any{}},
//	    Beads: []bead.Func{p.Bead(), demo.Todos},
//	})
//
// The first pass loads the stored record and merges it ahead of later
// beads. Every pass schedules a save of the selected fields; identical
// records are not written twice and bursts of passes are coalesced into
// one write after the configured delay.
//
// # Stores
//
//   - MemoryStore: process-local, for tests and single runs
//   - FileStore: one JSON file per key in a directory
//   - S3Store: one object per key in an S3 or S3-compatible bucket
//
// Records are JSON, so restored numbers are float64 and lists are []any.
// bead.State accessors accept both forms.
package persist
