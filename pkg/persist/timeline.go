package persist

import (
	"encoding/json"
	"time"

	"github.com/vango-dev/sparkle/pkg/bead"
)

// DefaultTimelineMax is the default length limit of the past and future
// stacks.
const DefaultTimelineMax = 100

// NewTimeline creates a persister for apps using undo/redo. It stores the
// "past" and "future" stacks, a snapshot of the remaining fields and the
// write time, and restores all of them on the first pass.
//
// past keeps its newest max entries and future its first max entries.
func NewTimeline(store Store, key string, max int, opts ...Option) *Persister {
	if max <= 0 {
		max = DefaultTimelineMax
	}
	o := newOptions(opts)
	return newPersister(store, key, timelineCodec{max: max}, o)
}

// timelineRecord is the stored form of a timeline.
type timelineRecord struct {
	Past      []bead.State `json:"past"`
	Future    []bead.State `json:"future"`
	Snapshot  bead.State   `json:"snapshot"`
	Timestamp int64        `json:"timestamp,omitempty"`
}

type timelineCodec struct {
	max int
}

func (c timelineCodec) restore(data []byte) (bead.State, error) {
	var rec timelineRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	past, future := rec.Past, rec.Future
	if past == nil {
		past = []bead.State{}
	}
	if future == nil {
		future = []bead.State{}
	}
	return rec.Snapshot.Merge(bead.State{
		"past":   past,
		"future": future,
	}), nil
}

func (c timelineCodec) capture(s bead.State) (record, error) {
	data := s.Data()
	past, future := data.States("past"), data.States("future")
	delete(data, "past")
	delete(data, "future")

	if len(past) > c.max {
		past = past[len(past)-c.max:]
	}
	if len(future) > c.max {
		future = future[:c.max]
	}
	if past == nil {
		past = []bead.State{}
	}
	if future == nil {
		future = []bead.State{}
	}

	rec := timelineRecord{Past: past, Future: future, Snapshot: data}
	sig, err := json.Marshal(rec)
	if err != nil {
		return record{}, err
	}
	return record{
		sig: sig,
		body: func(now time.Time) ([]byte, error) {
			stamped := rec
			stamped.Timestamp = now.UnixMilli()
			return json.Marshal(stamped)
		},
	}, nil
}
