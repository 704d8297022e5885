package main

import (
	"fmt"
	"time"

	"github.com/jwedi/logium/pkg/engine/model"
)

// buildTimeRange turns the shared --from/--to/--last flags into a
// model.TimeRange. --last takes precedence over --from when both are set,
// mirroring the teacher's query range flags (from/to/last on LogSearch).
func buildTimeRange(from, to, last string) (model.TimeRange, error) {
	var r model.TimeRange

	if last != "" {
		d, err := time.ParseDuration(last)
		if err != nil {
			return r, fmt.Errorf("invalid --last duration %q: %w", last, err)
		}
		r.Start = time.Now().Add(-d)
		r.HasStart = true
	} else if from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return r, fmt.Errorf("invalid --from timestamp %q (want RFC3339): %w", from, err)
		}
		r.Start = t
		r.HasStart = true
	}

	if to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return r, fmt.Errorf("invalid --to timestamp %q (want RFC3339): %w", to, err)
		}
		r.End = t
		r.HasEnd = true
	}

	return r, nil
}

// emptyTimeRange is the unbounded range used by commands that don't expose
// --from/--to/--last, such as watch's re-run.
func emptyTimeRange() model.TimeRange {
	return model.TimeRange{}
}
