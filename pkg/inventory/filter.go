package inventory

import (
	"time"

	"github.com/openclimdata/subgrib/pkg/model"
)

// Filter applies the request's constraints to a unified inventory. It is a
// pure function; the returned slice preserves input order, which later
// fixes the byte order of the assembled artifact.
//
// Time selection differs by product. Analysis records are indexed by the
// time they describe, so they match on the valid date (and the valid hour
// against the step set). Forecast and reforecast records are indexed by
// the time they were issued, so they match on the exact initialization
// timestamp (and the lead hour against the step set). Conflating the two
// silently yields zero or wrong results.
func Filter(records []model.Record, req *model.Request) []model.Record {
	memberSet := intSet(req.Members)
	stepSet := intSet(req.Steps)
	paramSet := stringSet(req.Params)

	validDates := make(map[string]bool, len(req.Dates))
	initTimes := make(map[int64]bool, len(req.Dates))
	for _, d := range req.Dates {
		validDates[d.UTC().Format("20060102")] = true
		initTimes[d.UnixNano()] = true
	}

	analysis := req.Product == model.ProductAnalysis

	out := make([]model.Record, 0, len(records))
	for _, rec := range records {
		if memberSet != nil && !memberSet[rec.Number] {
			continue
		}

		if analysis {
			if !validDates[rec.Valid.UTC().Format("20060102")] {
				continue
			}
			if stepSet != nil && !stepSet[rec.Valid.UTC().Hour()] {
				continue
			}
		} else {
			if !initTimes[rec.Init.UnixNano()] {
				continue
			}
			if stepSet != nil && !stepSet[rec.Step] {
				continue
			}
		}

		if paramSet != nil && !paramSet[rec.Param] {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func intSet(values []int) map[int]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[int]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

func stringSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

// Steps expands an inclusive hour range into a step set, a convenience for
// callers selecting contiguous lead times.
func Steps(from, to int) []int {
	if to < from {
		from, to = to, from
	}
	steps := make([]int, 0, to-from+1)
	for s := from; s <= to; s++ {
		steps = append(steps, s)
	}
	return steps
}

// ValidRange returns the earliest and latest valid timestamps in records.
// The zero time is returned for an empty set.
func ValidRange(records []model.Record) (earliest, latest time.Time) {
	for _, rec := range records {
		if earliest.IsZero() || rec.Valid.Before(earliest) {
			earliest = rec.Valid
		}
		if rec.Valid.After(latest) {
			latest = rec.Valid
		}
	}
	return earliest, latest
}
