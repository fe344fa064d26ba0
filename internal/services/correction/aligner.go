package correction

import (
	"sort"
	"time"

	"GridCast/internal/domain/models"
)

// DefaultTolerance is the matching window used by every caller in the engine.
const DefaultTolerance = time.Hour

// Aligner answers nearest-record lookups against one price series. It sorts a
// private copy of the series once at construction and binary-searches per
// lookup, so callers doing one lookup per reading stay O((n+m) log n) instead
// of the naive O(n·m) linear scan.
type Aligner struct {
	records []models.PriceRecord
}

// NewAligner copies and sorts the series by timestamp ascending.
func NewAligner(series []models.PriceRecord) *Aligner {
	records := make([]models.PriceRecord, len(series))
	copy(records, series)
	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})
	return &Aligner{records: records}
}

// Len returns the number of records in the series.
func (a *Aligner) Len() int { return len(a.records) }

// Closest returns the record nearest to target if its distance is within
// tolerance, else nil. Ties are broken toward the earlier timestamp so
// repeated calls are reproducible.
func (a *Aligner) Closest(target time.Time, tolerance time.Duration) *models.PriceRecord {
	if len(a.records) == 0 {
		return nil
	}

	// i is the first record at or after target.
	i := sort.Search(len(a.records), func(k int) bool {
		return !a.records[k].Timestamp.Before(target)
	})

	best := -1
	if i < len(a.records) {
		best = i
	}
	if i > 0 {
		prev := i - 1
		if best == -1 || distance(a.records[prev].Timestamp, target) <= distance(a.records[best].Timestamp, target) {
			best = prev
		}
	}

	if best == -1 || distance(a.records[best].Timestamp, target) > tolerance {
		return nil
	}
	r := a.records[best]
	return &r
}

func distance(a, b time.Time) time.Duration {
	d := a.Sub(b)
	if d < 0 {
		return -d
	}
	return d
}
