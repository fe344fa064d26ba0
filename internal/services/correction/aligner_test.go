package correction

import (
	"testing"
	"time"

	"GridCast/internal/domain/models"
)

func series(times ...time.Time) []models.PriceRecord {
	out := make([]models.PriceRecord, len(times))
	for i, ts := range times {
		out[i] = models.PriceRecord{Market: "caiso", PriceType: "actual", Timestamp: ts, Price: float64(i + 1)}
	}
	return out
}

func TestAlignerExactMatch(t *testing.T) {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	a := NewAligner(series(base, base.Add(time.Hour), base.Add(2*time.Hour)))

	got := a.Closest(base.Add(time.Hour), DefaultTolerance)
	if got == nil {
		t.Fatalf("expected match")
	}
	if !got.Timestamp.Equal(base.Add(time.Hour)) {
		t.Fatalf("unexpected timestamp %v", got.Timestamp)
	}
}

func TestAlignerNearestWithinTolerance(t *testing.T) {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	a := NewAligner(series(base, base.Add(time.Hour)))

	// 40 minutes past base is closer to the 1h record.
	got := a.Closest(base.Add(40*time.Minute), DefaultTolerance)
	if got == nil {
		t.Fatalf("expected match")
	}
	if !got.Timestamp.Equal(base.Add(time.Hour)) {
		t.Fatalf("expected 1h record, got %v", got.Timestamp)
	}
}

func TestAlignerTieBreaksEarlier(t *testing.T) {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	a := NewAligner(series(base, base.Add(time.Hour)))

	// exactly between the two records
	got := a.Closest(base.Add(30*time.Minute), DefaultTolerance)
	if got == nil {
		t.Fatalf("expected match")
	}
	if !got.Timestamp.Equal(base) {
		t.Fatalf("expected earlier record on tie, got %v", got.Timestamp)
	}
}

func TestAlignerBeyondTolerance(t *testing.T) {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	a := NewAligner(series(base))

	if got := a.Closest(base.Add(61*time.Minute), DefaultTolerance); got != nil {
		t.Fatalf("expected nil beyond tolerance, got %v", got.Timestamp)
	}
	if got := a.Closest(base.Add(-2*time.Hour), DefaultTolerance); got != nil {
		t.Fatalf("expected nil beyond tolerance, got %v", got.Timestamp)
	}
}

func TestAlignerEmptySeries(t *testing.T) {
	a := NewAligner(nil)
	if got := a.Closest(time.Now(), DefaultTolerance); got != nil {
		t.Fatalf("expected nil for empty series")
	}
	if a.Len() != 0 {
		t.Fatalf("expected len 0")
	}
}

func TestAlignerSortsUnorderedInput(t *testing.T) {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	a := NewAligner(series(base.Add(2*time.Hour), base, base.Add(time.Hour)))

	got := a.Closest(base.Add(55*time.Minute), DefaultTolerance)
	if got == nil {
		t.Fatalf("expected match")
	}
	if !got.Timestamp.Equal(base.Add(time.Hour)) {
		t.Fatalf("expected 1h record, got %v", got.Timestamp)
	}
}
