package history

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/diogo/llm-phishing-analyzer/internal/core"
)

func newTestStore(t *testing.T) *SQLiteHistory {
	t.Helper()
	store, err := NewSQLiteHistory(":memory:", zap.NewNop())
	if err != nil {
		t.Fatalf("NewSQLiteHistory: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveAssignsIDAndRecentOrders(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	records := []core.ScanRecord{
		{URL: "http://old.example.com", Verdict: string(core.VerdictLegitimate), Confidence: 0.1, Timestamp: base},
		{URL: "http://mid.example.com", Verdict: string(core.VerdictSuspicious), Confidence: 0.5, Timestamp: base.Add(time.Hour)},
		{URL: "http://new.example.com", Verdict: string(core.VerdictPhishing), Confidence: 0.9, Timestamp: base.Add(2 * time.Hour)},
	}
	for i := range records {
		if err := store.Save(ctx, &records[i]); err != nil {
			t.Fatalf("Save: %v", err)
		}
		if records[i].ID == 0 {
			t.Errorf("Save did not assign an ID to record %d", i)
		}
	}

	recent, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("Recent returned %d records, want 2", len(recent))
	}
	if recent[0].URL != "http://new.example.com" || recent[1].URL != "http://mid.example.com" {
		t.Errorf("Recent not ordered newest first: %q, %q", recent[0].URL, recent[1].URL)
	}
}

func TestStatsAggregates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	verdicts := []struct {
		verdict    core.Verdict
		confidence float64
	}{
		{core.VerdictPhishing, 0.9},
		{core.VerdictPhishing, 0.7},
		{core.VerdictSuspicious, 0.5},
		{core.VerdictLegitimate, 0.1},
	}
	for i, v := range verdicts {
		err := store.Save(ctx, &core.ScanRecord{
			URL:        "http://example.com",
			Verdict:    string(v.verdict),
			Confidence: v.confidence,
			Timestamp:  base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}

	if stats.Total != 4 || stats.Phishing != 2 || stats.Suspicious != 1 || stats.Legitimate != 1 {
		t.Errorf("counts = %d/%d/%d/%d, want 4/2/1/1",
			stats.Total, stats.Phishing, stats.Suspicious, stats.Legitimate)
	}
	// Phishing and Suspicious both count as detections: (2+1)/4.
	if stats.DetectionRate != 75 {
		t.Errorf("DetectionRate = %v, want 75", stats.DetectionRate)
	}
	if got, want := stats.AvgConfidence, 0.55; got < want-1e-9 || got > want+1e-9 {
		t.Errorf("AvgConfidence = %v, want %v", got, want)
	}
	if len(stats.Timeline) != 4 {
		t.Fatalf("Timeline has %d points, want 4", len(stats.Timeline))
	}
	if stats.Timeline[0].Verdict != string(core.VerdictPhishing) {
		t.Errorf("Timeline[0] = %q, want oldest verdict first", stats.Timeline[0].Verdict)
	}
	if stats.Timeline[len(stats.Timeline)-1].Verdict != string(core.VerdictLegitimate) {
		t.Errorf("Timeline[%d] = %q, want newest verdict last",
			len(stats.Timeline)-1, stats.Timeline[len(stats.Timeline)-1].Verdict)
	}
	if stats.Timeline[0].Date != "2025-06-01" {
		t.Errorf("Timeline[0].Date = %q, want 2025-06-01", stats.Timeline[0].Date)
	}
}

func TestTimelineKeepsNewestSevenInChronologicalOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for day := 0; day < 9; day++ {
		verdict := core.VerdictLegitimate
		if day >= 2 {
			verdict = core.VerdictPhishing
		}
		err := store.Save(ctx, &core.ScanRecord{
			URL:       "http://example.com",
			Verdict:   string(verdict),
			Timestamp: base.AddDate(0, 0, day),
		})
		if err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if len(stats.Timeline) != 7 {
		t.Fatalf("Timeline has %d points, want 7", len(stats.Timeline))
	}
	// The two oldest (Legitimate) records fall off; the window runs from
	// day 3 to day 9.
	if stats.Timeline[0].Date != "2025-06-03" {
		t.Errorf("Timeline[0].Date = %q, want 2025-06-03", stats.Timeline[0].Date)
	}
	if stats.Timeline[6].Date != "2025-06-09" {
		t.Errorf("Timeline[6].Date = %q, want 2025-06-09", stats.Timeline[6].Date)
	}
	for i := 1; i < len(stats.Timeline); i++ {
		if stats.Timeline[i].Date < stats.Timeline[i-1].Date {
			t.Fatalf("Timeline not chronological at %d: %q after %q",
				i, stats.Timeline[i].Date, stats.Timeline[i-1].Date)
		}
	}
}

func TestStatsOnEmptyStore(t *testing.T) {
	store := newTestStore(t)

	stats, err := store.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Total != 0 || stats.DetectionRate != 0 || stats.AvgConfidence != 0 {
		t.Errorf("empty store stats not zeroed: %+v", stats)
	}
}
