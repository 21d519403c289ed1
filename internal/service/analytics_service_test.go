package service

import (
	"context"
	"testing"
	"time"

	"makemeshort/internal/apperrors"
	"makemeshort/internal/classify"
	"makemeshort/internal/entities"
	"makemeshort/internal/models"
)

func newTestAnalytics(urls *fakeURLRepo, visitors *fakeVisitorRepo, qrs *fakeQRRepo) *analyticsService {
	classifier := &stubClassifier{byUA: map[string]classify.Classification{
		"chrome-desktop": {Browser: "chrome", Device: classify.DeviceDesktop},
		"safari-mobile":  {Browser: "safari", Device: classify.DeviceMobile},
	}}
	return NewAnalyticsService(urls, visitors, qrs, classifier).(*analyticsService)
}

func seedURL(t *testing.T, urls *fakeURLRepo, code string) {
	t.Helper()
	if _, err := urls.Create(context.Background(), code, "https://example.com/target", nil, nil); err != nil {
		t.Fatalf("seed URL: %v", err)
	}
}

func visit(code, hash, ua, ref, country string, at time.Time) *entities.URLVisitor {
	ev := &entities.URLVisitor{ShortCode: code, VisitorHash: hash, CountryCode: country, CreatedAt: at}
	if ua != "" {
		ev.UserAgent = &ua
	}
	if ref != "" {
		ev.Referrer = &ref
	}
	return ev
}

func TestSummarizeNotFound(t *testing.T) {
	svc := newTestAnalytics(newFakeURLRepo(), &fakeVisitorRepo{}, newFakeQRRepo())

	_, err := svc.Summarize(context.Background(), "nosuch", 0)
	if !apperrors.IsKind(err, apperrors.NotFound) {
		t.Fatalf("Summarize() kind = %v, want NotFound", apperrors.KindOf(err))
	}
}

func TestSummarizeExpiredURLStillReadable(t *testing.T) {
	urls := newFakeURLRepo()
	past := time.Now().Add(-time.Hour)
	if _, err := urls.Create(context.Background(), "gone11", "https://example.com", nil, &past); err != nil {
		t.Fatalf("seed URL: %v", err)
	}
	svc := newTestAnalytics(urls, &fakeVisitorRepo{}, newFakeQRRepo())

	summary, err := svc.Summarize(context.Background(), "gone11", 0)
	if err != nil {
		t.Fatalf("Summarize() on expired URL: %v", err)
	}
	if summary.ExpiresAt == nil {
		t.Error("summary should carry the expiry timestamp")
	}
}

func TestSummarizeTotalsAndBreakdowns(t *testing.T) {
	urls := newFakeURLRepo()
	visitors := &fakeVisitorRepo{}
	svc := newTestAnalytics(urls, visitors, newFakeQRRepo())

	seedURL(t, urls, "abc123")
	now := time.Now()
	events := []*entities.URLVisitor{
		visit("abc123", "h1", "chrome-desktop", "https://news.example.com", "US", now),
		visit("abc123", "h1", "chrome-desktop", "", "US", now),
		visit("abc123", "h2", "safari-mobile", "https://news.example.com", "DE", now),
		visit("abc123", "h3", "", "", "", now),
	}
	for _, ev := range events {
		if err := visitors.RecordVisit(context.Background(), ev); err != nil {
			t.Fatalf("RecordVisit: %v", err)
		}
	}

	summary, err := svc.Summarize(context.Background(), "abc123", 0)
	if err != nil {
		t.Fatalf("Summarize() error: %v", err)
	}

	if summary.Clicks != 4 {
		t.Errorf("Clicks = %d, want 4", summary.Clicks)
	}
	if summary.UniqueClicks != 3 {
		t.Errorf("UniqueClicks = %d, want 3", summary.UniqueClicks)
	}
	if summary.ReturningClicks != 1 {
		t.Errorf("ReturningClicks = %d, want 1", summary.ReturningClicks)
	}

	wantReferrers := []models.BucketCount{
		{Key: "direct", Count: 2},
		{Key: "https://news.example.com", Count: 2},
	}
	assertBuckets(t, "referrers", summary.Referrers, wantReferrers)

	wantBrowsers := []models.BucketCount{
		{Key: "chrome", Count: 2},
		{Key: "safari", Count: 1},
		{Key: "unknown", Count: 1},
	}
	assertBuckets(t, "browsers", summary.Browsers, wantBrowsers)

	wantCountries := []models.BucketCount{
		{Key: "US", Count: 2},
		{Key: "DE", Count: 1},
		{Key: "unknown", Count: 1},
	}
	assertBuckets(t, "countries", summary.Countries, wantCountries)
}

func assertBuckets(t *testing.T, label string, got, want []models.BucketCount) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: got %d buckets %v, want %d", label, len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("%s[%d] = %+v, want %+v", label, i, got[i], want[i])
		}
	}
}

func TestSortBreakdownDeterministic(t *testing.T) {
	counts := map[string]int64{"b": 2, "a": 2, "c": 5, "d": 1}
	got := sortBreakdown(counts)
	want := []models.BucketCount{
		{Key: "c", Count: 5},
		{Key: "a", Count: 2},
		{Key: "b", Count: 2},
		{Key: "d", Count: 1},
	}
	assertBuckets(t, "sorted", got, want)
}

func TestClickHistoryWindowed(t *testing.T) {
	urls := newFakeURLRepo()
	visitors := &fakeVisitorRepo{}
	svc := newTestAnalytics(urls, visitors, newFakeQRRepo())

	today := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return today }

	seedURL(t, urls, "abc123")
	for _, ev := range []*entities.URLVisitor{
		visit("abc123", "h1", "", "", "", today),
		visit("abc123", "h2", "", "", "", today),
		visit("abc123", "h3", "", "", "", today.AddDate(0, 0, -2)),
		// Outside the 3-day window, must be dropped.
		visit("abc123", "h4", "", "", "", today.AddDate(0, 0, -10)),
	} {
		if err := visitors.RecordVisit(context.Background(), ev); err != nil {
			t.Fatalf("RecordVisit: %v", err)
		}
	}

	summary, err := svc.Summarize(context.Background(), "abc123", 3)
	if err != nil {
		t.Fatalf("Summarize() error: %v", err)
	}

	want := []models.DayCount{
		{Date: "2026-03-08", Count: 1},
		{Date: "2026-03-09", Count: 0},
		{Date: "2026-03-10", Count: 2},
	}
	if len(summary.ClickHistory) != len(want) {
		t.Fatalf("history has %d days %v, want %d", len(summary.ClickHistory), summary.ClickHistory, len(want))
	}
	for i := range want {
		if summary.ClickHistory[i] != want[i] {
			t.Errorf("history[%d] = %+v, want %+v", i, summary.ClickHistory[i], want[i])
		}
	}
}

func TestClickHistorySparseWithoutWindow(t *testing.T) {
	urls := newFakeURLRepo()
	visitors := &fakeVisitorRepo{}
	svc := newTestAnalytics(urls, visitors, newFakeQRRepo())

	seedURL(t, urls, "abc123")
	d1 := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	for _, ev := range []*entities.URLVisitor{
		visit("abc123", "h1", "", "", "", d2),
		visit("abc123", "h2", "", "", "", d1),
	} {
		if err := visitors.RecordVisit(context.Background(), ev); err != nil {
			t.Fatalf("RecordVisit: %v", err)
		}
	}

	summary, err := svc.Summarize(context.Background(), "abc123", 0)
	if err != nil {
		t.Fatalf("Summarize() error: %v", err)
	}
	if len(summary.ClickHistory) != 2 {
		t.Fatalf("history = %v, want 2 sparse days", summary.ClickHistory)
	}
	if summary.ClickHistory[0].Date != "2026-01-01" || summary.ClickHistory[1].Date != "2026-02-01" {
		t.Errorf("history not in ascending day order: %v", summary.ClickHistory)
	}
}

func TestSummarizeQRProjections(t *testing.T) {
	urls := newFakeURLRepo()
	qrs := newFakeQRRepo()
	svc := newTestAnalytics(urls, &fakeVisitorRepo{}, qrs)

	seedURL(t, urls, "abc123")
	if _, err := qrs.Upsert(context.Background(), &entities.QRCode{
		ShortCode:  "abc123",
		TargetType: entities.TargetShortened,
		SVGContent: "<svg/>",
	}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	summary, err := svc.Summarize(context.Background(), "abc123", 0)
	if err != nil {
		t.Fatalf("Summarize() error: %v", err)
	}
	if !summary.HasShortenedQR || summary.ShortenedQRGeneratedAt == nil {
		t.Error("shortened QR projection missing")
	}
	if summary.HasOriginalQR || summary.OriginalQRGeneratedAt != nil {
		t.Error("original QR projection should be absent")
	}
}
