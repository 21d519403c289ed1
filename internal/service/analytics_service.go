package service

import (
	"context"
	"sort"
	"time"

	"makemeshort/internal/apperrors"
	"makemeshort/internal/classify"
	"makemeshort/internal/entities"
	"makemeshort/internal/models"
	"makemeshort/internal/repository"
)

// Sentinel buckets for events with no referrer / no resolvable country.
const (
	referrerDirect = "direct"
	countryUnknown = "unknown"
)

// AnalyticsService derives summaries from the recorded visitor events. All
// figures are recomputed from the full event log on every read; there is no
// materialized state to drift out of sync with it.
type AnalyticsService interface {
	// Summarize aggregates the events for a code. windowDays limits and
	// zero-fills the click history; zero means unbounded (sparse) history.
	// Lookups succeed for expired records; only a missing record is NotFound.
	Summarize(ctx context.Context, code string, windowDays int) (*models.AnalyticsSummary, error)
}

type analyticsService struct {
	urls       repository.URLRepository
	visitors   repository.VisitorRepository
	qrs        repository.QRRepository
	classifier classify.Classifier
	now        func() time.Time
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(
	urls repository.URLRepository,
	visitors repository.VisitorRepository,
	qrs repository.QRRepository,
	classifier classify.Classifier,
) AnalyticsService {
	return &analyticsService{
		urls:       urls,
		visitors:   visitors,
		qrs:        qrs,
		classifier: classifier,
		now:        time.Now,
	}
}

func (s *analyticsService) Summarize(ctx context.Context, code string, windowDays int) (*models.AnalyticsSummary, error) {
	url, err := s.urls.FindByShortCode(ctx, code)
	if err != nil {
		return nil, err
	}

	events, err := s.visitors.FindByShortCode(ctx, code)
	if err != nil {
		return nil, err
	}

	summary := &models.AnalyticsSummary{
		ShortCode:   url.ShortCode,
		OriginalURL: url.OriginalURL,
		UserID:      url.UserID,
		CreatedAt:   url.CreatedAt,
		ExpiresAt:   url.ExpiresAt,
	}

	uniqueHashes := make(map[string]bool)
	referrers := make(map[string]int64)
	browsers := make(map[string]int64)
	devices := make(map[string]int64)
	countries := make(map[string]int64)

	for _, ev := range events {
		uniqueHashes[ev.VisitorHash] = true

		ref := referrerDirect
		if ev.Referrer != nil && *ev.Referrer != "" {
			ref = *ev.Referrer
		}
		referrers[ref]++

		ua := ""
		if ev.UserAgent != nil {
			ua = *ev.UserAgent
		}
		c := s.classifier.Classify(ua)
		browsers[c.Browser]++
		devices[c.Device]++

		country := ev.CountryCode
		if country == "" {
			country = countryUnknown
		}
		countries[country]++
	}

	summary.Clicks = int64(len(events))
	summary.UniqueClicks = int64(len(uniqueHashes))
	summary.ReturningClicks = summary.Clicks - summary.UniqueClicks

	summary.Referrers = sortBreakdown(referrers)
	summary.Browsers = sortBreakdown(browsers)
	summary.Devices = sortBreakdown(devices)
	summary.Countries = sortBreakdown(countries)

	summary.ClickHistory = s.clickHistory(events, windowDays)

	// QR projections: existence and generation timestamps of the cached
	// payloads, derived per read.
	if qr, err := s.qrs.FindByCodeAndType(ctx, code, entities.TargetShortened); err == nil {
		summary.HasShortenedQR = true
		t := qr.GeneratedAt
		summary.ShortenedQRGeneratedAt = &t
	} else if !apperrors.IsKind(err, apperrors.NotFound) {
		return nil, err
	}
	if qr, err := s.qrs.FindByCodeAndType(ctx, code, entities.TargetOriginal); err == nil {
		summary.HasOriginalQR = true
		t := qr.GeneratedAt
		summary.OriginalQRGeneratedAt = &t
	} else if !apperrors.IsKind(err, apperrors.NotFound) {
		return nil, err
	}

	return summary, nil
}

// sortBreakdown orders buckets by descending count, ties by ascending key,
// so responses are deterministic.
func sortBreakdown(counts map[string]int64) []models.BucketCount {
	buckets := make([]models.BucketCount, 0, len(counts))
	for k, n := range counts {
		buckets = append(buckets, models.BucketCount{Key: k, Count: n})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Count != buckets[j].Count {
			return buckets[i].Count > buckets[j].Count
		}
		return buckets[i].Key < buckets[j].Key
	})
	return buckets
}

const dayFormat = "2006-01-02"

// clickHistory groups events by calendar day (UTC), ascending. With a
// window, days inside the window are zero-filled and events outside it are
// dropped; without one, the full history is returned sparse.
func (s *analyticsService) clickHistory(events []*entities.URLVisitor, windowDays int) []models.DayCount {
	perDay := make(map[string]int64)
	for _, ev := range events {
		perDay[ev.CreatedAt.UTC().Format(dayFormat)]++
	}

	if windowDays > 0 {
		today := s.now().UTC().Truncate(24 * time.Hour)
		history := make([]models.DayCount, 0, windowDays)
		for i := windowDays - 1; i >= 0; i-- {
			day := today.AddDate(0, 0, -i).Format(dayFormat)
			history = append(history, models.DayCount{Date: day, Count: perDay[day]})
		}
		return history
	}

	days := make([]string, 0, len(perDay))
	for day := range perDay {
		days = append(days, day)
	}
	sort.Strings(days)

	history := make([]models.DayCount, 0, len(days))
	for _, day := range days {
		history = append(history, models.DayCount{Date: day, Count: perDay[day]})
	}
	return history
}
