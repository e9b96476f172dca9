package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/sifan077/PowerQR/internal/app/repository"
)

// ErrInvalidPeriod is returned for an analytics window other than 7, 30 or 90 days.
var ErrInvalidPeriod = errors.New("period must be one of 7, 30, 90")

const (
	// filters are sized from the scan rows they will see, never below this
	minFilterCapacity   = 64
	uniqueFalsePositive = 0.0001
)

// AnalyticsQuery selects the scans an owner wants summarised.
type AnalyticsQuery struct {
	OwnerID    string
	QRCodeID   string
	PeriodDays int
}

// DailyScans is one point of the per-day series.
type DailyScans struct {
	Date   string `json:"date"`
	Scans  int64  `json:"scans"`
	Unique int64  `json:"unique"`
}

// Breakdown is a share of scans grouped by one attribute.
type Breakdown struct {
	Name    string  `json:"name"`
	Value   int64   `json:"value"`
	Percent float64 `json:"percent"`
}

// AnalyticsSummary is the owner dashboard report.
type AnalyticsSummary struct {
	PeriodDays  int          `json:"period_days"`
	TotalScans  int64        `json:"total_scans"`
	UniqueScans int64        `json:"unique_scans"`
	Daily       []DailyScans `json:"daily"`
	OS          []Breakdown  `json:"operating_systems"`
	Countries   []Breakdown  `json:"countries"`
	Cities      []Breakdown  `json:"cities"`
}

// AnalyticsService summarises an owner's scans.
type AnalyticsService interface {
	Summary(ctx context.Context, q AnalyticsQuery) (*AnalyticsSummary, error)
}

type analyticsService struct {
	stats repository.ScanStatsRepository
	now   func() time.Time
}

// NewAnalyticsService returns an analytics service over the stats repository.
func NewAnalyticsService(stats repository.ScanStatsRepository, now func() time.Time) AnalyticsService {
	if now == nil {
		now = time.Now
	}
	return &analyticsService{stats: stats, now: now}
}

func (s *analyticsService) Summary(ctx context.Context, q AnalyticsQuery) (*AnalyticsSummary, error) {
	switch q.PeriodDays {
	case 7, 30, 90:
	default:
		return nil, ErrInvalidPeriod
	}

	today := startOfDay(s.now().UTC())
	first := today.AddDate(0, 0, -(q.PeriodDays - 1))
	filter := repository.ScanFilter{OwnerID: q.OwnerID, QRCodeID: q.QRCodeID, Since: first}

	daily, err := s.stats.DailyCounts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("daily counts: %w", err)
	}

	var rows int64
	for _, n := range daily {
		rows += n
	}

	// unique = distinct OS-country-city fingerprints, per day and overall
	overall := newFingerprintFilter(rows)
	perDay := make(map[string]*bloom.BloomFilter)
	uniqueByDay := make(map[string]int64)
	var uniqueTotal int64

	err = s.stats.EachFingerprint(ctx, filter, func(fp repository.ScanFingerprint) {
		key := fp.OperatingSystem + "-" + fp.Country + "-" + fp.City
		if !overall.TestAndAddString(key) {
			uniqueTotal++
		}
		day := fp.Day.UTC().Format(dayLayout)
		f, ok := perDay[day]
		if !ok {
			f = newFingerprintFilter(daily[day])
			perDay[day] = f
		}
		if !f.TestAndAddString(key) {
			uniqueByDay[day]++
		}
	})
	if err != nil {
		return nil, fmt.Errorf("unique scans: %w", err)
	}

	summary := &AnalyticsSummary{
		PeriodDays:  q.PeriodDays,
		UniqueScans: uniqueTotal,
		Daily:       make([]DailyScans, 0, q.PeriodDays),
	}
	for d := first; !d.After(today); d = d.AddDate(0, 0, 1) {
		key := d.Format(dayLayout)
		summary.Daily = append(summary.Daily, DailyScans{
			Date:   key,
			Scans:  daily[key],
			Unique: uniqueByDay[key],
		})
		summary.TotalScans += daily[key]
	}

	if summary.OS, err = s.breakdown(ctx, filter, repository.DimensionOS, summary.TotalScans); err != nil {
		return nil, err
	}
	if summary.Countries, err = s.breakdown(ctx, filter, repository.DimensionCountry, summary.TotalScans); err != nil {
		return nil, err
	}
	if summary.Cities, err = s.breakdown(ctx, filter, repository.DimensionCity, summary.TotalScans); err != nil {
		return nil, err
	}

	return summary, nil
}

func (s *analyticsService) breakdown(ctx context.Context, filter repository.ScanFilter, dim repository.Dimension, total int64) ([]Breakdown, error) {
	groups, err := s.stats.CountBy(ctx, filter, dim)
	if err != nil {
		return nil, fmt.Errorf("count by %s: %w", dim, err)
	}

	out := make([]Breakdown, len(groups))
	for i, g := range groups {
		var pct float64
		if total > 0 {
			pct = float64(g.Count) / float64(total) * 100
		}
		out[i] = Breakdown{Name: g.Name, Value: g.Count, Percent: pct}
	}
	return out, nil
}

const dayLayout = "2006-01-02"

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func newFingerprintFilter(rows int64) *bloom.BloomFilter {
	if rows < minFilterCapacity {
		rows = minFilterCapacity
	}
	return bloom.NewWithEstimates(uint(rows), uniqueFalsePositive)
}
