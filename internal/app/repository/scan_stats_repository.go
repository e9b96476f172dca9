package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// ScanFilter narrows analytics queries to one owner, an optional QR code and
// a start time.
type ScanFilter struct {
	OwnerID  string
	QRCodeID string
	Since    time.Time
}

// Dimension is a column scans can be grouped by.
type Dimension string

const (
	DimensionOS      Dimension = "operating_system"
	DimensionCountry Dimension = "country"
	DimensionCity    Dimension = "city"
)

// GroupCount is one bucket of a grouped count.
type GroupCount struct {
	Name  string
	Count int64
}

// ScanFingerprint identifies a scanner coarsely for unique-scan estimates.
type ScanFingerprint struct {
	Day             time.Time
	OperatingSystem string
	Country         string
	City            string
}

// ScanStatsRepository runs read-only aggregate queries over scan events.
type ScanStatsRepository interface {
	CountBy(ctx context.Context, filter ScanFilter, dim Dimension) ([]GroupCount, error)
	DailyCounts(ctx context.Context, filter ScanFilter) (map[string]int64, error)
	EachFingerprint(ctx context.Context, filter ScanFilter, fn func(ScanFingerprint)) error
	CountsByQRCode(ctx context.Context) (map[string]int64, error)
}

// Querier is the subset of *pgxpool.Pool used by the stats repository.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type scanStatsRepository struct {
	db Querier
}

// NewScanStatsRepository returns a pgx-backed ScanStatsRepository.
func NewScanStatsRepository(db Querier) ScanStatsRepository {
	return &scanStatsRepository{db: db}
}

const dayLayout = "2006-01-02"

func (f ScanFilter) where() (string, []any) {
	clause := "owner_id = $1 AND scanned_at >= $2"
	args := []any{f.OwnerID, f.Since}
	if f.QRCodeID != "" {
		clause += " AND qr_code_id = $3"
		args = append(args, f.QRCodeID)
	}
	return clause, args
}

func (r *scanStatsRepository) CountBy(ctx context.Context, filter ScanFilter, dim Dimension) ([]GroupCount, error) {
	switch dim {
	case DimensionOS, DimensionCountry, DimensionCity:
	default:
		return nil, fmt.Errorf("unsupported dimension %q", dim)
	}

	where, args := filter.where()
	query := fmt.Sprintf(
		"SELECT COALESCE(NULLIF(%[1]s, ''), 'Unknown') AS name, COUNT(*) FROM qr_scans WHERE %[2]s GROUP BY name ORDER BY COUNT(*) DESC, name",
		dim, where,
	)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GroupCount
	for rows.Next() {
		var gc GroupCount
		if err := rows.Scan(&gc.Name, &gc.Count); err != nil {
			return nil, err
		}
		out = append(out, gc)
	}
	return out, rows.Err()
}

func (r *scanStatsRepository) DailyCounts(ctx context.Context, filter ScanFilter) (map[string]int64, error) {
	where, args := filter.where()
	query := "SELECT date_trunc('day', scanned_at AT TIME ZONE 'UTC') AS day, COUNT(*) FROM qr_scans WHERE " + where + " GROUP BY day"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var (
			day   time.Time
			count int64
		)
		if err := rows.Scan(&day, &count); err != nil {
			return nil, err
		}
		out[day.UTC().Format(dayLayout)] = count
	}
	return out, rows.Err()
}

func (r *scanStatsRepository) EachFingerprint(ctx context.Context, filter ScanFilter, fn func(ScanFingerprint)) error {
	where, args := filter.where()
	query := "SELECT date_trunc('day', scanned_at AT TIME ZONE 'UTC'), operating_system, country, city FROM qr_scans WHERE " + where

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var fp ScanFingerprint
		if err := rows.Scan(&fp.Day, &fp.OperatingSystem, &fp.Country, &fp.City); err != nil {
			return err
		}
		fn(fp)
	}
	return rows.Err()
}

func (r *scanStatsRepository) CountsByQRCode(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.Query(ctx, "SELECT qr_code_id, COUNT(*) FROM qr_scans GROUP BY qr_code_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var (
			id    string
			count int64
		)
		if err := rows.Scan(&id, &count); err != nil {
			return nil, err
		}
		out[id] = count
	}
	return out, rows.Err()
}
