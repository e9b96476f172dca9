package repository

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const scanCounterPrefix = "qr:scans:"

// ScanCounterRepository keeps a per-code scan count projection in Redis.
// Postgres stays authoritative; counts here may lag.
type ScanCounterRepository interface {
	Increment(ctx context.Context, qrCodeID string) error
	Get(ctx context.Context, qrCodeIDs []string) (map[string]int64, error)
	Replace(ctx context.Context, counts map[string]int64) error
}

type scanCounterRepository struct {
	rdb redis.Cmdable
}

// NewScanCounterRepository returns a Redis-backed ScanCounterRepository.
func NewScanCounterRepository(rdb redis.Cmdable) ScanCounterRepository {
	return &scanCounterRepository{rdb: rdb}
}

func (r *scanCounterRepository) Increment(ctx context.Context, qrCodeID string) error {
	return r.rdb.Incr(ctx, scanCounterPrefix+qrCodeID).Err()
}

func (r *scanCounterRepository) Get(ctx context.Context, qrCodeIDs []string) (map[string]int64, error) {
	out := make(map[string]int64, len(qrCodeIDs))
	if len(qrCodeIDs) == 0 {
		return out, nil
	}

	keys := make([]string, len(qrCodeIDs))
	for i, id := range qrCodeIDs {
		keys[i] = scanCounterPrefix + id
	}

	values, err := r.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			out[qrCodeIDs[i]] = 0
			continue
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			n = 0
		}
		out[qrCodeIDs[i]] = n
	}
	return out, nil
}

func (r *scanCounterRepository) Replace(ctx context.Context, counts map[string]int64) error {
	if len(counts) == 0 {
		return nil
	}
	pipe := r.rdb.Pipeline()
	for id, n := range counts {
		pipe.Set(ctx, scanCounterPrefix+id, n, 0)
	}
	_, err := pipe.Exec(ctx)
	return err
}
