package service

import (
	"context"
	"time"

	"github.com/sifan077/PowerQR/internal/app/model"
	"github.com/sifan077/PowerQR/internal/app/repository"
)

type mockQRCodeRepository struct {
	createFn      func(ctx context.Context, code *model.QRCode) error
	getUnscopedFn func(ctx context.Context, id string) (*model.QRCode, error)
	getFn         func(ctx context.Context, ownerID, id string) (*model.QRCode, error)
	listFn        func(ctx context.Context, ownerID string, limit, offset int) ([]model.QRCode, error)
	updateFn      func(ctx context.Context, code *model.QRCode) error
	setPausedFn   func(ctx context.Context, ownerID, id string, paused bool) error
	deleteFn      func(ctx context.Context, ownerID, id string) error
}

func (m *mockQRCodeRepository) Create(ctx context.Context, code *model.QRCode) error {
	if m.createFn != nil {
		return m.createFn(ctx, code)
	}
	return nil
}

func (m *mockQRCodeRepository) GetByIDUnscoped(ctx context.Context, id string) (*model.QRCode, error) {
	if m.getUnscopedFn != nil {
		return m.getUnscopedFn(ctx, id)
	}
	return nil, repository.ErrQRCodeNotFound
}

func (m *mockQRCodeRepository) GetForOwner(ctx context.Context, ownerID, id string) (*model.QRCode, error) {
	if m.getFn != nil {
		return m.getFn(ctx, ownerID, id)
	}
	return nil, repository.ErrQRCodeNotFound
}

func (m *mockQRCodeRepository) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]model.QRCode, error) {
	if m.listFn != nil {
		return m.listFn(ctx, ownerID, limit, offset)
	}
	return nil, nil
}

func (m *mockQRCodeRepository) Update(ctx context.Context, code *model.QRCode) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, code)
	}
	return nil
}

func (m *mockQRCodeRepository) SetPaused(ctx context.Context, ownerID, id string, paused bool) error {
	if m.setPausedFn != nil {
		return m.setPausedFn(ctx, ownerID, id, paused)
	}
	return nil
}

func (m *mockQRCodeRepository) Delete(ctx context.Context, ownerID, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, ownerID, id)
	}
	return nil
}

type mockScanEventRepository struct {
	createFn func(ctx context.Context, event *model.ScanEvent) error
	created  []*model.ScanEvent
}

func (m *mockScanEventRepository) Create(ctx context.Context, event *model.ScanEvent) error {
	if m.createFn != nil {
		if err := m.createFn(ctx, event); err != nil {
			return err
		}
	}
	m.created = append(m.created, event)
	return nil
}

type mockScanStatsRepository struct {
	countByFn      func(ctx context.Context, filter repository.ScanFilter, dim repository.Dimension) ([]repository.GroupCount, error)
	dailyFn        func(ctx context.Context, filter repository.ScanFilter) (map[string]int64, error)
	fingerprints   []repository.ScanFingerprint
	countsByCodeFn func(ctx context.Context) (map[string]int64, error)
}

func (m *mockScanStatsRepository) CountBy(ctx context.Context, filter repository.ScanFilter, dim repository.Dimension) ([]repository.GroupCount, error) {
	if m.countByFn != nil {
		return m.countByFn(ctx, filter, dim)
	}
	return nil, nil
}

func (m *mockScanStatsRepository) DailyCounts(ctx context.Context, filter repository.ScanFilter) (map[string]int64, error) {
	if m.dailyFn != nil {
		return m.dailyFn(ctx, filter)
	}
	return map[string]int64{}, nil
}

func (m *mockScanStatsRepository) EachFingerprint(ctx context.Context, filter repository.ScanFilter, fn func(repository.ScanFingerprint)) error {
	for _, fp := range m.fingerprints {
		fn(fp)
	}
	return nil
}

func (m *mockScanStatsRepository) CountsByQRCode(ctx context.Context) (map[string]int64, error) {
	if m.countsByCodeFn != nil {
		return m.countsByCodeFn(ctx)
	}
	return map[string]int64{}, nil
}

type mockScanCounterRepository struct {
	counts   map[string]int64
	getErr   error
	replaced map[string]int64
}

func (m *mockScanCounterRepository) Increment(ctx context.Context, qrCodeID string) error {
	if m.counts == nil {
		m.counts = map[string]int64{}
	}
	m.counts[qrCodeID]++
	return nil
}

func (m *mockScanCounterRepository) Get(ctx context.Context, ids []string) (map[string]int64, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	out := map[string]int64{}
	for _, id := range ids {
		out[id] = m.counts[id]
	}
	return out, nil
}

func (m *mockScanCounterRepository) Replace(ctx context.Context, counts map[string]int64) error {
	m.replaced = counts
	return nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
