package repository

import (
	"context"

	"github.com/sifan077/PowerQR/internal/app/model"
	"gorm.io/gorm"
)

// ScanEventRepository defines the data access contract for scan events.
// Events are never updated or deleted through it.
type ScanEventRepository interface {
	Create(ctx context.Context, event *model.ScanEvent) error
}

type scanEventRepository struct {
	db *gorm.DB
}

// NewScanEventRepository returns a GORM-backed ScanEventRepository.
func NewScanEventRepository(db *gorm.DB) ScanEventRepository {
	return &scanEventRepository{db: db}
}

func (r *scanEventRepository) Create(ctx context.Context, event *model.ScanEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}
