package repository

import (
	"context"
	"errors"

	"github.com/sifan077/PowerQR/internal/app/model"
	"gorm.io/gorm"
)

var (
	// ErrQRCodeNotFound signals that the requested QR code does not exist
	// (or is not visible to the caller).
	ErrQRCodeNotFound = errors.New("qr code not found")
)

// QRCodeRepository defines the data access contract for QR codes.
//
// Every method except GetByIDUnscoped filters by owner. GetByIDUnscoped is the
// privileged lookup used by the public scan gateway.
type QRCodeRepository interface {
	Create(ctx context.Context, code *model.QRCode) error
	GetByIDUnscoped(ctx context.Context, id string) (*model.QRCode, error)
	GetForOwner(ctx context.Context, ownerID, id string) (*model.QRCode, error)
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]model.QRCode, error)
	Update(ctx context.Context, code *model.QRCode) error
	SetPaused(ctx context.Context, ownerID, id string, paused bool) error
	Delete(ctx context.Context, ownerID, id string) error
}

type qrCodeRepository struct {
	db *gorm.DB
}

// NewQRCodeRepository returns a GORM-backed QRCodeRepository.
func NewQRCodeRepository(db *gorm.DB) QRCodeRepository {
	return &qrCodeRepository{db: db}
}

func (r *qrCodeRepository) Create(ctx context.Context, code *model.QRCode) error {
	if err := r.db.WithContext(ctx).Create(code).Error; err != nil {
		return err
	}
	return nil
}

func (r *qrCodeRepository) GetByIDUnscoped(ctx context.Context, id string) (*model.QRCode, error) {
	var code model.QRCode
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQRCodeNotFound
		}
		return nil, err
	}
	return &code, nil
}

func (r *qrCodeRepository) GetForOwner(ctx context.Context, ownerID, id string) (*model.QRCode, error) {
	var code model.QRCode
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQRCodeNotFound
		}
		return nil, err
	}
	return &code, nil
}

func (r *qrCodeRepository) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]model.QRCode, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var result []model.QRCode
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *qrCodeRepository) Update(ctx context.Context, code *model.QRCode) error {
	result := r.db.WithContext(ctx).
		Model(&model.QRCode{}).
		Where("id = ? AND user_id = ?", code.ID, code.UserID).
		Updates(map[string]interface{}{
			"name":      code.Name,
			"content":   code.Content,
			"style":     code.Style,
			"file_url":  code.FileURL,
			"file_urls": code.FileURLs,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrQRCodeNotFound
	}

	return r.db.WithContext(ctx).Where("id = ?", code.ID).First(code).Error
}

func (r *qrCodeRepository) SetPaused(ctx context.Context, ownerID, id string, paused bool) error {
	result := r.db.WithContext(ctx).
		Model(&model.QRCode{}).
		Where("id = ? AND user_id = ?", id, ownerID).
		Update("paused", paused)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrQRCodeNotFound
	}
	return nil
}

func (r *qrCodeRepository) Delete(ctx context.Context, ownerID, id string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		Delete(&model.QRCode{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrQRCodeNotFound
	}
	return nil
}
