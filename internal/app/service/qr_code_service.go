package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sifan077/PowerQR/internal/app/model"
	"github.com/sifan077/PowerQR/internal/app/qrcontent"
	"github.com/sifan077/PowerQR/internal/app/repository"
	"gorm.io/datatypes"
)

// ErrInvalidContent is returned for a type or file reference combination the
// store must not accept.
var ErrInvalidContent = errors.New("invalid qr code content")

// QRCodeService defines owner-scoped operations on QR codes.
type QRCodeService interface {
	CreateQRCode(ctx context.Context, ownerID string, input CreateQRCodeInput) (*model.QRCode, error)
	GetQRCode(ctx context.Context, ownerID, id string) (*model.QRCode, error)
	ListQRCodes(ctx context.Context, ownerID string, limit, offset int) ([]QRCodeSummary, error)
	UpdateQRCode(ctx context.Context, ownerID, id string, input UpdateQRCodeInput) (*model.QRCode, error)
	TogglePause(ctx context.Context, ownerID, id string) (*model.QRCode, error)
	DeleteQRCode(ctx context.Context, ownerID, id string) error
}

// QRCodeSummary is a list entry with its projected scan count.
type QRCodeSummary struct {
	Code      model.QRCode
	ScanCount int64
}

// CreateQRCodeInput captures data required to create a QR code.
type CreateQRCodeInput struct {
	ID       string
	Name     string
	Type     qrcontent.Type
	Content  map[string]string
	Style    map[string]interface{}
	Paused   bool
	FileURL  *string
	FileURLs []string
}

// UpdateQRCodeInput captures fields that can be changed on an existing code.
type UpdateQRCodeInput struct {
	Name     *string
	Content  map[string]string
	Style    map[string]interface{}
	FileURL  *string
	FileURLs []string
}

type qrCodeService struct {
	repo     repository.QRCodeRepository
	counters repository.ScanCounterRepository
}

// NewQRCodeService returns a service backed by the given repositories.
// counters may be nil, in which case list entries report zero scans.
func NewQRCodeService(repo repository.QRCodeRepository, counters repository.ScanCounterRepository) QRCodeService {
	return &qrCodeService{repo: repo, counters: counters}
}

func (s *qrCodeService) CreateQRCode(ctx context.Context, ownerID string, input CreateQRCodeInput) (*model.QRCode, error) {
	if !input.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidContent, input.Type)
	}
	if err := validateFileRefs(input.Type, input.FileURL, input.FileURLs); err != nil {
		return nil, err
	}

	code := &model.QRCode{
		ID:       input.ID,
		UserID:   ownerID,
		Name:     input.Name,
		Type:     string(input.Type),
		Style:    datatypes.JSONMap(input.Style),
		Paused:   input.Paused,
		FileURL:  input.FileURL,
		FileURLs: input.FileURLs,
	}
	if code.ID == "" {
		code.ID = uuid.New().String()
	}
	code.SetContent(qrcontent.Decode(input.Type, input.Content).Map())

	if err := s.repo.Create(ctx, code); err != nil {
		return nil, fmt.Errorf("create qr code: %w", err)
	}
	return code, nil
}

func (s *qrCodeService) GetQRCode(ctx context.Context, ownerID, id string) (*model.QRCode, error) {
	code, err := s.repo.GetForOwner(ctx, ownerID, id)
	if err != nil {
		return nil, fmt.Errorf("get qr code: %w", err)
	}
	return code, nil
}

func (s *qrCodeService) ListQRCodes(ctx context.Context, ownerID string, limit, offset int) ([]QRCodeSummary, error) {
	codes, err := s.repo.ListByOwner(ctx, ownerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list qr codes: %w", err)
	}

	counts := map[string]int64{}
	if s.counters != nil && len(codes) > 0 {
		ids := make([]string, len(codes))
		for i := range codes {
			ids[i] = codes[i].ID
		}
		// counts are a convenience; a cache outage must not fail the list
		if got, err := s.counters.Get(ctx, ids); err == nil {
			counts = got
		}
	}

	out := make([]QRCodeSummary, len(codes))
	for i, code := range codes {
		out[i] = QRCodeSummary{Code: code, ScanCount: counts[code.ID]}
	}
	return out, nil
}

func (s *qrCodeService) UpdateQRCode(ctx context.Context, ownerID, id string, input UpdateQRCodeInput) (*model.QRCode, error) {
	code, err := s.repo.GetForOwner(ctx, ownerID, id)
	if err != nil {
		return nil, fmt.Errorf("load qr code: %w", err)
	}

	if input.Name != nil {
		code.Name = *input.Name
	}
	if input.Content != nil {
		code.SetContent(qrcontent.Decode(qrcontent.Type(code.Type), input.Content).Map())
	}
	if input.Style != nil {
		code.Style = datatypes.JSONMap(input.Style)
	}
	if input.FileURL != nil {
		code.FileURL = input.FileURL
	}
	if input.FileURLs != nil {
		code.FileURLs = input.FileURLs
	}

	if err := validateFileRefs(qrcontent.Type(code.Type), code.FileURL, code.FileURLs); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, code); err != nil {
		return nil, fmt.Errorf("update qr code: %w", err)
	}
	return code, nil
}

func (s *qrCodeService) TogglePause(ctx context.Context, ownerID, id string) (*model.QRCode, error) {
	code, err := s.repo.GetForOwner(ctx, ownerID, id)
	if err != nil {
		return nil, fmt.Errorf("load qr code: %w", err)
	}

	code.Paused = !code.Paused
	if err := s.repo.SetPaused(ctx, ownerID, id, code.Paused); err != nil {
		return nil, fmt.Errorf("toggle pause: %w", err)
	}
	return code, nil
}

func (s *qrCodeService) DeleteQRCode(ctx context.Context, ownerID, id string) error {
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return fmt.Errorf("delete qr code: %w", err)
	}
	return nil
}

func validateFileRefs(t qrcontent.Type, fileURL *string, fileURLs []string) error {
	if fileURL != nil && *fileURL != "" && len(fileURLs) > 0 {
		return fmt.Errorf("%w: file_url and file_urls are mutually exclusive", ErrInvalidContent)
	}
	if len(fileURLs) > 0 && t != qrcontent.TypeImages {
		return fmt.Errorf("%w: file_urls is only valid for images", ErrInvalidContent)
	}
	return nil
}
