package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sifan077/PowerQR/internal/app/geo"
	"github.com/sifan077/PowerQR/internal/app/model"
	"github.com/sifan077/PowerQR/internal/app/repository"
	infraPrometheus "github.com/sifan077/PowerQR/internal/infra/prometheus"
	"go.uber.org/zap"
)

var (
	// ErrQRCodeIDRequired is returned when a scan carries no QR code id.
	ErrQRCodeIDRequired = errors.New("qr_code_id required")
	// ErrNotVisible covers both missing and paused codes so public callers
	// cannot tell them apart.
	ErrNotVisible = errors.New("not_found")
)

// ScanNotifier announces persisted scan events. Implementations must not
// block the caller for long; failures are logged, never surfaced.
type ScanNotifier interface {
	Notify(ctx context.Context, event *model.ScanEvent) error
}

// TrackInput carries one scan request.
type TrackInput struct {
	QRCodeID  string
	UserAgent string
	ClientIP  string
}

// ScanService resolves public scans and records scan events.
type ScanService interface {
	Track(ctx context.Context, input TrackInput) (*model.PublicQRCode, error)
}

// ScanDeps groups the collaborators of the scan service.
type ScanDeps struct {
	Logger     *zap.Logger
	Codes      repository.QRCodeRepository
	Scans      repository.ScanEventRepository
	Locator    geo.Locator
	GeoTimeout time.Duration
	Notifier   ScanNotifier
	Now        func() time.Time
}

type scanService struct {
	logger     *zap.Logger
	codes      repository.QRCodeRepository
	scans      repository.ScanEventRepository
	locator    geo.Locator
	geoTimeout time.Duration
	notifier   ScanNotifier
	now        func() time.Time
}

// NewScanService returns the scan gateway service.
func NewScanService(deps ScanDeps) ScanService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &scanService{
		logger:     logger,
		codes:      deps.Codes,
		scans:      deps.Scans,
		locator:    deps.Locator,
		geoTimeout: deps.GeoTimeout,
		notifier:   deps.Notifier,
		now:        now,
	}
}

func (s *scanService) Track(ctx context.Context, input TrackInput) (*model.PublicQRCode, error) {
	start := time.Now()
	defer func() {
		infraPrometheus.ScanDuration.Observe(time.Since(start).Seconds())
	}()

	if input.QRCodeID == "" {
		infraPrometheus.ScansTotal.WithLabelValues("invalid").Inc()
		return nil, ErrQRCodeIDRequired
	}

	code, err := s.codes.GetByIDUnscoped(ctx, input.QRCodeID)
	if err != nil {
		if errors.Is(err, repository.ErrQRCodeNotFound) {
			infraPrometheus.ScansTotal.WithLabelValues("not_found").Inc()
			return nil, ErrNotVisible
		}
		infraPrometheus.ScansTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("load qr code: %w", err)
	}
	if code.Paused {
		infraPrometheus.ScansTotal.WithLabelValues("not_found").Inc()
		return nil, ErrNotVisible
	}

	clientIP := NormalizeIP(input.ClientIP)
	geoResult := geo.Resolve(ctx, s.locator, clientIP, s.geoTimeout)

	event := &model.ScanEvent{
		ID:              uuid.New().String(),
		QRCodeID:        code.ID,
		OwnerID:         code.UserID,
		OperatingSystem: DetectOS(input.UserAgent),
		Country:         geoResult.Location.Country,
		Region:          geoResult.Location.Region,
		City:            geoResult.Location.City,
		UserAgent:       input.UserAgent,
		ScannedAt:       s.now().UTC(),
	}
	if clientIP != "" {
		event.IPAddress = &clientIP
	}

	if err := s.scans.Create(ctx, event); err != nil {
		infraPrometheus.ScansTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("record scan event: %w", err)
	}
	infraPrometheus.ScansTotal.WithLabelValues("recorded").Inc()

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, event); err != nil {
			s.logger.Warn("failed to publish scan notification",
				zap.String("qr_code_id", event.QRCodeID),
				zap.String("scan_id", event.ID),
				zap.Error(err),
			)
		}
	}

	s.logger.Debug("scan recorded",
		zap.String("qr_code_id", event.QRCodeID),
		zap.String("os", event.OperatingSystem),
		zap.String("country", event.Country),
		zap.Bool("geo_resolved", geoResult.Resolved),
	)

	public := code.Public()
	return &public, nil
}
