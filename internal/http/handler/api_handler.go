package handler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sifan077/PowerQR/internal/app/model"
	"github.com/sifan077/PowerQR/internal/app/qrcontent"
	"github.com/sifan077/PowerQR/internal/app/qrimage"
	"github.com/sifan077/PowerQR/internal/app/repository"
	"github.com/sifan077/PowerQR/internal/app/service"
	"github.com/sifan077/PowerQR/internal/http/middleware"
	httpUtil "github.com/sifan077/PowerQR/internal/http/util"
	"go.uber.org/zap"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterValidation("qrtype", func(fl validator.FieldLevel) bool {
			return qrcontent.Type(fl.Field().String()).Valid()
		})
	})
	return validate
}

// APIDeps groups dependencies required by API handlers.
type APIDeps struct {
	Logger        *zap.Logger
	QRCodes       service.QRCodeService
	Analytics     service.AnalyticsService
	Tokens        *httpUtil.TokenSigner
	PublicBaseURL string
}

// APIHandler implements the owner API endpoints.
type APIHandler struct {
	logger    *zap.Logger
	qrCodes   service.QRCodeService
	analytics service.AnalyticsService
	tokens    *httpUtil.TokenSigner
	baseURL   string
}

// NewAPIHandler creates an API handler with the provided dependencies.
func NewAPIHandler(deps APIDeps) *APIHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &APIHandler{
		logger:    logger,
		qrCodes:   deps.QRCodes,
		analytics: deps.Analytics,
		tokens:    deps.Tokens,
		baseURL:   deps.PublicBaseURL,
	}
}

// Register wires API routes onto the provided router.
func (h *APIHandler) Register(router fiber.Router) {
	api := router.Group("/api", middleware.Auth(h.tokens))
	{
		codes := api.Group("/qr-codes")
		{
			codes.Post("/", h.CreateQRCode)
			codes.Get("/", h.ListQRCodes)
			codes.Post("/preview", h.Preview)
			codes.Get("/:id", h.GetQRCode)
			codes.Patch("/:id", h.UpdateQRCode)
			codes.Delete("/:id", h.DeleteQRCode)
			codes.Post("/:id/pause", h.TogglePause)
			codes.Get("/:id/qr.png", h.QRCodePNG)
		}
		api.Get("/analytics", h.Analytics)
	}
}

// CreateQRCodeRequest represents the request body for creating a QR code.
type CreateQRCodeRequest struct {
	ID       string                 `json:"id,omitempty" validate:"omitempty,max=64"`
	Name     string                 `json:"name" validate:"required,max=255"`
	Type     string                 `json:"type" validate:"required,qrtype"`
	Content  map[string]string      `json:"content"`
	Style    map[string]interface{} `json:"style"`
	Paused   bool                   `json:"paused,omitempty"`
	FileURL  *string                `json:"file_url,omitempty" validate:"omitempty,url"`
	FileURLs []string               `json:"file_urls,omitempty" validate:"omitempty,max=20,dive,url"`
}

// UpdateQRCodeRequest represents the request body for updating a QR code.
type UpdateQRCodeRequest struct {
	Name     *string                `json:"name,omitempty" validate:"omitempty,max=255"`
	Content  map[string]string      `json:"content,omitempty"`
	Style    map[string]interface{} `json:"style,omitempty"`
	FileURL  *string                `json:"file_url,omitempty" validate:"omitempty,url"`
	FileURLs []string               `json:"file_urls,omitempty" validate:"omitempty,max=20,dive,url"`
}

// PreviewRequest is a live preview of unsaved content.
type PreviewRequest struct {
	Type    string            `json:"type" validate:"required,qrtype"`
	Content map[string]string `json:"content"`
	Size    int               `json:"size,omitempty" validate:"omitempty,min=0,max=1024"`
}

// QRCodeResponse is the owner view of a QR code.
type QRCodeResponse struct {
	model.PublicQRCode
	Payload   string    `json:"payload"`
	ScanCount *int64    `json:"scan_count,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (h *APIHandler) toResponse(code *model.QRCode) QRCodeResponse {
	doc := qrcontent.Decode(qrcontent.Type(code.Type), code.ContentStrings())
	return QRCodeResponse{
		PublicQRCode: code.Public(),
		Payload:      qrcontent.Encode(doc.Content, code.ID, h.baseURL),
		CreatedAt:    code.CreatedAt,
		UpdatedAt:    code.UpdatedAt,
	}
}

// CreateQRCode handles POST /api/qr-codes
func (h *APIHandler) CreateQRCode(c *fiber.Ctx) error {
	var req CreateQRCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if err := getValidator().Struct(req); err != nil {
		return validationError(c, err)
	}

	code, err := h.qrCodes.CreateQRCode(requestContext(c), middleware.OwnerID(c), service.CreateQRCodeInput{
		ID:       req.ID,
		Name:     req.Name,
		Type:     qrcontent.Type(req.Type),
		Content:  req.Content,
		Style:    req.Style,
		Paused:   req.Paused,
		FileURL:  req.FileURL,
		FileURLs: req.FileURLs,
	})
	if err != nil {
		return h.serviceError(c, "create qr code", err)
	}

	return c.Status(fiber.StatusCreated).JSON(h.toResponse(code))
}

// ListQRCodes handles GET /api/qr-codes
func (h *APIHandler) ListQRCodes(c *fiber.Ctx) error {
	limit := 20
	offset := 0

	if parsed := c.QueryInt("limit"); parsed > 0 && parsed <= 100 {
		limit = parsed
	}
	if parsed := c.QueryInt("offset"); parsed > 0 {
		offset = parsed
	}

	items, err := h.qrCodes.ListQRCodes(requestContext(c), middleware.OwnerID(c), limit, offset)
	if err != nil {
		return h.serviceError(c, "list qr codes", err)
	}

	response := make([]QRCodeResponse, len(items))
	for i := range items {
		count := items[i].ScanCount
		response[i] = h.toResponse(&items[i].Code)
		response[i].ScanCount = &count
	}

	return c.JSON(fiber.Map{
		"qr_codes": response,
		"limit":    limit,
		"offset":   offset,
		"count":    len(response),
	})
}

// GetQRCode handles GET /api/qr-codes/:id
func (h *APIHandler) GetQRCode(c *fiber.Ctx) error {
	code, err := h.qrCodes.GetQRCode(requestContext(c), middleware.OwnerID(c), c.Params("id"))
	if err != nil {
		return h.serviceError(c, "get qr code", err)
	}
	return c.JSON(h.toResponse(code))
}

// UpdateQRCode handles PATCH /api/qr-codes/:id
func (h *APIHandler) UpdateQRCode(c *fiber.Ctx) error {
	var req UpdateQRCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if err := getValidator().Struct(req); err != nil {
		return validationError(c, err)
	}

	code, err := h.qrCodes.UpdateQRCode(requestContext(c), middleware.OwnerID(c), c.Params("id"), service.UpdateQRCodeInput{
		Name:     req.Name,
		Content:  req.Content,
		Style:    req.Style,
		FileURL:  req.FileURL,
		FileURLs: req.FileURLs,
	})
	if err != nil {
		return h.serviceError(c, "update qr code", err)
	}
	return c.JSON(h.toResponse(code))
}

// TogglePause handles POST /api/qr-codes/:id/pause
func (h *APIHandler) TogglePause(c *fiber.Ctx) error {
	code, err := h.qrCodes.TogglePause(requestContext(c), middleware.OwnerID(c), c.Params("id"))
	if err != nil {
		return h.serviceError(c, "toggle pause", err)
	}
	return c.JSON(h.toResponse(code))
}

// DeleteQRCode handles DELETE /api/qr-codes/:id
func (h *APIHandler) DeleteQRCode(c *fiber.Ctx) error {
	if err := h.qrCodes.DeleteQRCode(requestContext(c), middleware.OwnerID(c), c.Params("id")); err != nil {
		return h.serviceError(c, "delete qr code", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// QRCodePNG handles GET /api/qr-codes/:id/qr.png
func (h *APIHandler) QRCodePNG(c *fiber.Ctx) error {
	code, err := h.qrCodes.GetQRCode(requestContext(c), middleware.OwnerID(c), c.Params("id"))
	if err != nil {
		return h.serviceError(c, "get qr code", err)
	}

	png, err := qrimage.Render(
		qrcontent.IndirectionURL(h.baseURL, code.ID),
		c.QueryInt("size", qrimage.DefaultSize),
		qrimage.StyleFromMap(code.Style),
	)
	if err != nil {
		h.logger.Error("failed to render qr code", zap.Error(err), zap.String("id", code.ID))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to render qr code",
		})
	}

	c.Set(fiber.HeaderCacheControl, "private, max-age=300")
	c.Type("png")
	return c.Send(png)
}

// Preview handles POST /api/qr-codes/preview. The payload is the direct
// target since unsaved content has no id yet.
func (h *APIHandler) Preview(c *fiber.Ctx) error {
	var req PreviewRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if err := getValidator().Struct(req); err != nil {
		return validationError(c, err)
	}

	doc := qrcontent.Decode(qrcontent.Type(req.Type), req.Content)
	payload := qrcontent.Encode(doc.Content, "", h.baseURL)

	if c.Query("format") != "png" {
		return c.JSON(fiber.Map{"payload": payload})
	}

	png, err := qrimage.Render(payload, req.Size, qrimage.StyleFromMap(nil))
	if err != nil {
		if errors.Is(err, qrimage.ErrEmptyPayload) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "content produces an empty payload",
			})
		}
		h.logger.Error("failed to render preview", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to render qr code",
		})
	}
	c.Type("png")
	return c.Send(png)
}

// Analytics handles GET /api/analytics
func (h *APIHandler) Analytics(c *fiber.Ctx) error {
	summary, err := h.analytics.Summary(requestContext(c), service.AnalyticsQuery{
		OwnerID:    middleware.OwnerID(c),
		QRCodeID:   c.Query("qr_code_id"),
		PeriodDays: c.QueryInt("period", 7),
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidPeriod) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		h.logger.Error("failed to build analytics", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to build analytics",
		})
	}
	return c.JSON(summary)
}

func (h *APIHandler) serviceError(c *fiber.Ctx, op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrQRCodeNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "qr code not found",
		})
	case errors.Is(err, service.ErrInvalidContent):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	h.logger.Error("failed to "+op, zap.Error(err), zap.String("id", c.Params("id")))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "failed to " + op,
	})
}

func validationError(c *fiber.Ctx, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	fields := make([]string, len(verrs))
	for i, fe := range verrs {
		fields[i] = strings.ToLower(fe.Field()) + ": " + fe.Tag()
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":  "validation failed",
		"fields": fields,
	})
}

func requestContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	return ctx
}
