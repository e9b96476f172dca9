package handler

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sifan077/PowerQR/internal/app/model"
	"github.com/sifan077/PowerQR/internal/app/qrcontent"
	"github.com/sifan077/PowerQR/internal/app/service"
	"github.com/sifan077/PowerQR/internal/http/view"
	"go.uber.org/zap"
)

// GatewayDeps groups dependencies required by the public scan routes.
type GatewayDeps struct {
	Logger *zap.Logger
	Scans  service.ScanService
}

// GatewayHandler implements the anonymous scan gateway and hosted view page.
type GatewayHandler struct {
	logger *zap.Logger
	scans  service.ScanService
}

// NewGatewayHandler creates a gateway handler with the provided dependencies.
func NewGatewayHandler(deps GatewayDeps) *GatewayHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GatewayHandler{
		logger: logger,
		scans:  deps.Scans,
	}
}

// Register wires public routes onto the provided router.
func (h *GatewayHandler) Register(router fiber.Router) {
	router.Get("/", h.Health)
	router.Get("/health", h.Health)
	router.Options("/track-scan", h.Preflight)
	router.Post("/track-scan", h.TrackScan)
	router.Get("/view/:id", h.View)
}

// Health is a simple root endpoint so we know the service is running.
func (h *GatewayHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": "PowerQR",
		"status":  "ok",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Preflight answers CORS preflight requests for the gateway.
func (h *GatewayHandler) Preflight(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

type trackScanRequest struct {
	QRCodeID string `json:"qr_code_id"`
}

// TrackScan handles POST /track-scan.
func (h *GatewayHandler) TrackScan(c *fiber.Ctx) error {
	var req trackScanRequest
	// an unparseable body is reported the same as a missing id
	_ = json.Unmarshal(c.Body(), &req)

	code, err := h.track(c, req.QRCodeID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrQRCodeIDRequired):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": service.ErrQRCodeIDRequired.Error(),
			})
		case errors.Is(err, service.ErrNotVisible):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": service.ErrNotVisible.Error(),
			})
		default:
			h.logger.Error("failed to track scan", zap.Error(err), zap.String("qr_code_id", req.QRCodeID))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"qr_code": code,
	})
}

// View handles GET /view/:id: link-like codes redirect to their target, file
// backed codes render the hosted page. Payloads that are not a safe redirect
// target (vcard, wifi, free text) get a hand-off page instead.
func (h *GatewayHandler) View(c *fiber.Ctx) error {
	id := c.Params("id")

	code, err := h.track(c, id)
	if err != nil {
		if errors.Is(err, service.ErrNotVisible) || errors.Is(err, service.ErrQRCodeIDRequired) {
			return h.renderNotFound(c)
		}
		h.logger.Error("failed to track view", zap.Error(err), zap.String("qr_code_id", id))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}

	t := qrcontent.Type(code.Type)
	if !t.RendersInline() {
		target := qrcontent.Target(qrcontent.Decode(t, code.ContentStrings()).Content)
		if view.SafeRedirect(target) {
			h.logger.Debug("redirecting scan", zap.String("qr_code_id", code.ID), zap.String("target", target))
			return c.Redirect(target, fiber.StatusFound)
		}
		return h.renderHandoff(c, code, target)
	}

	html, err := view.RenderViewPage(view.NewViewPageData(*code))
	if err != nil {
		h.logger.Error("failed to render view page", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to render page",
		})
	}

	return c.
		Type("html", "utf-8").
		SendString(html)
}

func (h *GatewayHandler) track(c *fiber.Ctx, id string) (*model.PublicQRCode, error) {
	return h.scans.Track(requestContext(c), service.TrackInput{
		QRCodeID:  id,
		UserAgent: c.Get(fiber.HeaderUserAgent),
		ClientIP:  service.ClientIP(c.Get(fiber.HeaderXForwardedFor), c.Get("X-Real-Ip")),
	})
}

func (h *GatewayHandler) renderNotFound(c *fiber.Ctx) error {
	html, err := view.RenderNotFoundPage()
	if err != nil {
		return c.Status(fiber.StatusNotFound).SendString("QR Code Not Found")
	}
	return c.Status(fiber.StatusNotFound).
		Type("html", "utf-8").
		SendString(html)
}

func (h *GatewayHandler) renderHandoff(c *fiber.Ctx, code *model.PublicQRCode, payload string) error {
	html, err := view.RenderHandoffPage(view.NewHandoffPageData(code.Name, code.Type, payload))
	if err != nil {
		h.logger.Error("failed to render handoff page", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to render page",
		})
	}
	return c.
		Type("html", "utf-8").
		SendString(html)
}
