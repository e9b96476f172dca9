package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sifan077/PowerQR/internal/app/model"
	"github.com/sifan077/PowerQR/internal/app/service"
	"github.com/sifan077/PowerQR/internal/http/middleware"
)

type mockScanService struct {
	trackFn func(ctx context.Context, input service.TrackInput) (*model.PublicQRCode, error)
	inputs  []service.TrackInput
}

func (m *mockScanService) Track(ctx context.Context, input service.TrackInput) (*model.PublicQRCode, error) {
	m.inputs = append(m.inputs, input)
	if m.trackFn != nil {
		return m.trackFn(ctx, input)
	}
	return nil, service.ErrNotVisible
}

func newGatewayApp(scans service.ScanService) *fiber.App {
	app := fiber.New()
	app.Use(middleware.CORS())
	NewGatewayHandler(GatewayDeps{Scans: scans}).Register(app)
	return app
}

func postTrack(t *testing.T, app *fiber.App, body string, headers map[string]string) (*http.Response, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, "/track-scan", strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	var out map[string]interface{}
	raw, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(raw, &out)
	return resp, out
}

func TestTrackScan_Success(t *testing.T) {
	scans := &mockScanService{
		trackFn: func(ctx context.Context, input service.TrackInput) (*model.PublicQRCode, error) {
			return &model.PublicQRCode{ID: input.QRCodeID, Name: "Menu", Type: "website"}, nil
		},
	}
	app := newGatewayApp(scans)

	resp, body := postTrack(t, app, `{"qr_code_id":"qr-1"}`, map[string]string{
		"X-Forwarded-For": "1.2.3.4, 10.0.0.1",
		"User-Agent":      "Mozilla/5.0 (Linux; Android 14)",
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if body["success"] != true {
		t.Fatalf("unexpected body %#v", body)
	}
	qr, ok := body["qr_code"].(map[string]interface{})
	if !ok || qr["id"] != "qr-1" {
		t.Fatalf("unexpected qr_code %#v", body["qr_code"])
	}
	if _, leaked := qr["user_id"]; leaked {
		t.Fatal("owner must not be exposed")
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("expected CORS header on success")
	}
	if got := scans.inputs[0].ClientIP; got != "1.2.3.4" {
		t.Fatalf("expected client ip 1.2.3.4, got %q", got)
	}
}

func TestTrackScan_BadRequests(t *testing.T) {
	scans := &mockScanService{
		trackFn: func(ctx context.Context, input service.TrackInput) (*model.PublicQRCode, error) {
			if input.QRCodeID == "" {
				return nil, service.ErrQRCodeIDRequired
			}
			return nil, errors.New("unexpected")
		},
	}
	app := newGatewayApp(scans)

	for _, body := range []string{`{}`, `not json`, ``} {
		resp, out := postTrack(t, app, body, nil)
		if resp.StatusCode != fiber.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, resp.StatusCode)
		}
		if out["error"] != "qr_code_id required" {
			t.Fatalf("body %q: unexpected error %#v", body, out["error"])
		}
	}
}

func TestTrackScan_NotFoundAndFailure(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"not visible", service.ErrNotVisible, fiber.StatusNotFound, "not_found"},
		{"dependency", errors.New("record scan event: connection refused"), fiber.StatusInternalServerError, "record scan event: connection refused"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newGatewayApp(&mockScanService{
				trackFn: func(ctx context.Context, input service.TrackInput) (*model.PublicQRCode, error) {
					return nil, tc.err
				},
			})
			resp, out := postTrack(t, app, `{"qr_code_id":"qr-1"}`, nil)
			if resp.StatusCode != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, resp.StatusCode)
			}
			if out["error"] != tc.msg {
				t.Fatalf("unexpected error %#v", out["error"])
			}
			if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
				t.Fatal("expected CORS header on errors")
			}
		})
	}
}

func TestTrackScan_Preflight(t *testing.T) {
	scans := &mockScanService{}
	app := newGatewayApp(scans)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodOptions, "/track-scan", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	if len(scans.inputs) != 0 {
		t.Fatal("preflight must not track")
	}
}

func TestView_RedirectsLinkTypes(t *testing.T) {
	app := newGatewayApp(&mockScanService{
		trackFn: func(ctx context.Context, input service.TrackInput) (*model.PublicQRCode, error) {
			return &model.PublicQRCode{
				ID:      input.QRCodeID,
				Type:    "website",
				Content: map[string]interface{}{"url": "https://example.org/menu"},
			}, nil
		},
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/view/qr-1", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusFound {
		t.Fatalf("expected 302, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get(fiber.HeaderLocation); loc != "https://example.org/menu" {
		t.Fatalf("unexpected location %q", loc)
	}
}

func TestView_HandsOffNonURLPayloads(t *testing.T) {
	cases := []struct {
		name    string
		typ     string
		content map[string]interface{}
		want    string
	}{
		{"vcard", "vcard", map[string]interface{}{"firstName": "Ada", "lastName": "Lovelace", "phone": "+15550100"}, "BEGIN:VCARD"},
		{"multi-line text", "text", map[string]interface{}{"text": "line1\nline2"}, "line2"},
		{"header injection", "text", map[string]interface{}{"text": "https://a.example\r\nSet-Cookie: session=evil"}, "Set-Cookie: session=evil"},
		{"crlf in website url", "website", map[string]interface{}{"url": "https://a.example/\r\nX-Injected: 1"}, "X-Injected: 1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newGatewayApp(&mockScanService{
				trackFn: func(ctx context.Context, input service.TrackInput) (*model.PublicQRCode, error) {
					return &model.PublicQRCode{ID: input.QRCodeID, Name: "Card", Type: tc.typ, Content: tc.content}, nil
				},
			})

			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/view/qr-1", nil))
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			if resp.StatusCode != fiber.StatusOK {
				t.Fatalf("expected 200, got %d", resp.StatusCode)
			}
			if loc := resp.Header.Get(fiber.HeaderLocation); loc != "" {
				t.Fatalf("unexpected location %q", loc)
			}
			if resp.Header.Get(fiber.HeaderSetCookie) != "" || resp.Header.Get("X-Injected") != "" {
				t.Fatal("payload leaked into response headers")
			}
			raw, _ := io.ReadAll(resp.Body)
			if !strings.Contains(string(raw), tc.want) {
				t.Fatalf("expected page to show %q", tc.want)
			}
		})
	}
}

func TestView_RedirectsEmail(t *testing.T) {
	app := newGatewayApp(&mockScanService{
		trackFn: func(ctx context.Context, input service.TrackInput) (*model.PublicQRCode, error) {
			return &model.PublicQRCode{
				ID:      input.QRCodeID,
				Type:    "email",
				Content: map[string]interface{}{"email": "hi@example.org", "subject": "Hello\r\nthere"},
			}, nil
		},
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/view/qr-1", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusFound {
		t.Fatalf("expected 302, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get(fiber.HeaderLocation); !strings.HasPrefix(loc, "mailto:hi@example.org?subject=Hello%0D%0Athere") {
		t.Fatalf("unexpected location %q", loc)
	}
}

func TestView_RendersFileTypes(t *testing.T) {
	fileURL := "https://cdn.example.com/menu.pdf"
	app := newGatewayApp(&mockScanService{
		trackFn: func(ctx context.Context, input service.TrackInput) (*model.PublicQRCode, error) {
			return &model.PublicQRCode{ID: input.QRCodeID, Type: "pdf", FileURL: &fileURL}, nil
		},
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/view/qr-1", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	raw, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(raw), fileURL) {
		t.Fatal("expected page to embed the file url")
	}
}

func TestView_NotFound(t *testing.T) {
	app := newGatewayApp(&mockScanService{})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/view/missing", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	raw, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(raw), "QR Code Not Found") {
		t.Fatal("expected not found page")
	}
}
