// Package qrimage renders encoded payloads as PNG QR symbols.
package qrimage

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

const (
	DefaultSize = 256
	MinSize     = 64
	MaxSize     = 1024
)

var ErrEmptyPayload = errors.New("payload is empty")

// Style is the subset of a stored style document that maps onto a PNG.
// Dot and corner shapes are browser-side only.
type Style struct {
	Foreground color.Color
	Background color.Color
}

// StyleFromMap reads dotsColor and backgroundColor from a stored style.
// Missing or malformed colours fall back to black on white.
func StyleFromMap(m map[string]interface{}) Style {
	s := Style{Foreground: color.Black, Background: color.White}
	if c, ok := hexColor(m["dotsColor"]); ok {
		s.Foreground = c
	}
	if c, ok := hexColor(m["backgroundColor"]); ok {
		s.Background = c
	}
	return s
}

// ClampSize bounds a requested edge length, using DefaultSize for zero.
func ClampSize(size int) int {
	switch {
	case size <= 0:
		return DefaultSize
	case size < MinSize:
		return MinSize
	case size > MaxSize:
		return MaxSize
	}
	return size
}

// Render returns a PNG of payload at the given edge length.
func Render(payload string, size int, style Style) ([]byte, error) {
	if payload == "" {
		return nil, ErrEmptyPayload
	}

	q, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("qrimage: encode: %w", err)
	}
	if style.Foreground != nil {
		q.ForegroundColor = style.Foreground
	}
	if style.Background != nil {
		q.BackgroundColor = style.Background
	}

	png, err := q.PNG(ClampSize(size))
	if err != nil {
		return nil, fmt.Errorf("qrimage: png: %w", err)
	}
	return png, nil
}

func hexColor(v interface{}) (color.Color, bool) {
	s, ok := v.(string)
	if !ok {
		return nil, false
	}
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return nil, false
	}
	n, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return nil, false
	}
	return color.RGBA{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 0xff}, true
}
