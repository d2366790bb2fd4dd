// Package color converts the hex colours of the dashboard palette.
package color

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedHex is wrapped by every HexToRGB parse failure.
var ErrMalformedHex = errors.New("malformed hex colour")

// RGB is an 8-bit per channel colour.
type RGB struct {
	R, G, B uint8
}

// HexToRGB parses "#rrggbb". The leading # is optional and case is ignored.
func HexToRGB(value string) (RGB, error) {
	digits := strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(digits) != 6 {
		return RGB{}, fmt.Errorf("%w: %q must have 6 hex digits, got %d", ErrMalformedHex, value, len(digits))
	}

	raw, err := hex.DecodeString(digits)
	if err != nil {
		return RGB{}, fmt.Errorf("%w: %q: %v", ErrMalformedHex, value, err)
	}

	return RGB{R: raw[0], G: raw[1], B: raw[2]}, nil
}

// MustHexToRGB is HexToRGB for package level palettes such as the heatmap
// stops; it panics on bad input.
func MustHexToRGB(value string) RGB {
	c, err := HexToRGB(value)
	if err != nil {
		panic(err)
	}
	return c
}

// Hex formats the colour as lower-case #rrggbb.
func (c RGB) Hex() string {
	return "#" + hex.EncodeToString([]byte{c.R, c.G, c.B})
}

// CSS formats the colour as rgb(r,g,b).
func (c RGB) CSS() string {
	return fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B)
}

// RGBA formats the colour as rgba(r,g,b,a).
func (c RGB) RGBA(alpha float64) string {
	return fmt.Sprintf("rgba(%d,%d,%d,%g)", c.R, c.G, c.B, alpha)
}
