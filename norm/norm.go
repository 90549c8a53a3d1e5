// Package norm converts externally-sourced units and vocabulary into the
// internal schema: point geometry to pixels, raw shape-type tokens to
// canonical categories, and loose color/alignment strings to safe values.
// All functions are pure and never fail; malformed input maps to a
// documented fallback.
package norm

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// One typographic point is 4/3 CSS pixels at 96 DPI.
const pxPerPoint = 4.0 / 3.0

// Fallbacks applied when a numeric field is missing or not finite.
const (
	FallbackPosition = 100.0
	FallbackSize     = 200.0
	FallbackFontSize = 16.0
)

// PointsToPixels converts a point value to pixels.
func PointsToPixels(pt float64) float64 {
	if !isFinite(pt) {
		return FallbackPosition
	}
	return pt * pxPerPoint
}

// PointsToPixelsOr converts a possibly-absent point value to pixels. ok=false
// or a non-finite value yields the fallback unchanged (the fallback is
// already in pixels).
func PointsToPixelsOr(pt float64, ok bool, fallback float64) float64 {
	if !ok || !isFinite(pt) {
		return fallback
	}
	return pt * pxPerPoint
}

// ScaleFactors computes independent horizontal and vertical scale mapping an
// external page of sourceW×sourceH points onto a canvas of canvasW×canvasH
// pixels. A degenerate dimension anywhere yields identity scale on both axes;
// a half-valid declared page size is not trusted to rescale either axis.
func ScaleFactors(sourceW, sourceH, canvasW, canvasH float64) (scaleX, scaleY float64) {
	for _, v := range [...]float64{sourceW, sourceH, canvasW, canvasH} {
		if !isFinite(v) || v <= 0 {
			return 1, 1
		}
	}
	return canvasW / (sourceW * pxPerPoint), canvasH / (sourceH * pxPerPoint)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

var hexColorRe = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
var rgbColorRe = regexp.MustCompile(`^rgba?\(\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})\s*(?:,\s*[\d.]+\s*)?\)$`)

// DefaultColor is substituted for colors that cannot be parsed.
const DefaultColor = "#000000"

// NormalizeColor coerces a color string to lowercase hex notation.
// Accepts #rgb, #rrggbb, #rrggbbaa and rgb()/rgba() forms; anything else
// yields DefaultColor.
func NormalizeColor(s string) string {
	s = strings.TrimSpace(s)
	if hexColorRe.MatchString(s) {
		if len(s) == 4 { // #rgb -> #rrggbb
			return strings.ToLower(fmt.Sprintf("#%c%c%c%c%c%c", s[1], s[1], s[2], s[2], s[3], s[3]))
		}
		return strings.ToLower(s)
	}
	if m := rgbColorRe.FindStringSubmatch(s); m != nil {
		r, _ := strconv.Atoi(m[1])
		g, _ := strconv.Atoi(m[2])
		b, _ := strconv.Atoi(m[3])
		if r <= 255 && g <= 255 && b <= 255 {
			return fmt.Sprintf("#%02x%02x%02x", r, g, b)
		}
	}
	return DefaultColor
}

// IsHexColor reports whether s is a valid hex color literal.
func IsHexColor(s string) bool {
	return hexColorRe.MatchString(strings.TrimSpace(s))
}

// NormalizeAlign maps loose alignment keywords onto the internal vocabulary
// (left, center, right, justify). Unknown values default to left.
func NormalizeAlign(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "center", "middle", "ctr":
		return "center"
	case "right", "r", "end":
		return "right"
	case "justify", "just", "dist":
		return "justify"
	default:
		return "left"
	}
}
