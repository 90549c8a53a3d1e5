package richtext

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/slidekit/slidekit/norm"
)

// Style is the single whole-box style extracted from imported markup.
// Zero values mean "not specified" and the converter keeps its defaults.
type Style struct {
	FontSize  float64
	FontName  string
	Color     string
	Align     string
	Bold      bool
	Italic    bool
	Underline bool
}

var (
	fontSizeRe   = regexp.MustCompile(`(?i)font-size\s*:\s*([\d.]+)\s*(px|pt)?`)
	colorRe      = regexp.MustCompile(`(?i)(?:^|[^-])color\s*:\s*(#[0-9a-fA-F]{3,8}|rgba?\([^)]*\))`)
	fontFamilyRe = regexp.MustCompile(`(?i)font-family\s*:\s*['"]?([^;'"]+)`)
	alignRe      = regexp.MustCompile(`(?i)text-align\s*:\s*(\w+)`)
	boldRe       = regexp.MustCompile(`(?i)font-weight\s*:\s*(bold|[7-9]00)`)
	italicRe     = regexp.MustCompile(`(?i)font-style\s*:\s*italic`)
	underlineRe  = regexp.MustCompile(`(?i)text-decoration[^;]*underline`)
	boldTagRe    = regexp.MustCompile(`(?i)<(strong|b)[\s>]`)
	italicTagRe  = regexp.MustCompile(`(?i)<(em|i)[\s>]`)
	uTagRe       = regexp.MustCompile(`(?i)<u[\s>]`)
)

// ExtractStyle pattern-matches inline styles and styling tags across the
// whole markup. The first match of each property wins.
func ExtractStyle(content string) Style {
	var s Style

	if m := fontSizeRe.FindStringSubmatch(content); m != nil {
		v, err := strconv.ParseFloat(m[1], 64)
		if err == nil && v > 0 {
			if strings.EqualFold(m[2], "pt") {
				v = norm.PointsToPixels(v)
			}
			s.FontSize = v
		}
	}
	if m := colorRe.FindStringSubmatch(content); m != nil {
		s.Color = norm.NormalizeColor(m[1])
	}
	if m := fontFamilyRe.FindStringSubmatch(content); m != nil {
		name := strings.TrimSpace(m[1])
		if i := strings.IndexByte(name, ','); i >= 0 {
			name = strings.TrimSpace(name[:i])
		}
		s.FontName = name
	}
	if m := alignRe.FindStringSubmatch(content); m != nil {
		s.Align = norm.NormalizeAlign(m[1])
	}
	s.Bold = boldRe.MatchString(content) || boldTagRe.MatchString(content)
	s.Italic = italicRe.MatchString(content) || italicTagRe.MatchString(content)
	s.Underline = underlineRe.MatchString(content) || uTagRe.MatchString(content)
	return s
}
