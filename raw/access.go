package raw

import (
	"math"
	"strings"
)

// Kind classifies the node's type token. Unrecognized tokens map to
// KindUnknown; the converter decides the fallback (text).
func (n *Node) Kind() NodeKind {
	switch strings.ToLower(strings.TrimSpace(n.Type)) {
	case "text":
		return KindText
	case "shape":
		return KindShape
	case "image", "pic", "picture":
		return KindImage
	case "line", "connector":
		return KindLine
	case "chart":
		return KindChart
	case "table":
		return KindTable
	case "video":
		return KindVideo
	case "audio":
		return KindAudio
	case "math", "latex", "formula":
		return KindMath
	case "group":
		return KindGroup
	default:
		return KindUnknown
	}
}

// Num dereferences an optional float field. The boolean result is false when
// the field is absent or not finite.
func Num(p *float64) (float64, bool) {
	if p == nil || math.IsNaN(*p) || math.IsInf(*p, 0) {
		return 0, false
	}
	return *p, true
}

// NumOr dereferences an optional float field with a fallback.
func NumOr(p *float64, fallback float64) float64 {
	if v, ok := Num(p); ok {
		return v
	}
	return fallback
}

// IntOr dereferences an optional int field with a fallback.
func IntOr(p *int, fallback int) int {
	if p == nil {
		return fallback
	}
	return *p
}

// OpacityOf resolves the node's opacity in [0,1]. Opacity wins over Alpha;
// Alpha expresses transparency as a percentage. Absent both, fully opaque.
func (n *Node) OpacityOf() float64 {
	if v, ok := Num(n.Opacity); ok {
		return clamp01(v)
	}
	if a, ok := Num(n.Alpha); ok {
		return clamp01(1 - a/100)
	}
	return 1
}

// OrderOf resolves the node's explicit paint-order field. Order wins over
// ZIndex; absent both, the encounter position is used.
func (n *Node) OrderOf(encounter int) int {
	if n.Order != nil {
		return *n.Order
	}
	if n.ZIndex != nil {
		return *n.ZIndex
	}
	return encounter
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
