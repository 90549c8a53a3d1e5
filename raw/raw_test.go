package raw

import (
	"math"
	"testing"
)

func fp(v float64) *float64 { return &v }
func ip(v int) *int         { return &v }

func TestKind(t *testing.T) {
	tests := []struct {
		typ  string
		want NodeKind
	}{
		{"text", KindText},
		{"TEXT", KindText},
		{" shape ", KindShape},
		{"pic", KindImage},
		{"connector", KindLine},
		{"latex", KindMath},
		{"group", KindGroup},
		{"hologram", KindUnknown},
		{"", KindUnknown},
	}
	for _, tc := range tests {
		n := Node{Type: tc.typ}
		if got := n.Kind(); got != tc.want {
			t.Errorf("Kind(%q) = %q, want %q", tc.typ, got, tc.want)
		}
	}
}

func TestNum(t *testing.T) {
	if _, ok := Num(nil); ok {
		t.Error("nil pointer should not be ok")
	}
	if _, ok := Num(fp(math.NaN())); ok {
		t.Error("NaN should not be ok")
	}
	if _, ok := Num(fp(math.Inf(1))); ok {
		t.Error("Inf should not be ok")
	}
	if v, ok := Num(fp(3.5)); !ok || v != 3.5 {
		t.Errorf("Num(3.5) = (%v, %v)", v, ok)
	}
	if got := NumOr(nil, 42); got != 42 {
		t.Errorf("NumOr(nil, 42) = %v", got)
	}
	if got := NumOr(fp(math.NaN()), 42); got != 42 {
		t.Errorf("NumOr(NaN, 42) = %v, want the fallback", got)
	}
}

func TestOpacityOf(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want float64
	}{
		{"absent", Node{}, 1},
		{"opacity wins", Node{Opacity: fp(0.3), Alpha: fp(90)}, 0.3},
		{"alpha converts", Node{Alpha: fp(25)}, 0.75},
		{"opacity clamped high", Node{Opacity: fp(7)}, 1},
		{"opacity clamped low", Node{Opacity: fp(-2)}, 0},
		{"nan opacity falls through", Node{Opacity: fp(math.NaN()), Alpha: fp(50)}, 0.5},
	}
	for _, tc := range tests {
		if got := tc.node.OpacityOf(); got != tc.want {
			t.Errorf("%s: OpacityOf = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestOrderOf(t *testing.T) {
	if got := (&Node{}).OrderOf(7); got != 7 {
		t.Errorf("absent order = %d, want encounter 7", got)
	}
	if got := (&Node{ZIndex: ip(3)}).OrderOf(7); got != 3 {
		t.Errorf("zIndex order = %d, want 3", got)
	}
	if got := (&Node{Order: ip(1), ZIndex: ip(3)}).OrderOf(7); got != 1 {
		t.Errorf("order should win over zIndex, got %d", got)
	}
}
