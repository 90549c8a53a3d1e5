package idgen

import (
	"strings"
	"testing"
)

func TestNanoID_Length(t *testing.T) {
	for _, length := range []int{8, 10, 16} {
		id := NanoID(length)()
		if len(id) != length {
			t.Fatalf("NanoID(%d): got length %d", length, len(id))
		}
	}
}

func TestNanoID_Alphabet(t *testing.T) {
	id := NanoID(100)()
	for _, c := range id {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'z')) {
			t.Fatalf("NanoID: unexpected character %q in %q", c, id)
		}
	}
}

func TestNanoID_Uniqueness(t *testing.T) {
	gen := NanoID(12)
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id := gen()
		if _, ok := seen[id]; ok {
			t.Fatalf("NanoID: duplicate at iteration %d: %q", i, id)
		}
		seen[id] = struct{}{}
	}
}

func TestUUIDv7_Format(t *testing.T) {
	id := UUIDv7()()
	if parts := strings.Split(id, "-"); len(parts) != 5 {
		t.Fatalf("UUIDv7: expected 5 parts, got %d in %q", len(parts), id)
	}
	if len(id) != 36 {
		t.Fatalf("UUIDv7: expected length 36, got %d", len(id))
	}
}

func TestPrefixed(t *testing.T) {
	id := Prefixed("el-", NanoID(8))()
	if !strings.HasPrefix(id, "el-") {
		t.Fatalf("Prefixed: expected prefix 'el-', got %q", id)
	}
	if len(id) != 3+8 {
		t.Fatalf("Prefixed: expected length 11, got %d", len(id))
	}
}

func TestDomainPrefixes(t *testing.T) {
	tests := []struct {
		name   string
		gen    func() string
		prefix string
	}{
		{"Element", Element, "el-"},
		{"Slide", Slide, "slide-"},
		{"Group", Group, "grp-"},
	}
	for _, tt := range tests {
		id := tt.gen()
		if !strings.HasPrefix(id, tt.prefix) {
			t.Errorf("%s() = %q, want prefix %q", tt.name, id, tt.prefix)
		}
	}
}

func TestSlideIDsAreUUIDs(t *testing.T) {
	id := Slide()
	if len(id) != len("slide-")+36 {
		t.Fatalf("Slide() = %q, want a slide-prefixed UUID", id)
	}
}
