// Package idgen produces the opaque identifiers assigned to documents,
// slides, elements and groups. The strategy is a startup-time decision:
// every constructor in the module accepts a Generator.
package idgen

import (
	"crypto/rand"

	"github.com/google/uuid"
)

// Generator produces unique string identifiers.
type Generator func() string

// NanoID returns a Generator producing base-36 ids of the given length.
// A presentation carries thousands of element ids through history snapshots
// and serialized chunks, so compactness matters more than sortability.
func NanoID(length int) Generator {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	return func() string {
		buf := make([]byte, length)
		if _, err := rand.Read(buf); err != nil {
			panic("idgen: crypto/rand failed: " + err.Error())
		}
		out := make([]byte, length)
		for i := range out {
			out[i] = alphabet[int(buf[i])%len(alphabet)]
		}
		return string(out)
	}
}

// UUIDv7 returns a Generator producing RFC 9562 UUID v7 strings. Used where
// time-sortable ids are worth the verbosity.
func UUIDv7() Generator {
	return func() string {
		return uuid.Must(uuid.NewV7()).String()
	}
}

// Prefixed wraps a Generator and prepends a fixed prefix to every id,
// for type-scoped identifiers ("slide-", "el-", "grp-").
func Prefixed(prefix string, gen Generator) Generator {
	return func() string { return prefix + gen() }
}

// Default is the module-wide default generator.
var Default Generator = NanoID(10)

// Element produces a fresh element id.
func Element() string { return elementGen() }

// Slide produces a fresh slide id.
func Slide() string { return slideGen() }

// Group produces a fresh group id. Groups never reuse the id of any element
// they absorb.
func Group() string { return groupGen() }

var (
	elementGen = Prefixed("el-", Default)
	groupGen   = Prefixed("grp-", Default)

	// A deck holds tens of slides, not thousands; time-sortable ids that
	// record creation order are worth the extra length there.
	slideGen = Prefixed("slide-", UUIDv7())
)
