// Package export serializes documents for interchange: a versioned JSON
// envelope that round-trips losslessly, and a Markdown outline for
// text-oriented consumers.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/slidekit/slidekit/model"
)

// FormatVersion identifies the JSON envelope layout.
const FormatVersion = 1

// Envelope is the on-the-wire JSON document.
type Envelope struct {
	Version    int           `json:"version"`
	Title      string        `json:"title"`
	Slides     []model.Slide `json:"slides"`
	Theme      *model.Theme  `json:"theme,omitempty"`
	ExportTime time.Time     `json:"exportTime"`
}

// WriteJSON writes doc to w as an indented JSON envelope.
func WriteJSON(w io.Writer, doc *model.Document) error {
	env := Envelope{
		Version:    FormatVersion,
		Title:      doc.Title,
		Slides:     doc.Slides,
		ExportTime: time.Now().UTC(),
	}
	if !emptyTheme(doc.Theme) {
		theme := doc.Theme
		env.Theme = &theme
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(env); err != nil {
		return fmt.Errorf("export: encode json: %w", err)
	}
	return nil
}

// emptyTheme reports whether every theme field is unset. Theme carries a
// slice, so it cannot be compared against a zero literal.
func emptyTheme(t model.Theme) bool {
	return t.Name == "" && t.BackgroundColor == "" && t.FontColor == "" &&
		t.FontName == "" && len(t.ThemeColors) == 0
}

// ReadJSON parses a JSON envelope back into a document. Envelopes from
// future format versions are rejected.
func ReadJSON(r io.Reader) (*model.Document, error) {
	var env Envelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return nil, fmt.Errorf("export: decode json: %w", err)
	}
	if env.Version > FormatVersion {
		return nil, fmt.Errorf("export: unsupported format version %d", env.Version)
	}
	doc := &model.Document{
		Title:  env.Title,
		Slides: env.Slides,
	}
	if env.Theme != nil {
		doc.Theme = *env.Theme
	}
	if doc.Slides == nil {
		doc.Slides = []model.Slide{}
	}
	return doc, nil
}
