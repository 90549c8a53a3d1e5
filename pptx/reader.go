// Package pptx parses Office Open XML presentations into the raw import
// tree. It covers the drawable surface needed by the importer: shapes,
// pictures, connectors, tables, charts, groups, backgrounds and speaker
// notes, with all geometry converted from EMUs to points and embedded
// media inlined as data URIs.
package pptx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/slidekit/slidekit/raw"
)

// Config configures a Parser.
type Config struct {
	// InlineMedia embeds picture and media payloads as base64 data URIs
	// (default: true; disable for text-only extraction).
	InlineMedia *bool `json:"inline_media" yaml:"inline_media"`

	// MaxMediaSize skips embedded media larger than this many bytes
	// (default: 50 MiB).
	MaxMediaSize int64 `json:"max_media_size" yaml:"max_media_size"`

	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if c.InlineMedia == nil {
		t := true
		c.InlineMedia = &t
	}
	if c.MaxMediaSize <= 0 {
		c.MaxMediaSize = 50 << 20
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Parser reads .pptx archives.
type Parser struct {
	cfg Config
}

// New creates a Parser.
func New(cfg Config) *Parser {
	cfg.defaults()
	return &Parser{cfg: cfg}
}

// ParseFile parses the .pptx archive at filename.
func (p *Parser) ParseFile(filename string) (*raw.Document, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("pptx: read file: %w", err)
	}
	return p.Parse(bytes.NewReader(data), int64(len(data)))
}

// Parse parses a .pptx archive from r.
func (p *Parser) Parse(r io.ReaderAt, size int64) (*raw.Document, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("pptx: open archive: %w", err)
	}
	a := &archive{Parser: p, zr: zr}
	return a.document()
}

// archive is the per-parse state: the open zip plus lazily loaded parts.
type archive struct {
	*Parser
	zr *zip.Reader
}

func (a *archive) part(name string) ([]byte, error) {
	for _, f := range a.zr.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, fmt.Errorf("pptx: open part %s: %w", name, err)
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("pptx: part not found: %s", name)
}

func (a *archive) document() (*raw.Document, error) {
	presData, err := a.part("ppt/presentation.xml")
	if err != nil {
		return nil, err
	}
	var pres xmlPresentation
	if err := xml.Unmarshal(presData, &pres); err != nil {
		return nil, fmt.Errorf("pptx: parse presentation.xml: %w", err)
	}

	doc := &raw.Document{Title: a.coreTitle()}
	if pres.SldSz != nil {
		doc.Size = raw.Size{
			Width:  emuToPt(pres.SldSz.Cx),
			Height: emuToPt(pres.SldSz.Cy),
		}
	}

	for _, name := range a.slideParts() {
		slide, err := a.parseSlide(name)
		if err != nil {
			a.cfg.Logger.Warn("pptx: skipping unparseable slide", "part", name, "error", err)
			continue
		}
		doc.Slides = append(doc.Slides, *slide)
	}
	if len(doc.Slides) == 0 {
		return nil, fmt.Errorf("pptx: no parseable slides")
	}
	return doc, nil
}

// slideParts lists slide parts in presentation order.
func (a *archive) slideParts() []string {
	var names []string
	for _, f := range a.zr.File {
		if strings.HasPrefix(f.Name, "ppt/slides/slide") &&
			strings.HasSuffix(f.Name, ".xml") &&
			!strings.Contains(f.Name, "_rels") {
			names = append(names, f.Name)
		}
	}
	sort.Slice(names, func(i, j int) bool {
		return slideNumber(names[i]) < slideNumber(names[j])
	})
	return names
}

func slideNumber(part string) int {
	s := strings.TrimSuffix(strings.TrimPrefix(part, "ppt/slides/slide"), ".xml")
	n := 0
	fmt.Sscanf(s, "%d", &n)
	return n
}

func (a *archive) coreTitle() string {
	data, err := a.part("docProps/core.xml")
	if err != nil {
		return ""
	}
	var core xmlCoreProps
	if xml.Unmarshal(data, &core) != nil {
		return ""
	}
	return core.Title
}

func (a *archive) parseSlide(part string) (*raw.Slide, error) {
	data, err := a.part(part)
	if err != nil {
		return nil, err
	}
	var sld xmlSlide
	if err := xml.Unmarshal(data, &sld); err != nil {
		return nil, err
	}

	rels := a.rels(part)
	slide := &raw.Slide{}
	if sld.CSld.Bg != nil && sld.CSld.Bg.BgPr != nil {
		bg := sld.CSld.Bg.BgPr
		slide.Fill = a.fillOf(bg.SolidFill, bg.GradFill, bg.BlipFill, rels)
	}
	slide.Elements = a.convertTree(&sld.CSld.SpTree, rels)
	slide.Note = a.notes(part, rels)
	return slide, nil
}

// rels loads the relationship part for a slide, or an empty map.
func (a *archive) rels(slidePart string) map[string]string {
	relsPart := path.Join(path.Dir(slidePart), "_rels", path.Base(slidePart)+".rels")
	targets := map[string]string{}
	data, err := a.part(relsPart)
	if err != nil {
		return targets
	}
	var rels xmlRels
	if xml.Unmarshal(data, &rels) != nil {
		return targets
	}
	for _, rel := range rels.Relationships {
		targets[rel.ID] = resolveTarget(rel.Target)
	}
	return targets
}

// resolveTarget normalizes a relationship target to a zip part name.
func resolveTarget(target string) string {
	if strings.HasPrefix(target, "../") {
		return "ppt/" + strings.TrimPrefix(target, "../")
	}
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return "ppt/slides/" + target
}

// notes extracts speaker notes text through the slide's notesSlide
// relationship.
func (a *archive) notes(slidePart string, rels map[string]string) string {
	var notesPart string
	for _, target := range rels {
		if strings.Contains(target, "notesSlide") {
			notesPart = target
			break
		}
	}
	if notesPart == "" {
		return ""
	}
	data, err := a.part(notesPart)
	if err != nil {
		return ""
	}
	var notes xmlNotes
	if xml.Unmarshal(data, &notes) != nil {
		return ""
	}
	var lines []string
	for _, sp := range notes.CSld.SpTree.Sp {
		if sp.TxBody == nil {
			continue
		}
		for _, para := range sp.TxBody.P {
			if text := plainText(&para); text != "" {
				lines = append(lines, text)
			}
		}
	}
	return strings.Join(lines, "\n")
}

func emuToPt(v int64) float64 {
	return float64(v) / emusPerPoint
}

func ptr(v float64) *float64 { return &v }
