package storage

import (
	"context"
	"strings"

	"github.com/slidekit/slidekit/model"
	"github.com/slidekit/slidekit/resource"
)

// extractResources walks the (already deep-copied) document and replaces
// every inline binary payload with its resource id. URLs and other
// non-binary sources stay inline. Returns the complete live reference set.
func (m *Manager) extractResources(ctx context.Context, doc *model.Document) ([]resource.Reference, error) {
	var refs []resource.Reference
	var firstErr error

	for si := range doc.Slides {
		slideIndex := si
		doc.Slides[si].WalkMedia(func(elementID string, src *model.MediaSource) {
			if firstErr != nil {
				return
			}
			switch src.Kind {
			case model.SourceResource:
				// Already extracted by an earlier save.
				refs = append(refs, resource.Reference{
					ResourceID: src.ResourceID,
					ElementID:  elementID,
					SlideIndex: slideIndex,
				})
				return
			case model.SourceInline:
				if !isInlineBinary(src.Data) {
					return
				}
				res, err := m.res.Add(ctx, []byte(src.Data), typeOfDataURI(src.Data), mimeOfDataURI(src.Data), "")
				if err != nil {
					firstErr = err
					return
				}
				if res.Bypassed {
					// Oversized or pass-through: keep inline.
					return
				}
				*src = model.ResourceRef(res.ID)
				refs = append(refs, resource.Reference{
					ResourceID: res.ID,
					ElementID:  elementID,
					SlideIndex: slideIndex,
				})
			}
		})
		if firstErr != nil {
			return nil, firstErr
		}
	}
	return refs, nil
}

// inflateResources restores extracted payloads after a load. A missing
// resource leaves the reference in place so the renderer can show a
// placeholder instead of failing.
func (m *Manager) inflateResources(ctx context.Context, doc *model.Document) {
	for si := range doc.Slides {
		doc.Slides[si].WalkMedia(func(elementID string, src *model.MediaSource) {
			if src.Kind != model.SourceResource {
				return
			}
			data, err := m.res.Get(ctx, src.ResourceID)
			if err != nil {
				m.cfg.Logger.Warn("resource load failed", "resource", src.ResourceID, "error", err)
				return
			}
			if data == nil {
				m.cfg.Logger.Warn("resource missing, reference kept", "resource", src.ResourceID, "element", elementID)
				return
			}
			*src = model.Inline(string(data))
		})
	}
}

// isInlineBinary reports whether an inline source carries embedded binary
// content (a data URI) as opposed to an external URL.
func isInlineBinary(data string) bool {
	return strings.HasPrefix(data, "data:")
}

// mimeOfDataURI extracts the mime type of a data URI, e.g. "image/png".
func mimeOfDataURI(data string) string {
	rest := strings.TrimPrefix(data, "data:")
	if i := strings.IndexAny(rest, ";,"); i >= 0 {
		return rest[:i]
	}
	return ""
}

// typeOfDataURI maps the mime prefix to the resource media type. Anything
// unrecognized counts as an image; images dominate presentation media.
func typeOfDataURI(data string) resource.Type {
	switch {
	case strings.HasPrefix(data, "data:video/"):
		return resource.TypeVideo
	case strings.HasPrefix(data, "data:audio/"):
		return resource.TypeAudio
	default:
		return resource.TypeImage
	}
}
