// Package httpapi exposes the editor engine over HTTP: import, document
// mutation, undo/redo, persistence and resource retrieval.
package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/slidekit/slidekit/export"
	"github.com/slidekit/slidekit/importer"
	"github.com/slidekit/slidekit/model"
	"github.com/slidekit/slidekit/pptx"
	"github.com/slidekit/slidekit/raw"
	"github.com/slidekit/slidekit/resource"
	"github.com/slidekit/slidekit/storage"
	"github.com/slidekit/slidekit/store"
)

// Service wires the engine components behind an HTTP router.
type Service struct {
	Store     *store.Store
	Storage   *storage.Manager
	Resources *resource.Manager
	Importer  *importer.Importer
	Parser    *pptx.Parser
	Logger    *slog.Logger

	// MaxUploadSize bounds import request bodies (default 200 MiB).
	MaxUploadSize int64
}

// Router builds the chi router for the service.
func (s *Service) Router() *chi.Mux {
	if s.Logger == nil {
		s.Logger = slog.Default()
	}
	if s.MaxUploadSize <= 0 {
		s.MaxUploadSize = 200 << 20
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/import", s.handleImport)

		r.Route("/document", func(r chi.Router) {
			r.Get("/", s.handleGetDocument)
			r.Put("/title", s.handleSetTitle)
			r.Post("/undo", s.handleUndo)
			r.Post("/redo", s.handleRedo)
			r.Put("/theme", s.handleSetTheme)
		})

		r.Route("/slides", func(r chi.Router) {
			r.Post("/", s.handleAddSlide)
			r.Post("/move", s.handleMoveSlide)
			r.Route("/{index}", func(r chi.Router) {
				r.Delete("/", s.handleDeleteSlide)
				r.Post("/duplicate", s.handleDuplicateSlide)
				r.Post("/activate", s.handleActivateSlide)
				r.Patch("/", s.handleUpdateSlide)
			})
		})

		r.Route("/elements", func(r chi.Router) {
			r.Post("/", s.handleAddElement)
			r.Delete("/", s.handleDeleteElements)
			r.Patch("/{id}", s.handleUpdateElement)
			r.Post("/group", s.handleGroup)
			r.Post("/ungroup", s.handleUngroup)
			r.Post("/align", s.handleAlign)
			r.Post("/distribute", s.handleDistribute)
			r.Post("/order", s.handleOrder)
			r.Put("/selection", s.handleSelection)
		})

		r.Route("/storage", func(r chi.Router) {
			r.Post("/save", s.handleSave)
			r.Post("/load", s.handleLoad)
			r.Post("/clear", s.handleClear)
			r.Get("/info", s.handleStorageInfo)
		})

		r.Get("/resources/{id}", s.handleGetResource)

		r.Get("/export/json", s.handleExportJSON)
		r.Get("/export/markdown", s.handleExportMarkdown)
	})

	return r
}

func (s *Service) handleImport(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, s.MaxUploadSize+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if int64(len(body)) > s.MaxUploadSize {
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Errorf("upload exceeds %d bytes", s.MaxUploadSize))
		return
	}

	var tree *raw.Document
	switch format := r.URL.Query().Get("format"); format {
	case "pptx":
		tree, err = s.Parser.Parse(bytes.NewReader(body), int64(len(body)))
	case "json", "":
		tree = &raw.Document{}
		err = json.Unmarshal(body, tree)
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown format %q", format))
		return
	}
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	doc, err := s.Importer.ImportDocument(tree)
	if err != nil {
		if errors.Is(err, importer.ErrNoSlides) {
			writeError(w, http.StatusUnprocessableEntity, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.Store.Replace(doc)
	writeJSON(w, http.StatusOK, map[string]any{
		"title":  doc.Title,
		"slides": len(doc.Slides),
	})
}

func (s *Service) handleGetDocument(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Store.Document())
}

func (s *Service) handleSetTitle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.Store.SetTitle(req.Title)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Service) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	var theme model.Theme
	if !decode(w, r, &theme) {
		return
	}
	s.Store.SetTheme(theme)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Service) handleUndo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"applied": s.Store.Undo(),
		"canUndo": s.Store.CanUndo(),
		"canRedo": s.Store.CanRedo(),
	})
}

func (s *Service) handleRedo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"applied": s.Store.Redo(),
		"canUndo": s.Store.CanUndo(),
		"canRedo": s.Store.CanRedo(),
	})
}

func (s *Service) handleAddSlide(w http.ResponseWriter, r *http.Request) {
	var slide model.Slide
	if !decode(w, r, &slide) {
		return
	}
	id := s.Store.AddSlide(slide)
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Service) handleMoveSlide(w http.ResponseWriter, r *http.Request) {
	var req struct {
		From int `json:"from"`
		To   int `json:"to"`
	}
	if !decode(w, r, &req) {
		return
	}
	if !s.Store.MoveSlide(req.From, req.To) {
		writeError(w, http.StatusNotFound, fmt.Errorf("cannot move slide %d to %d", req.From, req.To))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Service) handleDeleteSlide(w http.ResponseWriter, r *http.Request) {
	index, ok := pathIndex(w, r)
	if !ok {
		return
	}
	if !s.Store.DeleteSlide(index) {
		writeError(w, http.StatusNotFound, fmt.Errorf("no slide %d", index))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Service) handleDuplicateSlide(w http.ResponseWriter, r *http.Request) {
	index, ok := pathIndex(w, r)
	if !ok {
		return
	}
	id := s.Store.DuplicateSlide(index)
	if id == "" {
		writeError(w, http.StatusNotFound, fmt.Errorf("no slide %d", index))
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Service) handleActivateSlide(w http.ResponseWriter, r *http.Request) {
	index, ok := pathIndex(w, r)
	if !ok {
		return
	}
	if !s.Store.SetActiveSlide(index) {
		writeError(w, http.StatusNotFound, fmt.Errorf("no slide %d", index))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Service) handleUpdateSlide(w http.ResponseWriter, r *http.Request) {
	index, ok := pathIndex(w, r)
	if !ok {
		return
	}
	var patch model.Slide
	if !decode(w, r, &patch) {
		return
	}
	applied := s.Store.UpdateSlide(index, func(slide *model.Slide) {
		if patch.Background != nil {
			slide.Background = patch.Background
		}
		if patch.Transition != nil {
			slide.Transition = patch.Transition
		}
		if patch.Notes != "" {
			slide.Notes = patch.Notes
		}
	})
	if !applied {
		writeError(w, http.StatusNotFound, fmt.Errorf("no slide %d", index))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Service) handleAddElement(w http.ResponseWriter, r *http.Request) {
	var el model.Element
	if !decode(w, r, &el) {
		return
	}
	id := s.Store.AddElement(el)
	if id == "" {
		writeError(w, http.StatusConflict, fmt.Errorf("no active slide"))
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Service) handleUpdateElement(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var patch model.Element
	if !decode(w, r, &patch) {
		return
	}
	applied := s.Store.UpdateElement(id, func(el *model.Element) {
		*el = patch
	})
	if !applied {
		writeError(w, http.StatusNotFound, fmt.Errorf("no element %q", id))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Service) handleDeleteElements(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if !decode(w, r, &req) {
		return
	}
	removed := s.Store.DeleteElements(req.IDs)
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

func (s *Service) handleGroup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if !decode(w, r, &req) {
		return
	}
	id := s.Store.Group(req.IDs)
	if id == "" {
		writeError(w, http.StatusUnprocessableEntity, fmt.Errorf("need at least two elements to group"))
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Service) handleUngroup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if !decode(w, r, &req) {
		return
	}
	ids := s.Store.Ungroup(req.ID)
	if ids == nil {
		writeError(w, http.StatusNotFound, fmt.Errorf("no group %q", req.ID))
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"ids": ids})
}

func (s *Service) handleAlign(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mode string   `json:"mode"`
		IDs  []string `json:"ids"`
	}
	if !decode(w, r, &req) {
		return
	}
	if !s.Store.Align(req.Mode, req.IDs) {
		writeError(w, http.StatusUnprocessableEntity, fmt.Errorf("cannot align %v as %q", req.IDs, req.Mode))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Service) handleDistribute(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Axis string   `json:"axis"`
		IDs  []string `json:"ids"`
	}
	if !decode(w, r, &req) {
		return
	}
	if !s.Store.Distribute(req.Axis, req.IDs) {
		writeError(w, http.StatusUnprocessableEntity, fmt.Errorf("cannot distribute %v along %q", req.IDs, req.Axis))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Service) handleOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
		Op string `json:"op"` // front, back, forward, backward
	}
	if !decode(w, r, &req) {
		return
	}
	var applied bool
	switch req.Op {
	case "front":
		applied = s.Store.BringToFront(req.ID)
	case "back":
		applied = s.Store.SendToBack(req.ID)
	case "forward":
		applied = s.Store.BringForward(req.ID)
	case "backward":
		applied = s.Store.SendBackward(req.ID)
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown order op %q", req.Op))
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"applied": applied})
}

func (s *Service) handleSelection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []string `json:"ids"`
	}
	if !decode(w, r, &req) {
		return
	}
	s.Store.SetSelection(req.IDs)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Service) handleSave(w http.ResponseWriter, r *http.Request) {
	err := s.Storage.Save(r.Context(), s.Store.Document())
	if err != nil {
		if errors.Is(err, storage.ErrSaveInProgress) {
			writeError(w, http.StatusConflict, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

func (s *Service) handleLoad(w http.ResponseWriter, r *http.Request) {
	doc, err := s.Storage.Load(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if doc == nil {
		writeError(w, http.StatusNotFound, fmt.Errorf("no saved document"))
		return
	}
	s.Store.Replace(doc)
	writeJSON(w, http.StatusOK, map[string]any{
		"title":  doc.Title,
		"slides": len(doc.Slides),
	})
}

func (s *Service) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := s.Storage.Clear(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *Service) handleStorageInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.Storage.Info(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Service) handleGetResource(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	res, err := s.Resources.Fetch(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if res == nil {
		writeError(w, http.StatusNotFound, fmt.Errorf("no resource %q", id))
		return
	}
	if res.MimeType != "" {
		w.Header().Set("Content-Type", res.MimeType)
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(res.Data)
}

func (s *Service) handleExportJSON(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="presentation.json"`)
	if err := export.WriteJSON(w, s.Store.Document()); err != nil {
		s.Logger.Error("export json failed", "error", err)
	}
}

func (s *Service) handleExportMarkdown(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	if err := export.NewMarkdownWriter().Write(w, s.Store.Document()); err != nil {
		s.Logger.Error("export markdown failed", "error", err)
	}
}

func pathIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("bad slide index: %w", err))
		return 0, false
	}
	return index, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
