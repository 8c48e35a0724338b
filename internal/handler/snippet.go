package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sakif/sql-manager/internal/apperror"
	"github.com/sakif/sql-manager/internal/model"
	"github.com/sakif/sql-manager/internal/service"
)

// SnippetHandler serves the shared snippet feed and per-snippet CRUD.
type SnippetHandler struct {
	snippets *service.SnippetService
	logger   *slog.Logger
}

func NewSnippetHandler(snippets *service.SnippetService, logger *slog.Logger) *SnippetHandler {
	return &SnippetHandler{snippets: snippets, logger: logger}
}

type createSnippetRequest struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	Notes    string   `json:"notes"`
}

// updateSnippetRequest uses pointers so an absent field ("leave it") can be
// told apart from an empty one ("clear it").
type updateSnippetRequest struct {
	Title    *string   `json:"title"`
	Content  *string   `json:"content"`
	Category *string   `json:"category"`
	Tags     *[]string `json:"tags"`
	Notes    *string   `json:"notes"`
}

// HandleList returns the feed, most recently updated first.
//
// HTTP: GET /api/snippets[?limit=N&offset=M]
//
// Without limit the whole feed is returned.
func (h *SnippetHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	snippets, err := h.snippets.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, snippets)
}

// HandleCreate saves a new snippet owned by the caller.
//
// HTTP: POST /api/snippets
// REQUEST BODY: {"title":"...","content":"SELECT ...","category":"...","tags":["..."],"notes":"..."}
func (h *SnippetHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}

	var req createSnippetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	snippet, err := h.snippets.Create(r.Context(), service.CreateSnippetInput{
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
		Tags:     req.Tags,
		Notes:    req.Notes,
	}, user)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, snippet)
}

// HandleGet returns one snippet.
//
// HTTP: GET /api/snippets/{id}
func (h *SnippetHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	snippet, err := h.snippets.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, snippet)
}

// HandleUpdate patches a snippet. Only its creator may do so.
//
// HTTP: PUT /api/snippets/{id}
func (h *SnippetHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}

	var req updateSnippetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	snippet, err := h.snippets.Update(r.Context(), r.PathValue("id"), model.SnippetPatch{
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
		Tags:     req.Tags,
		Notes:    req.Notes,
	}, user)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, snippet)
}

// HandleDelete removes a snippet and its comments. Only its creator may
// do so.
//
// HTTP: DELETE /api/snippets/{id}
func (h *SnippetHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}

	if err := h.snippets.Delete(r.Context(), r.PathValue("id"), user); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "snippet deleted"})
}

// queryInt parses an optional non-negative integer query parameter.
// Absent means 0.
func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperror.ValidationFailed(name, name+" must be a non-negative integer")
	}
	return n, nil
}
