package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/sql-manager/internal/service"
)

// CommentHandler serves snippet discussion threads.
type CommentHandler struct {
	comments *service.CommentService
	logger   *slog.Logger
}

func NewCommentHandler(comments *service.CommentService, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, logger: logger}
}

type createCommentRequest struct {
	Text string `json:"text"`
}

// HandleList returns a snippet's thread, oldest first.
//
// HTTP: GET /api/snippets/{id}/comments
func (h *CommentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	comments, err := h.comments.List(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

// HandleCreate appends the caller's comment to a snippet's thread.
//
// HTTP: POST /api/snippets/{id}/comments
// REQUEST BODY: {"text":"..."}
func (h *CommentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}

	var req createCommentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	comment, err := h.comments.Create(r.Context(), r.PathValue("id"), req.Text, user)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

// HandleDelete removes a comment. Only its author may do so.
//
// HTTP: DELETE /api/comments/{id}
func (h *CommentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := caller(w, r)
	if !ok {
		return
	}

	if err := h.comments.Delete(r.Context(), r.PathValue("id"), user); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "comment deleted"})
}
