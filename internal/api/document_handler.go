package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/signlyhq/signly/internal/documents"
	"github.com/signlyhq/signly/internal/user"
)

type DocumentHandler struct {
	docs *documents.Service
	log  *slog.Logger
}

func NewDocumentHandler(docs *documents.Service, log *slog.Logger) *DocumentHandler {
	return &DocumentHandler{
		docs: docs,
		log:  log,
	}
}

type createDocumentRequest struct {
	Title string `json:"title"`
}

func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	dbUser, ok := user.GetDBUserFromContext(r.Context())
	if !ok {
		writeJSONStatus(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

	var req createDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" {
		writeJSONStatus(w, http.StatusBadRequest, map[string]string{"error": "Missing title"})
		return
	}

	doc, err := h.docs.Create(r.Context(), dbUser.ID, req.Title)
	if err != nil {
		h.writeDocumentError(w, dbUser.ID, err)
		return
	}

	writeJSONStatus(w, http.StatusCreated, doc)
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	dbUser, ok := user.GetDBUserFromContext(r.Context())
	if !ok {
		writeJSONStatus(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

	docs, err := h.docs.List(r.Context(), dbUser.ID)
	if err != nil {
		h.log.Error("failed to list documents", "user_id", dbUser.ID, "error", err)
		writeJSONStatus(w, http.StatusInternalServerError, map[string]string{"error": "Could not list documents"})
		return
	}

	writeJSON(w, map[string]any{"documents": docs})
}

func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	dbUser, ok := user.GetDBUserFromContext(r.Context())
	if !ok {
		writeJSONStatus(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

	doc, err := h.docs.Get(r.Context(), dbUser.ID, mux.Vars(r)["documentID"])
	if err != nil {
		h.writeDocumentError(w, dbUser.ID, err)
		return
	}

	writeJSON(w, doc)
}

func (h *DocumentHandler) Publish(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.docs.Publish)
}

func (h *DocumentHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.docs.Complete)
}

func (h *DocumentHandler) Void(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.docs.Void)
}

func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	dbUser, ok := user.GetDBUserFromContext(r.Context())
	if !ok {
		writeJSONStatus(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

	url, err := h.docs.DownloadURL(r.Context(), dbUser.ID, mux.Vars(r)["documentID"])
	if err != nil {
		h.writeDocumentError(w, dbUser.ID, err)
		return
	}

	writeJSON(w, map[string]string{"download_url": url})
}

func (h *DocumentHandler) transition(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, userID, docID string) error) {
	dbUser, ok := user.GetDBUserFromContext(r.Context())
	if !ok {
		writeJSONStatus(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}

	docID := mux.Vars(r)["documentID"]
	if err := op(r.Context(), dbUser.ID, docID); err != nil {
		h.writeDocumentError(w, dbUser.ID, err)
		return
	}

	doc, err := h.docs.Get(r.Context(), dbUser.ID, docID)
	if err != nil {
		h.writeDocumentError(w, dbUser.ID, err)
		return
	}
	writeJSON(w, doc)
}

func (h *DocumentHandler) writeDocumentError(w http.ResponseWriter, userID string, err error) {
	switch {
	case errors.Is(err, documents.ErrLimitReached):
		writeJSONStatus(w, http.StatusForbidden, map[string]string{"error": err.Error()})
	case errors.Is(err, documents.ErrNotFound):
		writeJSONStatus(w, http.StatusNotFound, map[string]string{"error": "Document not found"})
	case errors.Is(err, documents.ErrInvalidTransition):
		writeJSONStatus(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		h.log.Error("document operation failed", "user_id", userID, "error", err)
		writeJSONStatus(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
}
