package handler

import (
	"log/slog"
	"net/http"

	"freightdesk/internal/domain/models"
	"freightdesk/internal/domain/services"
	"freightdesk/internal/httputil"
)

// BatchHandler handles batch mutation HTTP requests. Every endpoint
// responds 200 with a full BatchResult even when some or all items
// failed; only envelope-level malformation yields an error status.
type BatchHandler struct {
	batch  services.BatchService
	logger *slog.Logger
}

// NewBatchHandler creates a new batch handler
func NewBatchHandler(batch services.BatchService, logger *slog.Logger) *BatchHandler {
	return &BatchHandler{
		batch:  batch,
		logger: logger,
	}
}

// BatchCreate creates many clients
// POST /api/clients/batch
func (h *BatchHandler) BatchCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items []*services.CreateClientRequest `json:"items"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.batch.BatchCreate(r.Context(), req.Items, httputil.GetActorID(r), nil)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// BatchUpdate applies partial updates to many clients
// POST /api/clients/batch/update
func (h *BatchHandler) BatchUpdate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items []services.BatchUpdateItem `json:"items"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.batch.BatchUpdate(r.Context(), req.Items, nil)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// BatchDelete deletes many clients with shared deletion parameters
// POST /api/clients/batch/delete
func (h *BatchHandler) BatchDelete(w http.ResponseWriter, r *http.Request) {
	var req services.BatchDeleteRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.ActorID = httputil.GetActorID(r)

	result, err := h.batch.BatchDelete(r.Context(), &req, nil)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// BatchUpdateTags adds, removes or replaces tags on many clients
// POST /api/clients/batch/tags
func (h *BatchHandler) BatchUpdateTags(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ClientIDs []string         `json:"client_ids"`
		Mode      services.TagMode `json:"mode"`
		Tags      []string         `json:"tags"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.batch.BatchUpdateTags(r.Context(), req.ClientIDs, req.Mode, req.Tags, nil)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// BatchUpdateStatus moves many clients to a new status
// POST /api/clients/batch/status
func (h *BatchHandler) BatchUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ClientIDs []string            `json:"client_ids"`
		Status    models.ClientStatus `json:"status"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.batch.BatchUpdateStatus(r.Context(), req.ClientIDs, req.Status, nil)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}
