package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"freightdesk/internal/domain/models"
	"freightdesk/internal/domain/repositories"
	"freightdesk/internal/domain/services"
	"freightdesk/internal/httputil"
)

// ClientHandler handles client lifecycle HTTP requests
type ClientHandler struct {
	clients   services.ClientService
	validator services.ClientValidator
	logger    *slog.Logger
}

// NewClientHandler creates a new client handler
func NewClientHandler(clients services.ClientService, validator services.ClientValidator, logger *slog.Logger) *ClientHandler {
	return &ClientHandler{
		clients:   clients,
		validator: validator,
		logger:    logger,
	}
}

// createClientResponse returns the created record together with the
// advisory warnings the validation produced.
type createClientResponse struct {
	Client   *models.Client           `json:"client"`
	Warnings []models.ValidationIssue `json:"warnings,omitempty"`
}

// CreateClient validates and creates a client
// POST /api/clients
func (h *ClientHandler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req services.CreateClientRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.validator.ValidateClientData(r.Context(), &req, nil)
	if err != nil {
		handleError(w, err)
		return
	}
	if !result.IsValid {
		httputil.RespondErrorWithExtras(w, http.StatusUnprocessableEntity, "client data failed validation", map[string]interface{}{
			"issues":   result.Errors,
			"warnings": result.Warnings,
		})
		return
	}

	client, err := h.clients.Create(r.Context(), &req, httputil.GetActorID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, createClientResponse{
		Client:   client,
		Warnings: result.Warnings,
	})
}

// GetClient retrieves a client by ID
// GET /api/clients/{id}
func (h *ClientHandler) GetClient(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid client ID format")
		return
	}

	client, err := h.clients.GetByID(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, client)
}

// ListClients lists non-deleted clients with optional filters
// GET /api/clients?status=&client_type=&tag=&limit=&offset=
func (h *ClientHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	filter := repositories.ClientFilter{}

	if s := r.URL.Query().Get("status"); s != "" {
		status := models.ClientStatus(s)
		if !models.ValidClientStatus(status) {
			httputil.RespondError(w, http.StatusBadRequest, "Unknown status filter")
			return
		}
		filter.Status = &status
	}
	if t := r.URL.Query().Get("client_type"); t != "" {
		clientType := models.ClientType(t)
		if clientType != models.ClientTypeIndividual && clientType != models.ClientTypeBusiness {
			httputil.RespondError(w, http.StatusBadRequest, "Unknown client_type filter")
			return
		}
		filter.Type = &clientType
	}
	if tag := r.URL.Query().Get("tag"); tag != "" {
		filter.Tag = &tag
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		limit, err := strconv.Atoi(l)
		if err != nil || limit < 0 {
			httputil.RespondError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		filter.Limit = limit
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		offset, err := strconv.Atoi(o)
		if err != nil || offset < 0 {
			httputil.RespondError(w, http.StatusBadRequest, "Invalid offset")
			return
		}
		filter.Offset = offset
	}

	clients, err := h.clients.List(r.Context(), filter)
	if err != nil {
		handleError(w, err)
		return
	}
	if clients == nil {
		clients = []models.Client{}
	}

	httputil.RespondJSON(w, http.StatusOK, clients)
}

// UpdateClient applies a partial update to a client
// PATCH /api/clients/{id}
func (h *ClientHandler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid client ID format")
		return
	}

	var req services.UpdateClientRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	current, err := h.clients.GetByID(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	result, err := h.validator.ValidateUpdate(r.Context(), current, &req)
	if err != nil {
		handleError(w, err)
		return
	}
	if !result.IsValid {
		httputil.RespondErrorWithExtras(w, http.StatusUnprocessableEntity, "client update failed validation", map[string]interface{}{
			"issues":   result.Errors,
			"warnings": result.Warnings,
		})
		return
	}

	client, err := h.clients.Update(r.Context(), id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, client)
}

// DeleteClient deletes a client, soft by default
// DELETE /api/clients/{id}
//
// The optional body carries deletion_type, reason, force and the
// folder handling mode. 409 when active folders block an unforced
// deletion.
func (h *ClientHandler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid client ID format")
		return
	}

	req := services.DeleteClientRequest{}
	if r.ContentLength > 0 {
		if err := httputil.ParseJSON(w, r, &req); err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}
	req.ClientID = id
	req.ActorID = httputil.GetActorID(r)

	result, err := h.clients.Delete(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// RestoreClient restores a soft-deleted client as inactive
// POST /api/clients/{id}/restore
func (h *ClientHandler) RestoreClient(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid client ID format")
		return
	}

	client, err := h.clients.Restore(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, client)
}

// GetStatistics aggregates folder counts and commercial figures
// GET /api/clients/{id}/statistics
func (h *ClientHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid client ID format")
		return
	}

	stats, err := h.clients.GetStatistics(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, stats)
}
