package handler

import (
	"log/slog"
	"net/http"

	"freightdesk/internal/domain/models"
	"freightdesk/internal/domain/services"
	"freightdesk/internal/httputil"
)

// FolderHandler handles folder HTTP requests
type FolderHandler struct {
	folders services.FolderService
	logger  *slog.Logger
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(folders services.FolderService, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{
		folders: folders,
		logger:  logger,
	}
}

// CreateFolder creates a folder for an existing client
// POST /api/folders
func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req services.CreateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	folder, err := h.folders.CreateFolder(r.Context(), &req, httputil.GetActorID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, folder)
}

// GetFolder retrieves a folder by ID
// GET /api/folders/{id}
func (h *FolderHandler) GetFolder(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid folder ID format")
		return
	}

	folder, err := h.folders.GetFolder(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// ListClientFolders lists a client's folders, optionally by status
// GET /api/clients/{id}/folders?status=
func (h *FolderHandler) ListClientFolders(w http.ResponseWriter, r *http.Request) {
	clientID, err := parseUUID(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid client ID format")
		return
	}

	var status *models.FolderStatus
	if s := r.URL.Query().Get("status"); s != "" {
		folderStatus := models.FolderStatus(s)
		if !models.ValidFolderStatus(folderStatus) {
			httputil.RespondError(w, http.StatusBadRequest, "Unknown status filter")
			return
		}
		status = &folderStatus
	}

	folders, err := h.folders.ListByClient(r.Context(), clientID, status)
	if err != nil {
		handleError(w, err)
		return
	}
	if folders == nil {
		folders = []models.Folder{}
	}

	httputil.RespondJSON(w, http.StatusOK, folders)
}
