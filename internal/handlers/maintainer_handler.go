package handlers

import (
	"net/http"

	"civicreport/internal/models"
	"civicreport/internal/service"
)

// MaintainerHandler handles the administrator-facing maintainer directory.
type MaintainerHandler struct {
	maintainers *service.MaintainerService
}

func NewMaintainerHandler(maintainers *service.MaintainerService) *MaintainerHandler {
	return &MaintainerHandler{maintainers: maintainers}
}

func (h *MaintainerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.MaintainerInput
	if !decodeJSON(w, r, &req) {
		return
	}

	maintainer, err := h.maintainers.Create(req)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, maintainer)
}

func (h *MaintainerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid maintainer id")
		return
	}

	maintainer, err := h.maintainers.Get(id)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, maintainer)
}

// List returns the directory, or only the active candidates for one
// category when the query parameter is present.
func (h *MaintainerHandler) List(w http.ResponseWriter, r *http.Request) {
	if category := r.URL.Query().Get("category"); category != "" {
		maintainers, err := h.maintainers.ListCandidates(models.OfficeType(category))
		if err != nil {
			respondWithAppError(w, err)
			return
		}
		respondWithJSON(w, http.StatusOK, maintainers)
		return
	}

	maintainers, err := h.maintainers.List()
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, maintainers)
}

func (h *MaintainerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid maintainer id")
		return
	}

	var req service.MaintainerInput
	if !decodeJSON(w, r, &req) {
		return
	}

	maintainer, err := h.maintainers.Update(id, req)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, maintainer)
}

func (h *MaintainerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid maintainer id")
		return
	}

	if err := h.maintainers.Delete(id); err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
