package handlers

import (
	"net/http"

	"civicreport/internal/models"
	"civicreport/internal/service"
)

// OfficerHandler handles the administrator-facing officer directory.
type OfficerHandler struct {
	officers *service.OfficerService
}

func NewOfficerHandler(officers *service.OfficerService) *OfficerHandler {
	return &OfficerHandler{officers: officers}
}

func (h *OfficerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.OfficerInput
	if !decodeJSON(w, r, &req) {
		return
	}

	officer, err := h.officers.Create(req)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, officer)
}

func (h *OfficerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid officer id")
		return
	}

	officer, err := h.officers.Get(id)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, officer)
}

// List returns the directory, optionally only the technical staff of one
// office (the assignment candidates on the review screen).
func (h *OfficerHandler) List(w http.ResponseWriter, r *http.Request) {
	if office := r.URL.Query().Get("office"); office != "" {
		officers, err := h.officers.ListTechnicalStaff(models.OfficeType(office))
		if err != nil {
			respondWithAppError(w, err)
			return
		}
		respondWithJSON(w, http.StatusOK, officers)
		return
	}

	officers, err := h.officers.List()
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, officers)
}

func (h *OfficerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid officer id")
		return
	}

	var req service.OfficerInput
	if !decodeJSON(w, r, &req) {
		return
	}

	officer, err := h.officers.Update(id, req)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, officer)
}

func (h *OfficerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid officer id")
		return
	}

	if err := h.officers.Delete(id); err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
