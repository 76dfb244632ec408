package handlers

import (
	"net/http"

	"civicreport/internal/apperr"
	"civicreport/internal/auth"
	"civicreport/internal/service"
)

// AuthHandler handles signup and login requests.
type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a citizen account.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterInput
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.authService.RegisterCitizen(req)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, user)
}

// Login authenticates one of the three actor kinds.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string         `json:"email"`
		Password string         `json:"password"`
		Actor    auth.ActorType `json:"actor"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	var result *service.LoginResult
	var err error
	switch req.Actor {
	case auth.ActorOfficer:
		result, err = h.authService.LoginOfficer(req.Email, req.Password)
	case auth.ActorMaintainer:
		result, err = h.authService.LoginMaintainer(req.Email, req.Password)
	case auth.ActorCitizen, "":
		result, err = h.authService.LoginCitizen(req.Email, req.Password)
	default:
		respondWithError(w, http.StatusBadRequest, "Unknown actor type")
		return
	}
	if err != nil {
		// bad credentials surface as 401, not the taxonomy's 403
		if apperr.IsKind(err, apperr.KindAuthorization) {
			respondWithError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}
