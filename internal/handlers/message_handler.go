package handlers

import (
	"net/http"

	"civicreport/internal/auth"
	"civicreport/internal/middleware"
	"civicreport/internal/models"
	"civicreport/internal/service"
)

// MessageHandler handles both report channels.
type MessageHandler struct {
	messaging *service.MessagingService
}

func NewMessageHandler(messaging *service.MessagingService) *MessageHandler {
	return &MessageHandler{messaging: messaging}
}

// SendInternal posts on the officer/maintainer channel. The sender is taken
// from the session; the receiver is always the counterpart of the assigned
// pair.
func (h *MessageHandler) SendInternal(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid report id")
		return
	}

	var req struct {
		ReceiverID uint   `json:"receiver_id"`
		Message    string `json:"message"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	var sender models.ParticipantRef
	switch claims.Actor {
	case auth.ActorOfficer:
		sender = models.ParticipantRef{Type: models.ParticipantOfficer, ID: claims.UserID}
	case auth.ActorMaintainer:
		sender = models.ParticipantRef{Type: models.ParticipantMaintainer, ID: claims.UserID}
	default:
		respondWithError(w, http.StatusForbidden, "Insufficient permissions")
		return
	}
	receiver := models.ParticipantRef{Type: sender.Type.Counterpart(), ID: req.ReceiverID}

	msg, err := h.messaging.SendInternal(id, sender, receiver, req.Message)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, msg)
}

// ListInternal returns the internal history of a report. The reader comes
// from the session and must be part of the report's assigned pair.
func (h *MessageHandler) ListInternal(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid report id")
		return
	}

	var reader models.ParticipantRef
	switch claims.Actor {
	case auth.ActorOfficer:
		reader = models.ParticipantRef{Type: models.ParticipantOfficer, ID: claims.UserID}
	case auth.ActorMaintainer:
		reader = models.ParticipantRef{Type: models.ParticipantMaintainer, ID: claims.UserID}
	default:
		respondWithError(w, http.StatusForbidden, "Insufficient permissions")
		return
	}

	messages, err := h.messaging.ListInternal(id, reader)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, messages)
}

// SendPublic posts on the citizen/officer channel.
func (h *MessageHandler) SendPublic(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaims(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid report id")
		return
	}

	var req struct {
		Message string `json:"message"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	var senderType models.PublicSenderType
	switch claims.Actor {
	case auth.ActorCitizen:
		senderType = models.SenderCitizen
	case auth.ActorOfficer:
		senderType = models.SenderOfficer
	default:
		respondWithError(w, http.StatusForbidden, "Insufficient permissions")
		return
	}

	msg, err := h.messaging.SendPublic(id, senderType, claims.UserID, req.Message)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, msg)
}

// ListPublic returns the public history of a report.
func (h *MessageHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid report id")
		return
	}

	messages, err := h.messaging.ListPublic(id)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, messages)
}
