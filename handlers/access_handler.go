package handlers

import (
	"net/http"

	"github.com/dojoverse/dojo-system/models"
	"github.com/dojoverse/dojo-system/services"
)

type AccessHandler struct {
	accessService services.AccessService
}

func NewAccessHandler(accessService services.AccessService) *AccessHandler {
	return &AccessHandler{accessService: accessService}
}

// Scan is hit by the door scanner with the QR badge payload. Denials come
// back as 200 with the result field set, the scanner renders both.
func (h *AccessHandler) Scan(w http.ResponseWriter, r *http.Request) {
	var input struct {
		BadgeToken string `json:"badge_token"`
	}

	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	entry, err := h.accessService.ValidateBadge(r.Context(), input.BadgeToken)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"result":  entry.Result,
		"granted": entry.Result == models.AccessGranted,
		"entry":   entry,
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AccessHandler) ListLog(w http.ResponseWriter, r *http.Request) {
	limit := getIntQuery(r, "limit", 50)
	offset := getIntQuery(r, "offset", 0)

	entries, err := h.accessService.ListAccessLog(r.Context(), limit, offset)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"entries": entries}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
