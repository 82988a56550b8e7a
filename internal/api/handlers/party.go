package handlers

import (
	"net/http"

	"github.com/rohits-web03/escapegame/internal/identity"
	"github.com/rohits-web03/escapegame/internal/utils"
)

type startPartyInput struct {
	EndTime any `json:"endTime"`
}

// CreateParty godoc
// @Summary Create a party administered by the caller
// @Tags Parties
// @Produce json
// @Security BearerAuth
// @Success 201 {object} models.Party
// @Failure 401 {object} utils.ErrorPayload
// @Router /api/parties [post]
func (h *Handler) CreateParty(w http.ResponseWriter, r *http.Request) {
	id, err := identity.FromContext(r.Context())
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	party, err := h.Parties.CreateParty(r.Context(), id.UserID)
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	utils.JSONResponse(w, http.StatusCreated, party)
}

// StartParty godoc
// @Summary Start a party
// @Description endTime is epoch seconds or milliseconds, as a number or numeric string.
// @Tags Parties
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Party ID"
// @Param body body startPartyInput true "End time"
// @Success 200 {object} models.Party
// @Failure 400 {object} utils.ErrorPayload
// @Failure 404 {object} utils.ErrorPayload
// @Router /api/parties/{id}/start [post]
func (h *Handler) StartParty(w http.ResponseWriter, r *http.Request) {
	partyID, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	var input startPartyInput
	if err := utils.DecodeJSON(r, &input); err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}

	party, err := h.Parties.StartParty(r.Context(), partyID, input.EndTime)
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	utils.JSONResponse(w, http.StatusOK, party)
}

// GetParty godoc
// @Summary Get a party by id
// @Tags Parties
// @Produce json
// @Security BearerAuth
// @Param id path int true "Party ID"
// @Success 200 {object} models.Party
// @Failure 404 {object} utils.ErrorPayload
// @Router /api/parties/{id} [get]
func (h *Handler) GetParty(w http.ResponseWriter, r *http.Request) {
	partyID, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	party, err := h.Parties.GetParty(r.Context(), partyID)
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	utils.JSONResponse(w, http.StatusOK, party)
}

// GetPartyByCode godoc
// @Summary Get a party by join code
// @Tags Parties
// @Produce json
// @Security BearerAuth
// @Param code path string true "Join code"
// @Success 200 {object} models.Party
// @Failure 404 {object} utils.ErrorPayload
// @Router /api/parties/code/{code} [get]
func (h *Handler) GetPartyByCode(w http.ResponseWriter, r *http.Request) {
	party, err := h.Parties.GetPartyByCode(r.Context(), r.PathValue("code"))
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	utils.JSONResponse(w, http.StatusOK, party)
}

// PartyQRCode godoc
// @Summary QR code of the party join link
// @Tags Parties
// @Produce png
// @Security BearerAuth
// @Param code path string true "Join code"
// @Success 200 {file} binary
// @Failure 404 {object} utils.ErrorPayload
// @Router /api/parties/code/{code}/qr [get]
func (h *Handler) PartyQRCode(w http.ResponseWriter, r *http.Request) {
	png, err := h.Parties.QRCode(r.Context(), r.PathValue("code"))
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}
