package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rohits-web03/escapegame/internal/identity"
	"github.com/rohits-web03/escapegame/internal/utils"
)

type validateInput struct {
	GroupID json.Number `json:"groupId"`
	Flag    string      `json:"flag"`
}

// ListChallenges godoc
// @Summary List challenges
// @Tags Challenges
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Challenge
// @Router /api/challenges [get]
func (h *Handler) ListChallenges(w http.ResponseWriter, r *http.Request) {
	challenges, err := h.Challenges.ListChallenges(r.Context())
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	utils.JSONResponse(w, http.StatusOK, challenges)
}

// GetChallenge godoc
// @Summary Get a challenge
// @Tags Challenges
// @Produce json
// @Security BearerAuth
// @Param id path int true "Challenge ID"
// @Success 200 {object} models.Challenge
// @Failure 404 {object} utils.ErrorPayload
// @Router /api/challenges/{id} [get]
func (h *Handler) GetChallenge(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	challenge, err := h.Challenges.GetChallenge(r.Context(), id)
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	utils.JSONResponse(w, http.StatusOK, challenge)
}

// GetChallengeInfo godoc
// @Summary Challenge hint and illustration URLs
// @Tags Challenges
// @Produce json
// @Security BearerAuth
// @Param id path int true "Challenge ID"
// @Success 200 {object} services.ChallengeInfo
// @Failure 404 {object} utils.ErrorPayload
// @Router /api/challenges/{id}/info [get]
func (h *Handler) GetChallengeInfo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	info, err := h.Challenges.GetChallengeInfo(r.Context(), id)
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	utils.JSONResponse(w, http.StatusOK, info)
}

// ValidateChallenge godoc
// @Summary Submit a flag for a group
// @Description The comparison ignores case only.
// @Tags Challenges
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Challenge ID"
// @Param body body validateInput true "Group and flag"
// @Success 200 {object} services.ValidationResult
// @Failure 400 {object} utils.ErrorPayload
// @Failure 403 {object} utils.ErrorPayload
// @Failure 404 {object} utils.ErrorPayload
// @Router /api/challenges/{id}/validate [post]
func (h *Handler) ValidateChallenge(w http.ResponseWriter, r *http.Request) {
	challengeID, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	var input validateInput
	if err := utils.DecodeJSON(r, &input); err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	groupID, err := numberID(input.GroupID, "groupId")
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	id, err := identity.FromContext(r.Context())
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	result, err := h.Challenges.Validate(r.Context(), id.UserID, groupID, challengeID, input.Flag)
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	utils.JSONResponse(w, http.StatusOK, result)
}
