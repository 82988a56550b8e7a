package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rohits-web03/escapegame/internal/apperr"
	"github.com/rohits-web03/escapegame/internal/identity"
	"github.com/rohits-web03/escapegame/internal/utils"
)

type createGroupsInput struct {
	PartyID json.Number `json:"partyId"`
	Amount  json.Number `json:"amount"`
}

type renameGroupInput struct {
	Name string `json:"name"`
}

type addPointsInput struct {
	Points json.Number `json:"points"`
}

type completeChallengeInput struct {
	ChallengeID json.Number `json:"challengeId"`
}

// CreateGroups godoc
// @Summary Create groups under a party
// @Tags Groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body createGroupsInput true "Party and amount (default 1)"
// @Success 201 {array} models.Group
// @Failure 400 {object} utils.ErrorPayload
// @Failure 404 {object} utils.ErrorPayload
// @Router /api/groups [post]
func (h *Handler) CreateGroups(w http.ResponseWriter, r *http.Request) {
	var input createGroupsInput
	if err := utils.DecodeJSON(r, &input); err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	partyID, err := numberID(input.PartyID, "partyId")
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	amount := 1
	if input.Amount != "" {
		if amount, err = numberInt(input.Amount, "amount"); err != nil {
			utils.WriteError(w, h.Log, err)
			return
		}
	}

	groups, err := h.Groups.CreateGroups(r.Context(), partyID, amount)
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	utils.JSONResponse(w, http.StatusCreated, groups)
}

// GroupSubresource serves GET /groups/{key}/{sub}. It covers both
// /groups/party/{partyId} and /groups/{groupId}/{users|completed-challenges},
// which the mux cannot register side by side.
func (h *Handler) GroupSubresource(w http.ResponseWriter, r *http.Request) {
	key, sub := r.PathValue("key"), r.PathValue("sub")
	switch {
	case key == "party":
		h.listPartyGroups(w, r, sub)
	case sub == "users":
		h.listGroupUsers(w, r, key)
	case sub == "completed-challenges":
		h.completedChallenges(w, r, key)
	default:
		utils.WriteError(w, h.Log, apperr.NotFound("route not found"))
	}
}

// listPartyGroups godoc
// @Summary Groups of a party
// @Tags Groups
// @Produce json
// @Security BearerAuth
// @Param partyId path int true "Party ID"
// @Success 200 {array} models.Group
// @Failure 400 {object} utils.ErrorPayload
// @Router /api/groups/party/{partyId} [get]
func (h *Handler) listPartyGroups(w http.ResponseWriter, r *http.Request, rawID string) {
	partyID, err := parseID(rawID, "partyId")
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	groups, err := h.Groups.ListGroups(r.Context(), partyID)
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	utils.JSONResponse(w, http.StatusOK, groups)
}

// listGroupUsers godoc
// @Summary Members of a group
// @Tags Groups
// @Produce json
// @Security BearerAuth
// @Param groupId path int true "Group ID"
// @Success 200 {array} models.User
// @Failure 404 {object} utils.ErrorPayload
// @Router /api/groups/{groupId}/users [get]
func (h *Handler) listGroupUsers(w http.ResponseWriter, r *http.Request, rawID string) {
	groupID, err := parseID(rawID, "groupId")
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	users, err := h.Groups.ListGroupUsers(r.Context(), groupID)
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	utils.JSONResponse(w, http.StatusOK, users)
}

// completedChallenges godoc
// @Summary Ids of the challenges a group has completed
// @Tags Groups
// @Produce json
// @Security BearerAuth
// @Param groupId path int true "Group ID"
// @Success 200 {array} int
// @Failure 404 {object} utils.ErrorPayload
// @Router /api/groups/{groupId}/completed-challenges [get]
func (h *Handler) completedChallenges(w http.ResponseWriter, r *http.Request, rawID string) {
	groupID, err := parseID(rawID, "groupId")
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	ids, err := h.Groups.GetCompletedChallengeIDs(r.Context(), groupID)
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	utils.JSONResponse(w, http.StatusOK, ids)
}

// GetGroup godoc
// @Summary Get a group
// @Tags Groups
// @Produce json
// @Security BearerAuth
// @Param groupId path int true "Group ID"
// @Success 200 {object} models.Group
// @Failure 404 {object} utils.ErrorPayload
// @Router /api/groups/{groupId} [get]
func (h *Handler) GetGroup(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "groupId")
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	group, err := h.Groups.GetGroup(r.Context(), groupID)
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	utils.JSONResponse(w, http.StatusOK, group)
}

// JoinGroup godoc
// @Summary Join a group as the caller
// @Description A user belongs to at most one group per party.
// @Tags Groups
// @Produce json
// @Security BearerAuth
// @Param groupId path int true "Group ID"
// @Success 201 {object} models.GroupMember
// @Failure 400 {object} utils.ErrorPayload
// @Failure 404 {object} utils.ErrorPayload
// @Router /api/groups/{groupId}/join [post]
func (h *Handler) JoinGroup(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "groupId")
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	id, err := identity.FromContext(r.Context())
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	member, err := h.Groups.JoinGroup(r.Context(), groupID, id.UserID)
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	utils.JSONResponse(w, http.StatusCreated, member)
}

// UpdateGroup godoc
// @Summary Rename a group
// @Tags Groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param groupId path int true "Group ID"
// @Param body body renameGroupInput true "New name"
// @Success 200 {object} models.Group
// @Failure 400 {object} utils.ErrorPayload
// @Failure 404 {object} utils.ErrorPayload
// @Router /api/groups/{groupId} [put]
func (h *Handler) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "groupId")
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	var input renameGroupInput
	if err := utils.DecodeJSON(r, &input); err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	group, err := h.Groups.UpdateGroupName(r.Context(), groupID, input.Name)
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	utils.JSONResponse(w, http.StatusOK, group)
}

// AddPoints godoc
// @Summary Add points to a group's score
// @Tags Groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param groupId path int true "Group ID"
// @Param body body addPointsInput true "Points to add"
// @Success 200 {object} models.Group
// @Failure 400 {object} utils.ErrorPayload
// @Failure 404 {object} utils.ErrorPayload
// @Router /api/groups/{groupId}/points [patch]
func (h *Handler) AddPoints(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "groupId")
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	var input addPointsInput
	if err := utils.DecodeJSON(r, &input); err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	points, err := numberInt(input.Points, "points")
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	group, err := h.Groups.AddPoints(r.Context(), groupID, points)
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	utils.JSONResponse(w, http.StatusOK, group)
}

// CompleteChallenge godoc
// @Summary Mark a challenge completed for a group
// @Description Points are awarded the first time only.
// @Tags Groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param groupId path int true "Group ID"
// @Param body body completeChallengeInput true "Challenge"
// @Success 200 {object} services.ValidationResult
// @Failure 400 {object} utils.ErrorPayload
// @Failure 403 {object} utils.ErrorPayload
// @Failure 404 {object} utils.ErrorPayload
// @Router /api/groups/{groupId}/complete-challenge [post]
func (h *Handler) CompleteChallenge(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "groupId")
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	var input completeChallengeInput
	if err := utils.DecodeJSON(r, &input); err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	challengeID, err := numberID(input.ChallengeID, "challengeId")
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	id, err := identity.FromContext(r.Context())
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	result, err := h.Challenges.CompleteChallenge(r.Context(), id.UserID, groupID, challengeID)
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	utils.JSONResponse(w, http.StatusOK, result)
}

// DeleteGroup godoc
// @Summary Delete a group with its members, messages and progress
// @Tags Groups
// @Produce json
// @Security BearerAuth
// @Param groupId path int true "Group ID"
// @Success 200 {object} models.Group
// @Failure 404 {object} utils.ErrorPayload
// @Router /api/groups/{groupId} [delete]
func (h *Handler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "groupId")
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	group, err := h.Groups.DeleteGroup(r.Context(), groupID)
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	utils.JSONResponse(w, http.StatusOK, group)
}
