package handlers

import (
	"net/http"

	"github.com/rohits-web03/escapegame/internal/identity"
	"github.com/rohits-web03/escapegame/internal/utils"
)

type sendMessageInput struct {
	Content string `json:"content"`
}

// ListMessages godoc
// @Summary Message history of a group, oldest first
// @Description Only members of the group and the party admin may read it.
// @Tags Messages
// @Produce json
// @Security BearerAuth
// @Param groupId path int true "Group ID"
// @Success 200 {array} models.Message
// @Failure 400 {object} utils.ErrorPayload
// @Failure 403 {object} utils.ErrorPayload
// @Failure 404 {object} utils.ErrorPayload
// @Router /api/messages/{groupId} [get]
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
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
	if _, err := h.Groups.Authorize(r.Context(), groupID, id.UserID); err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	messages, err := h.Messages.History(r.Context(), groupID)
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	utils.JSONResponse(w, http.StatusOK, messages)
}

// SendMessage godoc
// @Summary Post a message to a group
// @Description The message is also delivered to the group's chat room.
// @Tags Messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param groupId path int true "Group ID"
// @Param body body sendMessageInput true "Message"
// @Success 201 {object} models.Message
// @Failure 400 {object} utils.ErrorPayload
// @Failure 403 {object} utils.ErrorPayload
// @Failure 404 {object} utils.ErrorPayload
// @Router /api/messages/{groupId} [post]
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
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
	var input sendMessageInput
	if err := utils.DecodeJSON(r, &input); err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	if _, err := h.Groups.Authorize(r.Context(), groupID, id.UserID); err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}

	msg, err := h.Messages.Send(r.Context(), groupID, id.UserID, input.Content)
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	if h.Relay != nil {
		h.Relay.Relay(msg, "")
	}
	utils.JSONResponse(w, http.StatusCreated, msg)
}
