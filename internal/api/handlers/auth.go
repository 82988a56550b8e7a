package handlers

import (
	"net/http"

	"github.com/rohits-web03/escapegame/internal/identity"
	"github.com/rohits-web03/escapegame/internal/utils"
)

type loginInput struct {
	HashedEmail string `json:"hashedEmail"`
}

type registerInput struct {
	HashedEmail string `json:"hashedEmail"`
	Username    string `json:"username"`
	Color       string `json:"color"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// Login godoc
// @Summary Log in with a client-hashed email
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body loginInput true "Credentials"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} utils.ErrorPayload
// @Failure 401 {object} utils.ErrorPayload
// @Router /api/auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var input loginInput
	if err := utils.DecodeJSON(r, &input); err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}

	token, err := h.Auth.Login(r.Context(), input.HashedEmail)
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	utils.JSONResponse(w, http.StatusOK, TokenResponse{Token: token})
}

// Register godoc
// @Summary Create a user
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body registerInput true "New user"
// @Success 201 {object} models.User
// @Failure 400 {object} utils.ErrorPayload
// @Router /api/auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var input registerInput
	if err := utils.DecodeJSON(r, &input); err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}

	user, err := h.Auth.Register(r.Context(), input.HashedEmail, input.Username, input.Color)
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	utils.JSONResponse(w, http.StatusCreated, user)
}

// Me godoc
// @Summary The authenticated user
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 401 {object} utils.ErrorPayload
// @Router /api/auth/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id, err := identity.FromContext(r.Context())
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	user, err := h.Auth.GetUser(r.Context(), id.UserID)
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	utils.JSONResponse(w, http.StatusOK, user)
}

// GetUser godoc
// @Summary Get a user
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} models.User
// @Failure 404 {object} utils.ErrorPayload
// @Router /api/users/{id} [get]
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	user, err := h.Auth.GetUser(r.Context(), id)
	if err != nil {
		utils.WriteError(w, h.Log, err)
		return
	}
	utils.JSONResponse(w, http.StatusOK, user)
}
