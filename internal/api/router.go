package api

import (
	"fmt"
	"net/http"

	_ "github.com/rohits-web03/escapegame/docs"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/rohits-web03/escapegame/internal/api/handlers"
	"github.com/rohits-web03/escapegame/internal/api/middleware"
	"github.com/rohits-web03/escapegame/internal/identity"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

type Deps struct {
	Handlers *handlers.Handler
	Tokens   *identity.Service
	Chat     http.Handler
	Cors     cors.Options
	Log      logrus.FieldLogger
}

func SetupRouter(d Deps) http.Handler {
	h := d.Handlers
	mainMux := http.NewServeMux()

	// ---------- PUBLIC ROUTES ----------
	mainMux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	})

	mainMux.HandleFunc("/docs/", httpSwagger.WrapHandler)

	// The gateway authenticates the handshake itself.
	mainMux.Handle("GET /ws", d.Chat)

	mainMux.HandleFunc("POST /api/auth/login", h.Login)
	mainMux.HandleFunc("POST /api/auth/register", h.Register)

	// ---------- PROTECTED ROUTES ----------
	protectedMux := http.NewServeMux()

	protectedMux.HandleFunc("GET /auth/me", h.Me)
	protectedMux.HandleFunc("GET /users/{id}", h.GetUser)

	protectedMux.HandleFunc("POST /parties", h.CreateParty)
	protectedMux.HandleFunc("GET /parties/{id}", h.GetParty)
	protectedMux.HandleFunc("POST /parties/{id}/start", h.StartParty)
	protectedMux.HandleFunc("GET /parties/code/{code}", h.GetPartyByCode)
	protectedMux.HandleFunc("GET /parties/code/{code}/qr", h.PartyQRCode)

	protectedMux.HandleFunc("POST /groups", h.CreateGroups)
	protectedMux.HandleFunc("GET /groups/{groupId}", h.GetGroup)
	protectedMux.HandleFunc("GET /groups/{key}/{sub}", h.GroupSubresource)
	protectedMux.HandleFunc("PUT /groups/{groupId}", h.UpdateGroup)
	protectedMux.HandleFunc("DELETE /groups/{groupId}", h.DeleteGroup)
	protectedMux.HandleFunc("POST /groups/{groupId}/join", h.JoinGroup)
	protectedMux.HandleFunc("PATCH /groups/{groupId}/points", h.AddPoints)
	protectedMux.HandleFunc("POST /groups/{groupId}/complete-challenge", h.CompleteChallenge)

	protectedMux.HandleFunc("GET /challenges", h.ListChallenges)
	protectedMux.HandleFunc("GET /challenges/{id}", h.GetChallenge)
	protectedMux.HandleFunc("GET /challenges/{id}/info", h.GetChallengeInfo)
	protectedMux.HandleFunc("POST /challenges/{id}/validate", h.ValidateChallenge)

	protectedMux.HandleFunc("GET /messages/{groupId}", h.ListMessages)
	protectedMux.HandleFunc("POST /messages/{groupId}", h.SendMessage)

	mainMux.Handle("/api/",
		http.StripPrefix(
			"/api",
			middleware.Auth(d.Tokens, d.Log)(protectedMux),
		),
	)

	d.Log.Info("Router initialized")
	handler := cors.New(d.Cors).Handler(mainMux)
	handler = middleware.Logger(d.Log)(handler)
	return handler
}
