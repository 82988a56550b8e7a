package api

import (
	"net/http"

	"github.com/rohits-web03/escapegame/internal/api/handlers"
	"github.com/rohits-web03/escapegame/internal/chat"
	"github.com/rohits-web03/escapegame/internal/identity"
	"github.com/rohits-web03/escapegame/internal/repositories"
	"github.com/rohits-web03/escapegame/internal/services"
	"github.com/rohits-web03/escapegame/internal/utils"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

type Options struct {
	Store  repositories.Store
	Tokens *identity.Service
	// Signer presigns illustration URLs. Leave nil to serve them from PublicBaseURL.
	Signer         services.URLSigner
	PublicBaseURL  string
	FrontendOrigin string
	Cors           cors.Options
	Log            logrus.FieldLogger

	// PartyCodes overrides the join code generator.
	PartyCodes utils.CodeGenerator
}

// App is the assembled server: the HTTP handler plus the pieces the
// process needs to reach directly.
type App struct {
	Handler    http.Handler
	Gateway    *chat.Gateway
	Challenges *services.ChallengeService
}

func NewApp(o Options) *App {
	parties := services.NewPartyService(o.Store, o.FrontendOrigin)
	if o.PartyCodes != nil {
		parties.WithCodeGenerator(o.PartyCodes)
	}
	groups := services.NewGroupService(o.Store)
	messages := services.NewMessageService(o.Store)
	challenges := services.NewChallengeService(o.Store, o.Signer, o.PublicBaseURL, o.Log)

	gateway := chat.NewGateway(chat.Config{
		Tokens:         o.Tokens,
		Groups:         groups,
		Messages:       messages,
		AllowedOrigins: o.Cors.AllowedOrigins,
		Log:            o.Log,
	})

	h := &handlers.Handler{
		Auth:       services.NewAuthService(o.Store, o.Tokens),
		Parties:    parties,
		Groups:     groups,
		Challenges: challenges,
		Messages:   messages,
		Relay:      gateway,
		Log:        o.Log.WithField("component", "api"),
	}

	return &App{
		Handler: SetupRouter(Deps{
			Handlers: h,
			Tokens:   o.Tokens,
			Chat:     gateway,
			Cors:     o.Cors,
			Log:      o.Log,
		}),
		Gateway:    gateway,
		Challenges: challenges,
	}
}
