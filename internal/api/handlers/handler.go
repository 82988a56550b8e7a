package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rohits-web03/escapegame/internal/apperr"
	"github.com/rohits-web03/escapegame/internal/models"
	"github.com/rohits-web03/escapegame/internal/services"
	"github.com/sirupsen/logrus"
)

// Relayer pushes a message created over REST to the group's chat room.
type Relayer interface {
	Relay(msg *models.Message, connectionID string)
}

// Handler holds the services behind the REST routes.
type Handler struct {
	Auth       *services.AuthService
	Parties    *services.PartyService
	Groups     *services.GroupService
	Challenges *services.ChallengeService
	Messages   *services.MessageService
	Relay      Relayer
	Log        logrus.FieldLogger
}

// pathID parses a numeric path parameter.
func pathID(r *http.Request, name string) (uint, error) {
	return parseID(r.PathValue(name), name)
}

func parseID(raw, name string) (uint, error) {
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		return 0, apperr.Validation("invalid %s", name)
	}
	return uint(n), nil
}

// numberID reads an id sent in a JSON body as a number or a numeric string.
func numberID(n json.Number, name string) (uint, error) {
	if n == "" {
		return 0, apperr.Validation("%s is required", name)
	}
	return parseID(n.String(), name)
}

func numberInt(n json.Number, name string) (int, error) {
	v, err := n.Int64()
	if err != nil {
		return 0, apperr.Validation("invalid %s", name)
	}
	return int(v), nil
}
