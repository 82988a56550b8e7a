// Package chat is the realtime group chat: authenticated WebSocket
// connections multiplexed into rooms keyed by group id.
package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rohits-web03/escapegame/internal/apperr"
	"github.com/rohits-web03/escapegame/internal/identity"
	"github.com/rohits-web03/escapegame/internal/models"
	"github.com/rohits-web03/escapegame/internal/utils"
	"github.com/sirupsen/logrus"
)

// GroupAccess resolves a group for a user, failing when the user may not
// use it.
type GroupAccess interface {
	Authorize(ctx context.Context, groupID, userID uint) (*models.Group, error)
}

// MessageLog persists and replays group messages.
type MessageLog interface {
	History(ctx context.Context, groupID uint) ([]models.Message, error)
	Send(ctx context.Context, groupID, senderID uint, content string) (*models.Message, error)
}

type Config struct {
	Tokens         *identity.Service
	Groups         GroupAccess
	Messages       MessageLog
	Rooms          RoomRegistry // defaults to NewRoomRegistry()
	AllowedOrigins []string
	Log            logrus.FieldLogger
}

type Gateway struct {
	tokens   *identity.Service
	groups   GroupAccess
	messages MessageLog
	rooms    RoomRegistry
	upgrader websocket.Upgrader
	log      logrus.FieldLogger

	mu      sync.Mutex
	clients map[*Client]struct{}
	closed  bool
}

func NewGateway(cfg Config) *Gateway {
	rooms := cfg.Rooms
	if rooms == nil {
		rooms = NewRoomRegistry()
	}
	g := &Gateway{
		tokens:   cfg.Tokens,
		groups:   cfg.Groups,
		messages: cfg.Messages,
		rooms:    rooms,
		log:      cfg.Log.WithField("component", "chat"),
		clients:  make(map[*Client]struct{}),
	}
	g.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(cfg.AllowedOrigins),
	}
	return g
}

// originChecker accepts non-browser clients, same-host pages and the
// configured frontend origins.
func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
}

// ServeHTTP authenticates the handshake and upgrades the connection. The
// token comes from the "token" query parameter or the Authorization header.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token, _ = identity.BearerToken(r.Header.Get("Authorization"))
	}
	claims, err := g.tokens.Parse(token)
	if err != nil {
		utils.WriteError(w, g.log, err)
		return
	}

	g.mu.Lock()
	closed := g.closed
	g.mu.Unlock()
	if closed {
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	}

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		g.log.WithError(err).Debug("websocket upgrade failed")
		return
	}

	id := claims.Identity()
	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	c := &Client{
		id:       uuid.NewString(),
		identity: id,
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
		gateway:  g,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	c.log = g.log.WithFields(logrus.Fields{"conn_id": c.id, "user_id": id.UserID})

	if claims.ExpiresAt != nil {
		timer := time.AfterFunc(time.Until(claims.ExpiresAt.Time), func() {
			c.log.Info("token expired, closing connection")
			c.closeWith(websocket.ClosePolicyViolation, "token expired")
		})
		c.expiryStop = timer.Stop
	}

	g.mu.Lock()
	g.clients[c] = struct{}{}
	g.mu.Unlock()
	c.log.Info("client connected")

	go c.writePump()
	go c.readPump()
}

func (g *Gateway) handle(c *Client, in inbound) {
	switch in.Event {
	case EventJoinGroup:
		var p JoinGroupPayload
		if err := json.Unmarshal(in.Data, &p); err != nil || p.GroupID == 0 {
			c.emitError(ErrInvalidEvent, "join-group needs a groupId")
			return
		}
		g.joinGroup(c, uint(p.GroupID))
	case EventSendMessage:
		var p SendMessagePayload
		if err := json.Unmarshal(in.Data, &p); err != nil || p.GroupID == 0 {
			c.emitError(ErrInvalidEvent, "send-message needs a groupId and content")
			return
		}
		g.sendMessage(c, uint(p.GroupID), p.Content)
	default:
		c.emitError(ErrInvalidEvent, "unknown event "+in.Event)
	}
}

func (g *Gateway) joinGroup(c *Client, groupID uint) {
	log := c.log.WithField("group_id", groupID)

	if _, err := g.groups.Authorize(c.ctx, groupID, c.identity.UserID); err != nil {
		log.WithError(err).Warn("join-group rejected")
		c.emitError(ErrHistoryLoad, clientMessage(err, "failed to load message history"))
		return
	}

	added := g.rooms.Join(groupID, c)

	history, err := g.messages.History(c.ctx, groupID)
	if err != nil {
		if added {
			g.rooms.Leave(groupID, c)
		}
		log.WithError(err).Error("failed to load message history")
		c.emitError(ErrHistoryLoad, clientMessage(err, "failed to load message history"))
		return
	}
	c.emit(EventMessageHistory, history)

	if added {
		g.broadcast(groupID, EventUserJoined, Presence{
			GroupID:      groupID,
			UserID:       c.identity.UserID,
			ConnectionID: c.id,
		}, c)
		log.Debug("joined room")
	}
}

func (g *Gateway) sendMessage(c *Client, groupID uint, content string) {
	log := c.log.WithField("group_id", groupID)

	if !g.rooms.Contains(groupID, c) {
		c.emitError(ErrMessageSend, "join the group before sending messages")
		return
	}
	if _, err := g.groups.Authorize(c.ctx, groupID, c.identity.UserID); err != nil {
		log.WithError(err).Warn("send-message rejected")
		c.emitError(ErrMessageSend, clientMessage(err, "failed to send message"))
		return
	}

	msg, err := g.messages.Send(c.ctx, groupID, c.identity.UserID, content)
	if err != nil {
		log.WithError(err).Error("failed to send message")
		c.emitError(ErrMessageSend, clientMessage(err, "failed to send message"))
		return
	}
	g.Relay(msg, c.id)
}

// Relay delivers a persisted message to every member of its room.
// connectionID is the originating connection, empty when the message came
// in over REST.
func (g *Gateway) Relay(msg *models.Message, connectionID string) {
	g.Broadcast(msg.GroupID, EventReceiveMessage, ReceiveMessage{
		ID:           msg.ID,
		GroupID:      msg.GroupID,
		SenderID:     msg.SenderID,
		Content:      msg.Content,
		SendDate:     msg.SendDate,
		ConnectionID: connectionID,
	})
}

// Broadcast sends an event to every connection in the room.
func (g *Gateway) Broadcast(groupID uint, event string, data any) {
	g.broadcast(groupID, event, data, nil)
}

func (g *Gateway) broadcast(groupID uint, event string, data any, except *Client) {
	frame, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		g.log.WithError(err).WithField("event", event).Error("failed to encode frame")
		return
	}
	for _, member := range g.rooms.Members(groupID) {
		if member == except {
			continue
		}
		member.enqueue(frame)
	}
}

// disconnect releases everything the connection held and tells the rooms it
// was in that it left.
func (g *Gateway) disconnect(c *Client) {
	g.mu.Lock()
	_, ok := g.clients[c]
	delete(g.clients, c)
	g.mu.Unlock()
	if !ok {
		return
	}

	c.closeWith(websocket.CloseNormalClosure, "")
	if c.expiryStop != nil {
		c.expiryStop()
	}
	c.cancel()

	for _, groupID := range g.rooms.LeaveAll(c) {
		g.Broadcast(groupID, EventUserLeft, Presence{
			GroupID:      groupID,
			UserID:       c.identity.UserID,
			ConnectionID: c.id,
		})
	}
	c.log.Info("client disconnected")
}

// Close disconnects every client and refuses new handshakes.
func (g *Gateway) Close() {
	g.mu.Lock()
	g.closed = true
	clients := make([]*Client, 0, len(g.clients))
	for c := range g.clients {
		clients = append(clients, c)
	}
	g.mu.Unlock()

	for _, c := range clients {
		c.closeWith(websocket.CloseGoingAway, "server shutting down")
	}
}

// ConnectionCount reports how many clients are connected.
func (g *Gateway) ConnectionCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.clients)
}

// clientMessage keeps validation, access and lookup messages, and replaces anything
// internal with fallback.
func clientMessage(err error, fallback string) string {
	switch apperr.KindOf(err) {
	case apperr.KindValidation, apperr.KindNotFound, apperr.KindForbidden:
		return apperr.PublicMessage(err)
	default:
		return fallback
	}
}
