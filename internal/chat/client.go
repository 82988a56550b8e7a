package chat

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rohits-web03/escapegame/internal/identity"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024
	sendBuffer     = 256
)

// Client is one authenticated WebSocket connection.
type Client struct {
	id       string
	identity identity.Identity
	conn     *websocket.Conn
	send     chan []byte
	gateway  *Gateway
	log      logrus.FieldLogger

	ctx    context.Context
	cancel context.CancelFunc

	closeOnce  sync.Once
	done       chan struct{}
	closeCode  int
	closeText  string
	expiryStop func() bool
}

func (c *Client) ID() string { return c.id }

func (c *Client) Identity() identity.Identity { return c.identity }

// enqueue hands a frame to the write pump. A client whose buffer is full is
// disconnected rather than allowed to stall the room.
func (c *Client) enqueue(frame []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- frame:
		return true
	case <-c.done:
		return false
	default:
		c.log.Warn("send buffer full, dropping connection")
		c.closeWith(websocket.CloseTryAgainLater, "too slow")
		return false
	}
}

func (c *Client) emit(event string, data any) {
	frame, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		c.log.WithError(err).WithField("event", event).Error("failed to encode frame")
		return
	}
	c.enqueue(frame)
}

func (c *Client) emitError(errType, message string) {
	c.emit(EventError, ErrorPayload{Message: message, Type: errType})
}

// closeWith asks the write pump to send a close frame and shut the connection.
func (c *Client) closeWith(code int, text string) {
	c.closeOnce.Do(func() {
		c.closeCode = code
		c.closeText = text
		close(c.done)
	})
}

func (c *Client) readPump() {
	defer func() {
		c.gateway.disconnect(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				c.log.WithError(err).Debug("connection closed unexpectedly")
			}
			return
		}

		var in inbound
		if err := json.Unmarshal(data, &in); err != nil {
			c.emitError(ErrInvalidEvent, "malformed frame")
			continue
		}
		c.gateway.handle(c, in)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.log.WithError(err).Debug("write failed")
				c.closeWith(websocket.CloseAbnormalClosure, "")
				return
			}

		case <-c.done:
			code := c.closeCode
			if code == 0 || code == websocket.CloseAbnormalClosure {
				code = websocket.CloseNormalClosure
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(code, c.closeText))
			return

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.closeWith(websocket.CloseAbnormalClosure, "")
				return
			}
		}
	}
}
