package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/holdemtable/internal/game"
	"github.com/lox/holdemtable/internal/table"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	sendBuffer = 64
)

var ErrConnectionClosed = websocket.ErrCloseSent

// Connection is one client socket bound to a user at a table
type Connection struct {
	conn      *websocket.Conn
	send      chan *Message
	table     *table.Table
	userID    string
	nickname  string
	sub       *table.Subscription
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	sendMu    sync.Mutex
	closed    bool
	replaced  atomic.Bool
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, tbl *table.Table, userID, nickname string, logger *log.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	return &Connection{
		conn:     conn,
		send:     make(chan *Message, sendBuffer),
		table:    tbl,
		userID:   userID,
		nickname: nickname,
		logger:   logger.WithPrefix("conn").With("user", userID, "table", tbl.ID()),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start subscribes to table snapshots and begins handling the socket.
// A user already seated is marked online again.
func (c *Connection) Start() {
	if err := c.table.Connect(c.userID); err == nil {
		c.logger.Info("Seated player reconnected")
	}
	c.sub = c.table.Subscribe(c.userID)
	go c.writePump()
	go c.forwardStates()
	go c.readPump()
}

// Done is closed once the connection has shut down
func (c *Connection) Done() <-chan struct{} { return c.ctx.Done() }

// Close tears the connection down and tells the table the user went offline
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		if c.sub != nil {
			c.sub.Close()
		}
		c.sendMu.Lock()
		c.closed = true
		close(c.send)
		c.sendMu.Unlock()
		err = c.conn.Close()

		// The seat lives on in the newer socket
		if c.replaced.Load() {
			c.logger.Info("Connection replaced")
			return
		}
		if derr := c.table.Disconnect(c.userID); derr == nil {
			c.logger.Info("Seated player disconnected")
		}
	})
	return err
}

// Replace closes the connection without marking the user offline
func (c *Connection) Replace() error {
	c.replaced.Store(true)
	return c.Close()
}

// SendMessage queues msg for the client. A full buffer drops the connection.
func (c *Connection) SendMessage(msg *Message) error {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return ErrConnectionClosed
	}
	select {
	case c.send <- msg:
		return nil
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		go c.Close()
		return ErrConnectionClosed
	}
}

func (c *Connection) forwardStates() {
	for view := range c.sub.C {
		msg, err := NewMessage(MessageTypeState, view)
		if err != nil {
			c.logger.Error("Failed to encode state", "error", err)
			continue
		}
		if err := c.SendMessage(msg); err != nil {
			return
		}
	}
}

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}
		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage translates one client message into a table operation
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type)

	switch msg.Type {
	case MessageTypeJoin:
		var data JoinData
		if !c.decode(msg, &data) {
			return
		}
		nickname := data.Nickname
		if nickname == "" {
			nickname = c.nickname
		}
		seat, err := c.table.Join(c.ctx, c.userID, nickname)
		if err != nil {
			c.sendError(msg, err)
			return
		}
		c.reply(msg, MessageTypeJoined, JoinedData{TableID: c.table.ID(), UserID: c.userID, Seat: seat})

	case MessageTypeAction:
		var data ActionData
		if !c.decode(msg, &data) {
			return
		}
		action, err := game.ParseAction(data.Action)
		if err != nil {
			c.sendError(msg, err)
			return
		}
		res, err := c.table.Act(c.userID, action, data.Amount)
		if err != nil {
			c.sendError(msg, err)
			return
		}
		c.reply(msg, MessageTypeActionConfirmation, ActionConfirmationData{
			Action:  data.Action,
			Amount:  data.Amount,
			Message: res.Message,
			AllIn:   res.AllIn,
		})

	case MessageTypeStart:
		if err := c.table.Start(c.userID); err != nil {
			c.sendError(msg, err)
		}

	case MessageTypeReady:
		data := ReadyData{Ready: true}
		if len(msg.Data) > 0 && !c.decode(msg, &data) {
			return
		}
		if err := c.table.SetReady(c.userID, data.Ready); err != nil {
			c.sendError(msg, err)
		}

	case MessageTypeReveal:
		ok, err := c.table.Reveal(c.userID)
		if err != nil {
			c.sendError(msg, err)
			return
		}
		if !ok {
			c.sendErrorCode(msg, "cannot_reveal", "cards can only be shown after the hand")
		}

	case MessageTypeDecision:
		var data DecisionData
		if !c.decode(msg, &data) {
			return
		}
		ok, err := c.table.Decide(c.userID, data.Decision)
		if err != nil {
			c.sendError(msg, err)
			return
		}
		if !ok {
			c.sendErrorCode(msg, "no_decision_pending", "no decision is pending for you")
		}

	case MessageTypeLeave:
		if err := c.table.Leave(c.ctx, c.userID); err != nil {
			c.sendError(msg, err)
		}

	default:
		c.sendErrorCode(msg, "unknown_message_type", "unknown message type: "+string(msg.Type))
	}
}

func (c *Connection) decode(msg *Message, v any) bool {
	if err := json.Unmarshal(msg.Data, v); err != nil {
		c.sendErrorCode(msg, "invalid_message", "failed to parse "+string(msg.Type)+" data")
		return false
	}
	return true
}

func (c *Connection) reply(req *Message, typ MessageType, data any) {
	msg, err := NewMessage(typ, data)
	if err != nil {
		c.logger.Error("Failed to encode reply", "type", typ, "error", err)
		return
	}
	msg.RequestID = req.RequestID
	_ = c.SendMessage(msg)
}

func (c *Connection) sendError(req *Message, err error) {
	code, text := errorCode(err), err.Error()
	var ae *game.ActionError
	if errors.As(err, &ae) {
		text = ae.Reason
	}
	c.sendErrorCode(req, code, text)
}

func (c *Connection) sendErrorCode(req *Message, code, text string) {
	c.logger.Debug("Rejected message", "type", req.Type, "code", code, "reason", text)
	c.reply(req, MessageTypeError, ErrorData{Code: code, Message: text})
}

// errorCode maps errors to stable client-facing codes
func errorCode(err error) string {
	var ae *game.ActionError
	switch {
	case errors.As(err, &ae):
		return string(ae.Code)
	case errors.Is(err, table.ErrTableFull):
		return "table_full"
	case errors.Is(err, table.ErrNotSeated):
		return "not_seated"
	case errors.Is(err, table.ErrCannotStart):
		return "cannot_start"
	case errors.Is(err, table.ErrHandActive):
		return "hand_active"
	}
	return "internal_error"
}
