package transport

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// MessageHandler is the callback executed for each inbound client frame.
type MessageHandler func(ctx context.Context, connID uuid.UUID, msg []byte)

// CloseHandler is executed exactly once when the connection terminates.
type CloseHandler func(connID uuid.UUID, err error)

type Config struct {
	// WriteTimeout bounds each outbound frame write.
	WriteTimeout time.Duration
	// PingInterval is how often the peer is pinged; a peer that fails a
	// ping is reaped. Zero disables pinging.
	PingInterval time.Duration
	// SendBuffer is the outbound queue length. A full queue drops frames
	// rather than blocking the sender.
	SendBuffer int
}

// Connection wraps one live WebSocket session. All methods are safe for
// concurrent use. Outbound delivery is best-effort: Send never blocks.
type Connection struct {
	id     uuid.UUID
	conn   *websocket.Conn
	config Config
	send   chan []byte

	onMessage MessageHandler
	onClose   CloseHandler

	done      chan struct{}
	wg        *sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once

	logger *slog.Logger
}

func NewConnection(parentCtx context.Context, wg *sync.WaitGroup, conn *websocket.Conn, config Config, logger *slog.Logger) *Connection {
	id := uuid.New()
	connCtx, cancel := context.WithCancel(parentCtx)
	if config.SendBuffer <= 0 {
		config.SendBuffer = 256
	}
	// Accounted for from construction so a Close before Run (handshake
	// bookkeeping failures) balances the WaitGroup.
	wg.Add(1)

	return &Connection{
		id:     id,
		conn:   conn,
		config: config,
		send:   make(chan []byte, config.SendBuffer),
		done:   make(chan struct{}),
		ctx:    connCtx,
		cancel: cancel,
		wg:     wg,
		logger: logger.With(slog.String("connID", id.String())),
	}
}

// Run starts the connection's pump goroutines. Handlers must be set before
// Run is called.
func (c *Connection) Run() {
	go c.readPump()
	go c.writePump()
	if c.config.PingInterval > 0 {
		go c.pingLoop()
	}
	c.logger.Debug("Connection pumps started")
}

// readPump delivers inbound frames to the message handler until the peer
// disconnects or the connection is cancelled.
func (c *Connection) readPump() {
	var readErr error
	defer func() {
		c.Close(readErr)
	}()

	for {
		typ, r, err := c.conn.Reader(c.ctx)
		if err != nil {
			readErr = err
			return
		}
		if typ != websocket.MessageText && typ != websocket.MessageBinary {
			continue
		}
		message, err := io.ReadAll(r)
		if err != nil {
			readErr = err
			return
		}
		if c.onMessage != nil {
			c.onMessage(c.ctx, c.id, message)
		}
	}
}

// writePump drains the send queue onto the socket.
func (c *Connection) writePump() {
	var writeErr error
	defer func() {
		c.Close(writeErr)
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				c.conn.Close(websocket.StatusNormalClosure, "")
				return
			}
			if err := c.writeFrame(message); err != nil {
				writeErr = err
				return
			}
		case <-c.ctx.Done():
			c.conn.Close(websocket.StatusNormalClosure, "server shutting down")
			return
		}
	}
}

func (c *Connection) writeFrame(message []byte) error {
	writeCtx := c.ctx
	if c.config.WriteTimeout > 0 {
		var cancel context.CancelFunc
		writeCtx, cancel = context.WithTimeout(c.ctx, c.config.WriteTimeout)
		defer cancel()
	}
	return c.conn.Write(writeCtx, websocket.MessageText, message)
}

// pingLoop reaps peers that stop answering transport-level pings.
func (c *Connection) pingLoop() {
	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(c.ctx, c.config.PingInterval)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				c.Close(err)
				return
			}
		case <-c.ctx.Done():
			return
		}
	}
}

// Send queues a message for delivery. It never blocks: if the peer's queue
// is full the frame is dropped, and sends after Close are ignored. Delivery
// is best-effort per recipient.
func (c *Connection) Send(message []byte) {
	select {
	case <-c.ctx.Done():
	default:
		select {
		case c.send <- message:
		case <-c.ctx.Done():
		default:
			c.logger.Warn("Send queue full, dropping frame")
		}
	}
}

// Close tears the connection down. Safe to call from any goroutine and
// from multiple paths; only the first call runs.
func (c *Connection) Close(err error) {
	c.closeOnce.Do(func() {
		c.logger.Debug("Connection closing", slog.Any("reason", err))
		c.cancel()
		c.conn.Close(websocket.StatusNormalClosure, "")
		if c.onClose != nil {
			c.onClose(c.id, err)
		}
		c.wg.Done()
		close(c.done)
	})
}

// Done is closed once the connection has fully terminated.
func (c *Connection) Done() <-chan struct{} {
	return c.done
}

func (c *Connection) ID() uuid.UUID {
	return c.id
}

func (c *Connection) SetOnMessageHandler(handler MessageHandler) {
	c.onMessage = handler
}

func (c *Connection) SetOnCloseHandler(handler CloseHandler) {
	c.onClose = handler
}
