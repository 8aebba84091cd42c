package realtime

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// client одно websocket-соединение.
// Читает только Server.serve, пишет только writePump.
type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte

	quit      chan struct{}
	closeOnce sync.Once
}

func newClient(id string, conn *websocket.Conn, buffer int) *client {
	return &client{
		id:   id,
		conn: conn,
		send: make(chan []byte, buffer),
		quit: make(chan struct{}),
	}
}

// trySend ставит кадр в очередь без ожидания. false, если очередь заполнена.
func (c *client) trySend(frame []byte) bool {
	select {
	case <-c.quit:
		return true
	default:
	}

	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// sendReply ответы на вызовы не теряются: ждём место в очереди или закрытия
func (c *client) sendReply(frame []byte) {
	select {
	case c.send <- frame:
	case <-c.quit:
	}
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.quit)
		_ = c.conn.Close()
	})
}

// writePump единственный писатель в соединение: кадры из очереди и ping
func (c *client) writePump(pingInterval, writeTimeout time.Duration) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.quit:
			return
		}
	}
}
