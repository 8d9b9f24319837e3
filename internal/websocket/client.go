package websocket

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Время, которое разрешено писать сообщение клиенту
	writeWait = 10 * time.Second

	// Время ожидания pong от клиента
	pongWait = 30 * time.Second

	// Периодичность ping, должна быть меньше pongWait
	pingPeriod = (pongWait * 9) / 10

	// Клиент ничего не присылает, кроме control-фреймов
	maxMessageSize = 512

	defaultClientBufferSize = 16
)

// Client соединение одного наблюдателя за игрой
type Client struct {
	UserID       uint
	GameID       uint
	ConnectionID string

	conn *websocket.Conn
	send chan []byte

	closeOnce sync.Once
	done      chan struct{}
}

// NewClient создает клиента поверх установленного соединения
func NewClient(conn *websocket.Conn, userID, gameID uint) *Client {
	return &Client{
		UserID:       userID,
		GameID:       gameID,
		ConnectionID: uuid.New().String(),
		conn:         conn,
		send:         make(chan []byte, defaultClientBufferSize),
		done:         make(chan struct{}),
	}
}

// Done закрывается, когда соединение завершено
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Send ставит сообщение в очередь. false, если клиент отключен или буфер переполнен.
func (c *Client) Send(message []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- message:
		return true
	default:
		log.Printf("[websocket.Client] Буфер переполнен (UserID: %d, ConnID: %s), сообщение пропущено", c.UserID, c.ConnectionID)
		return false
	}
}

// Close завершает соединение. Повторные вызовы безопасны.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// readPump читает control-фреймы, чтобы работали pong и закрытие соединения
func (c *Client) readPump() {
	defer c.Close()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[websocket.Client] Ошибка чтения (UserID: %d, ConnID: %s): %v", c.UserID, c.ConnectionID, err)
			}
			return
		}
	}
}

// writePump отправляет сообщения из очереди и ping-и
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[websocket.Client] Ошибка записи (UserID: %d, ConnID: %s): %v", c.UserID, c.ConnectionID, err)
				c.Close()
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		case <-c.done:
			// Отправляем оставшиеся сообщения перед закрытием
			for {
				select {
				case message := <-c.send:
					c.conn.SetWriteDeadline(time.Now().Add(writeWait))
					if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
						return
					}
				default:
					c.conn.SetWriteDeadline(time.Now().Add(writeWait))
					c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
					return
				}
			}
		}
	}
}

// StartPumps запускает горутины чтения и записи
func (c *Client) StartPumps() {
	go c.writePump()
	go c.readPump()
}
