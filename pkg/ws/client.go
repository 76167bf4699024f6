package ws

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"
)

type MessageInfo struct {
	msg             []byte
	needCompression bool
}

// Client pumps a websocket connection through buffered read/write channels,
// so slow consumers and producers never block the connection goroutines
// directly.
type Client struct {
	Conn *websocket.Conn
	R    chan []byte
	W    chan MessageInfo

	closeOnce sync.Once
}

func NewClient(conn *websocket.Conn) *Client {
	if conn == nil {
		return nil
	}

	c := &Client{
		Conn: conn,
		R:    make(chan []byte, 128),
		W:    make(chan MessageInfo, 128),
	}

	go c.runReader()
	go c.runWriter()
	return c
}

func (c *Client) runReader() {
	defer close(c.R)

	for {
		t, msg, err := c.Conn.ReadMessage()
		if err != nil {
			return
		}

		if t == websocket.CloseMessage {
			return
		}

		if t == websocket.TextMessage || t == websocket.BinaryMessage {
			// Clients may send either plain or zlib frames.
			if originMsg, err := Decompress(msg); err == nil {
				msg = originMsg
			}

			c.R <- msg
		}
	}
}

func (c *Client) runWriter() {
	for msgInfo := range c.W {
		msg := msgInfo.msg
		if msgInfo.needCompression {
			var err error
			msg, err = Compress(msgInfo.msg)
			if err != nil {
				continue
			}
		}

		if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			// Unblock the reader too. The writer keeps draining W until the
			// owner calls Close.
			c.Conn.Close()
		}
	}
}

// Close shuts down the underlying connection and releases the writer
// goroutine. The reader channel is closed asynchronously when the reader
// observes the dead connection.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.W)
		c.Conn.Close()
	})
}

// Write queues a message on the writer channel. It recovers the panic of
// writing to a channel already closed by a dead connection and reports it as
// an error instead.
func (c *Client) Write(msg []byte, needCompression bool) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}

		if s, ok := r.(string); ok {
			err = errors.New(s)
		} else {
			err = errors.New("connection is closed")
		}
	}()

	c.W <- MessageInfo{msg: msg, needCompression: needCompression}
	return nil
}
