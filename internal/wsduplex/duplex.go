// Package wsduplex adapts a gorilla/websocket connection into the
// io.ReadWriter a Connection expects, so ACP can run over a WebSocket
// transport as an alternative to stdio (spec.md domain stack: this is
// the "any byte-oriented stream" framing requirement taken literally).
package wsduplex

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Duplex wraps a *websocket.Conn as an io.ReadWriteCloser. Each Write call
// becomes one text WebSocket message; Read drains one message at a time
// into the caller's buffer, buffering any remainder for the next call —
// ACP frames each JSON-RPC line as a newline-terminated write, so this
// preserves message boundaries without needing to split on newlines here.
type Duplex struct {
	conn *websocket.Conn
	rest bytes.Buffer
}

// New wraps an already-established websocket connection.
func New(conn *websocket.Conn) *Duplex {
	return &Duplex{conn: conn}
}

// Upgrade upgrades an incoming HTTP request to a WebSocket connection and
// wraps it.
func Upgrade(w http.ResponseWriter, r *http.Request) (*Duplex, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	return New(conn), nil
}

// Dial connects to a ws:// or wss:// URL and wraps the resulting
// connection.
func Dial(url string) (*Duplex, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}
	return New(conn), nil
}

func (d *Duplex) Read(p []byte) (int, error) {
	if d.rest.Len() > 0 {
		return d.rest.Read(p)
	}
	for {
		kind, data, err := d.conn.ReadMessage()
		if err != nil {
			return 0, err
		}
		if kind != websocket.BinaryMessage && kind != websocket.TextMessage {
			continue
		}
		if len(data) == 0 {
			continue
		}
		// ACP lines are newline-terminated; readers expect that
		// terminator to split messages, so restore it.
		data = append(data, '\n')
		n := copy(p, data)
		if n < len(data) {
			d.rest.Write(data[n:])
		}
		return n, nil
	}
}

func (d *Duplex) Write(p []byte) (int, error) {
	msg := bytes.TrimRight(p, "\n")
	if err := d.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Close closes the underlying WebSocket connection after a graceful
// close handshake attempt.
func (d *Duplex) Close() error {
	_ = d.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return d.conn.Close()
}

var _ io.ReadWriteCloser = (*Duplex)(nil)
