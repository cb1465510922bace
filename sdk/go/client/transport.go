package client

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/quic-go/quic-go"

	"github.com/zeusync/lander/internal/server"
)

type wsConn struct {
	conn *websocket.Conn
}

func dialWebSocket(ctx context.Context, url string) (*wsConn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return &wsConn{conn: conn}, nil
}

func (w *wsConn) send(ctx context.Context, req server.Request) error {
	_ = w.conn.SetWriteDeadline(deadline(ctx))
	return w.conn.WriteJSON(req)
}

// recv turns a try-again-later close into an error frame, matching how the
// QUIC transport reports a refused session.
func (w *wsConn) recv(ctx context.Context) (server.Frame, error) {
	_ = w.conn.SetReadDeadline(deadline(ctx))
	var f server.Frame
	err := w.conn.ReadJSON(&f)
	var ce *websocket.CloseError
	if errors.As(err, &ce) && ce.Code == websocket.CloseTryAgainLater {
		return server.Frame{Error: ce.Text}, nil
	}
	return f, err
}

func (w *wsConn) close() error {
	_ = w.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return w.conn.Close()
}

// quicConn runs the session on a single bidirectional stream.
type quicConn struct {
	conn   *quic.Conn
	stream *quic.Stream
	reader *bufio.Reader
}

func dialQUIC(ctx context.Context, addr string, tlsConfig *tls.Config) (*quicConn, error) {
	conn, err := quic.DialAddr(ctx, addr, tlsConfig, nil)
	if err != nil {
		return nil, err
	}
	stream, err := conn.OpenStreamSync(ctx)
	if err != nil {
		_ = conn.CloseWithError(0, "open stream failed")
		return nil, err
	}
	// The server sees the stream only once data arrives; a blank line
	// announces it without making a request.
	if _, err = stream.Write([]byte("\n")); err != nil {
		_ = conn.CloseWithError(0, "write failed")
		return nil, err
	}
	return &quicConn{conn: conn, stream: stream, reader: bufio.NewReader(stream)}, nil
}

func (q *quicConn) send(ctx context.Context, req server.Request) error {
	data, err := json.Marshal(req)
	if err != nil {
		return err
	}
	_ = q.stream.SetWriteDeadline(deadline(ctx))
	_, err = q.stream.Write(append(data, '\n'))
	return err
}

func (q *quicConn) recv(ctx context.Context) (server.Frame, error) {
	_ = q.stream.SetReadDeadline(deadline(ctx))
	line, err := q.reader.ReadBytes('\n')
	if err != nil {
		return server.Frame{}, err
	}
	var f server.Frame
	err = json.Unmarshal(line, &f)
	return f, err
}

func (q *quicConn) close() error {
	_ = q.stream.Close()
	return q.conn.CloseWithError(0, "client closed")
}

// deadline is the context deadline, or no deadline.
func deadline(ctx context.Context) time.Time {
	d, _ := ctx.Deadline()
	return d
}
