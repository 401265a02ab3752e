package acp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// maxLineBytes bounds a single JSON-RPC line; session/update notifications
// can carry large content blocks, so this is generous rather than tight.
const maxLineBytes = 32 * 1024 * 1024

// DefaultRequestTimeout bounds every outbound request when the
// Connection's RequestTimeout is zero.
const DefaultRequestTimeout = 2 * time.Minute

// side identifies which half of the protocol a Connection plays.
type side int

const (
	sideAgent side = iota
	sideClient
)

// Connection is the shared engine behind AgentSideConnection and
// ClientSideConnection: a single reader goroutine classifies every
// incoming line and either resolves a pending call or dispatches it to
// the local handler, while outgoing calls are correlated by request id
// and serialized onto one writer. Grounded in the teacher's acp.Client
// read/dispatch loop, generalized to run in both peer roles.
type Connection struct {
	side side

	w      io.Writer
	writeMu sync.Mutex

	nextID atomic.Int64 // first id issued is 0, per spec.md §6

	pendingMu sync.Mutex
	pending   map[string]chan *Response

	agentHandler  AgentHandler
	clientHandler ClientHandler

	obs *broadcaster

	log *zap.Logger

	RequestTimeout time.Duration

	closeOnce sync.Once
	done      chan struct{}
	closeErr  error
	closeMu   sync.Mutex
}

func newConnection(rw io.ReadWriter, s side, log *zap.Logger) *Connection {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Connection{
		side:    s,
		w:       rw,
		pending: make(map[string]chan *Response),
		obs:     newBroadcaster(),
		log:     log,
		done:    make(chan struct{}),
	}
	go c.readLoop(rw)
	return c
}

// Subscribe registers obs to receive every Event this Connection sends or
// receives, returning a token for Unsubscribe.
func (c *Connection) Subscribe(obs Observer) int { return c.obs.subscribe(obs) }

// Unsubscribe removes an Observer previously registered with Subscribe.
func (c *Connection) Unsubscribe(token int) { c.obs.unsubscribe(token) }

// Peer reports which side of the protocol the remote end plays: "agent"
// or "client".
func (c *Connection) Peer() string {
	if c.side == sideAgent {
		return "client"
	}
	return "agent"
}

// Done returns a channel closed once the Connection has stopped, either
// because the peer closed the stream or Close was called.
func (c *Connection) Done() <-chan struct{} { return c.done }

// Err returns the error that caused the read loop to exit, if any (nil on
// a clean EOF).
func (c *Connection) Err() error {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()
	return c.closeErr
}

// Close stops the Connection, failing every pending call with ErrClosed.
// It does not close the underlying stream; callers that own the stream
// should close it themselves after Close returns.
func (c *Connection) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		c.failPending()
	})
	return nil
}

// failPending closes every pending call's channel; call reports a closed
// channel as ErrClosed.
func (c *Connection) failPending() {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
}

func (c *Connection) setCloseErr(err error) {
	c.closeMu.Lock()
	c.closeErr = err
	c.closeMu.Unlock()
}

// call issues a request and blocks for its response, decoding the result
// into out (which may be nil to discard it).
func (c *Connection) call(ctx context.Context, method string, params any, out any) error {
	id := c.allocID()
	paramsRaw, err := marshalParamsOrNil(params)
	if err != nil {
		return err
	}

	ch := make(chan *Response, 1)
	key := id.String()
	c.pendingMu.Lock()
	c.pending[key] = ch
	c.pendingMu.Unlock()

	req := &Request{ID: id, Method: method, Params: paramsRaw}
	if err := c.send(req.toEnvelope(), DirectionSent, EventRequest, method, id); err != nil {
		c.pendingMu.Lock()
		delete(c.pending, key)
		c.pendingMu.Unlock()
		return err
	}

	timeout := c.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case resp, ok := <-ch:
		if !ok {
			return ErrClosed
		}
		if resp.Err != nil {
			return resp.Err
		}
		if out == nil || len(resp.Result) == 0 {
			return nil
		}
		return json.Unmarshal(resp.Result, out)
	case <-ctx.Done():
		c.pendingMu.Lock()
		delete(c.pending, key)
		c.pendingMu.Unlock()
		return ctx.Err()
	case <-timer.C:
		c.pendingMu.Lock()
		delete(c.pending, key)
		c.pendingMu.Unlock()
		return ErrTimeout
	case <-c.done:
		return ErrClosed
	}
}

// notify sends a one-way message with no response expected.
func (c *Connection) notify(method string, params any) error {
	paramsRaw, err := marshalParamsOrNil(params)
	if err != nil {
		return err
	}
	n := &Notification{Method: method, Params: paramsRaw}
	return c.send(n.toEnvelope(), DirectionSent, EventNotification, method, RequestID{})
}

// allocID returns the next request id, starting from 0 as spec.md §6
// requires (the teacher's acp.Client starts from 1 via Add(1); this
// generalizes it to start from the protocol's documented floor).
func (c *Connection) allocID() RequestID {
	id := c.nextID.Add(1) - 1
	return NewRequestID(id)
}

func (c *Connection) send(e *envelope, dir EventDirection, kind EventKind, method string, id RequestID) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	_, err = c.w.Write(append(b, '\n'))
	c.writeMu.Unlock()
	if err != nil {
		return fmt.Errorf("acp: write: %w", err)
	}
	c.obs.broadcast(Event{Direction: dir, Kind: kind, Method: method, ID: id, Payload: b})
	return nil
}

func (c *Connection) readLoop(r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		select {
		case <-c.done:
			return
		default:
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		cp := append([]byte(nil), line...)
		c.handleLine(cp)
	}
	if err := scanner.Err(); err != nil {
		c.setCloseErr(err)
	}
	c.Close()
}

func (c *Connection) handleLine(line []byte) {
	var env envelope
	if err := json.Unmarshal(line, &env); err != nil {
		c.log.Warn("acp: discarding unparseable line", zap.Error(err))
		return
	}
	if err := env.checkVersion(); err != nil {
		c.log.Warn("acp: discarding line with bad jsonrpc version", zap.Error(err))
		return
	}

	switch env.classify() {
	case kindResponse:
		// Correlation only; never blocks on handler work, so this can
		// run inline on the read loop.
		c.handleResponse(&env, line)
	case kindRequest:
		// Dispatched on its own goroutine so a long-running call (e.g.
		// session/prompt) never blocks delivery of a concurrent
		// session/cancel notification on the same connection.
		go c.handleRequest(&env, line)
	case kindNotification:
		go c.handleNotification(&env, line)
	default:
		c.log.Warn("acp: discarding malformed message", zap.ByteString("line", line))
	}
}

func (c *Connection) handleResponse(env *envelope, raw []byte) {
	key := env.ID.String()
	c.pendingMu.Lock()
	ch, ok := c.pending[key]
	if ok {
		delete(c.pending, key)
	}
	c.pendingMu.Unlock()
	if !ok {
		c.log.Warn("acp: response for unknown request id", zap.String("id", key))
		return
	}
	c.obs.broadcast(Event{Direction: DirectionReceived, Kind: EventResponse, ID: *env.ID, Payload: raw})
	ch <- &Response{ID: *env.ID, Result: env.Result, Err: env.Error}
}

func (c *Connection) handleRequest(env *envelope, raw []byte) {
	c.obs.broadcast(Event{Direction: DirectionReceived, Kind: EventRequest, Method: env.Method, ID: *env.ID, Payload: raw})

	ctx := context.Background()
	var result json.RawMessage
	var rpcErr *RPCError
	switch c.side {
	case sideAgent:
		result, rpcErr = dispatchAgentRequest(ctx, c, c.agentHandler, env.Method, env.Params)
	case sideClient:
		result, rpcErr = dispatchClientRequest(ctx, c, c.clientHandler, env.Method, env.Params)
	}

	resp := &Response{ID: *env.ID, Result: result, Err: rpcErr}
	if err := c.send(resp.toEnvelope(), DirectionSent, EventResponse, "", *env.ID); err != nil {
		c.log.Error("acp: failed to send response", zap.Error(err))
	}
}

func (c *Connection) handleNotification(env *envelope, raw []byte) {
	c.obs.broadcast(Event{Direction: DirectionReceived, Kind: EventNotification, Method: env.Method, Payload: raw})

	ctx := context.Background()
	var err error
	switch c.side {
	case sideAgent:
		err = dispatchAgentNotification(ctx, c, c.agentHandler, env.Method, env.Params)
	case sideClient:
		err = dispatchClientNotification(ctx, c, c.clientHandler, env.Method, env.Params)
	}
	if err != nil {
		c.log.Warn("acp: notification handler error", zap.String("method", env.Method), zap.Error(err))
	}
}

func marshalParamsOrNil(params any) (json.RawMessage, error) {
	if params == nil {
		return nil, nil
	}
	return json.Marshal(params)
}
