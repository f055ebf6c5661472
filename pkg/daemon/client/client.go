// Package client implements a client for the daemon.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/sourcegraph/jsonrpc2"
	"src.rtorc.sh/pkg/daemon/daemondefs"
)

// NewClient creates a new Client instance that talks to the socket. Connection
// creation is deferred to the first request.
func NewClient(sockPath string) daemondefs.Client {
	return &client{sockPath: sockPath}
}

type client struct {
	sockPath string

	mu   sync.Mutex
	conn *jsonrpc2.Conn
}

// The daemon never calls back into the client.
var rejectAll = jsonrpc2.HandlerWithError(
	func(context.Context, *jsonrpc2.Conn, *jsonrpc2.Request) (any, error) {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound, Message: "method not found"}
	})

func (c *client) SockPath() string {
	return c.sockPath
}

func (c *client) ResetConn() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	conn := c.conn
	c.conn = nil
	return conn.Close()
}

func (c *client) Close() error {
	err := c.ResetConn()
	if errors.Is(err, jsonrpc2.ErrClosed) {
		return nil
	}
	return err
}

func (c *client) getConn() (*jsonrpc2.Conn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		select {
		case <-c.conn.DisconnectNotify():
			c.conn = nil
		default:
			return c.conn, nil
		}
	}
	netConn, err := dial(c.sockPath)
	if err != nil {
		return nil, err
	}
	c.conn = jsonrpc2.NewConn(context.Background(),
		jsonrpc2.NewBufferedStream(netConn, jsonrpc2.VSCodeObjectCodec{}), rejectAll)
	return c.conn, nil
}

func (c *client) call(ctx context.Context, method string, params, result any) error {
	conn, err := c.getConn()
	if err != nil {
		return err
	}
	if result == nil {
		var discard json.RawMessage
		result = &discard
	}
	return conn.Call(ctx, method, params, result)
}

func (c *client) Call(ctx context.Context, name, id string, result any, args ...any) error {
	params := append([]any{id}, args...)
	return c.call(ctx, name, params, result)
}

func (c *client) Version() (int, error) {
	var version int
	err := c.call(context.Background(), daemondefs.MethodVersion, nil, &version)
	return version, err
}

func (c *client) Pid() (int, error) {
	var pid int
	err := c.call(context.Background(), daemondefs.MethodPid, nil, &pid)
	return pid, err
}
