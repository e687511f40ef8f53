package gateway

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Client is a synchronous caller over the daemon socket. One request is in
// flight at a time; Call is safe for concurrent use.
type Client struct {
	mu      sync.Mutex
	conn    net.Conn
	r       *bufio.Reader
	timeout time.Duration
}

// Dial connects to a daemon socket.
func Dial(socketPath string, timeout time.Duration) (*Client, error) {
	conn, err := net.DialTimeout("unix", socketPath, timeout)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", socketPath, err)
	}
	return &Client{
		conn:    conn,
		r:       bufio.NewReader(conn),
		timeout: timeout,
	}, nil
}

// Call sends one request and blocks for its response.
func (c *Client) Call(method string, params map[string]any) (Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	req := Request{
		ID:     uuid.New().String(),
		V:      ProtocolVersion,
		Method: method,
		Params: params,
	}
	line, err := json.Marshal(req)
	if err != nil {
		return Response{}, fmt.Errorf("encoding request: %w", err)
	}
	line = append(line, '\n')

	if c.timeout > 0 {
		c.conn.SetDeadline(time.Now().Add(c.timeout))
	}
	if _, err := c.conn.Write(line); err != nil {
		return Response{}, fmt.Errorf("writing request: %w", err)
	}

	raw, err := c.r.ReadBytes('\n')
	if err != nil {
		return Response{}, fmt.Errorf("reading response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return Response{}, fmt.Errorf("decoding response: %w", err)
	}
	if resp.ID != req.ID {
		return Response{}, fmt.Errorf("response id %q does not match request id %q", resp.ID, req.ID)
	}
	return resp, nil
}

// Close closes the socket connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
