// Package tsquery implements the subset of the TeamSpeak 3 ServerQuery
// protocol needed to enumerate a virtual server's channels and online
// clients. The protocol is line-oriented over TCP: every command yields
// zero or one data line followed by an "error id=N msg=..." terminator.
package tsquery

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

const (
	// DefaultDialTimeout bounds the TCP connect plus greeting exchange.
	DefaultDialTimeout = 5 * time.Second
	// DefaultIOTimeout bounds each command round-trip.
	DefaultIOTimeout = 10 * time.Second

	greeting = "TS3"
)

// Options tunes transport behavior. Zero values fall back to the defaults.
type Options struct {
	DialTimeout time.Duration
	IOTimeout   time.Duration
}

// Client is a single ServerQuery session. It is not safe for concurrent
// use; the status service drives one session per refresh.
type Client struct {
	conn    net.Conn
	rd      *bufio.Reader
	timeout time.Duration
}

// Dial connects to a ServerQuery endpoint and validates the protocol
// greeting. The returned client must be closed by the caller.
func Dial(ctx context.Context, addr string, opts Options) (*Client, error) {
	dialTimeout := opts.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = DefaultDialTimeout
	}
	ioTimeout := opts.IOTimeout
	if ioTimeout <= 0 {
		ioTimeout = DefaultIOTimeout
	}

	d := net.Dialer{Timeout: dialTimeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, connError("cannot reach query endpoint "+addr, err)
	}

	c := &Client{
		conn:    conn,
		rd:      bufio.NewReader(conn),
		timeout: ioTimeout,
	}

	_ = conn.SetReadDeadline(time.Now().Add(dialTimeout))
	banner, err := c.readLine()
	if err != nil {
		conn.Close()
		return nil, connError("no greeting from query endpoint", err)
	}
	if banner != greeting {
		conn.Close()
		return nil, protoError("unexpected greeting %q", banner)
	}
	// Welcome line with usage hints; content is irrelevant.
	if _, err := c.readLine(); err != nil {
		conn.Close()
		return nil, connError("greeting truncated", err)
	}
	return c, nil
}

// Login authenticates the query session.
func (c *Client) Login(user, password string) error {
	cmd := fmt.Sprintf("login client_login_name=%s client_login_password=%s",
		Escape(user), Escape(password))
	_, err := c.exec(cmd)
	return asAuthError(err)
}

// Use selects the virtual server the session operates on.
func (c *Client) Use(serverID uint64) error {
	_, err := c.exec(fmt.Sprintf("use sid=%d", serverID))
	return asAuthError(err)
}

// ServerInfo fetches the metadata map of the selected virtual server.
func (c *Client) ServerInfo() (map[string]string, error) {
	lines, err := c.exec("serverinfo")
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, protoError("serverinfo returned no data")
	}
	return parseMap(lines[0]), nil
}

// ChannelList enumerates all channels of the selected virtual server,
// in the server's hierarchical order.
func (c *Client) ChannelList() ([]Channel, error) {
	lines, err := c.exec("channellist")
	if err != nil {
		return nil, err
	}
	var channels []Channel
	for _, line := range lines {
		for _, rec := range parseRecords(line) {
			channels = append(channels, channelFromRecord(rec))
		}
	}
	return channels, nil
}

// ClientList enumerates all online clients with voice, away and country
// details. Query clients are included and must be filtered by the caller.
func (c *Client) ClientList() ([]OnlineClient, error) {
	lines, err := c.exec("clientlist -voice -away -country")
	if err != nil {
		return nil, err
	}
	var clients []OnlineClient
	for _, line := range lines {
		for _, rec := range parseRecords(line) {
			clients = append(clients, clientFromRecord(rec))
		}
	}
	return clients, nil
}

// Logout deselects the server and drops the session's authentication.
func (c *Client) Logout() error {
	_, err := c.exec("logout")
	return err
}

// Close terminates the session. The quit command is best effort; the
// connection is closed regardless.
func (c *Client) Close() error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(time.Second))
	_, _ = c.conn.Write([]byte("quit\n"))
	return c.conn.Close()
}

// exec sends one command and collects data lines until the error
// terminator. A non-zero error id is returned as a protocol-kind *Error;
// Login and Use reclassify it.
func (c *Client) exec(cmd string) ([]string, error) {
	deadline := time.Now().Add(c.timeout)
	_ = c.conn.SetDeadline(deadline)

	if _, err := c.conn.Write([]byte(cmd + "\n")); err != nil {
		return nil, connError("write failed", err)
	}

	var data []string
	for {
		line, err := c.readLine()
		if err != nil {
			return nil, connError("read failed", err)
		}
		if line == "" {
			continue
		}
		if id, msg, ok := parseErrorLine(line); ok {
			if id != 0 {
				return nil, &Error{Kind: KindProtocol, ID: id, Msg: msg}
			}
			return data, nil
		}
		data = append(data, line)
	}
}

// readLine returns the next line with the protocol's \n\r framing
// stripped.
func (c *Client) readLine() (string, error) {
	line, err := c.rd.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.Trim(line, "\r\n"), nil
}

// asAuthError reclassifies server-reported failures of credential-bearing
// commands as authentication errors.
func asAuthError(err error) error {
	if err == nil {
		return nil
	}
	var qe *Error
	if errors.As(err, &qe) && qe.ID != 0 {
		return &Error{Kind: KindAuth, ID: qe.ID, Msg: qe.Msg}
	}
	return err
}
