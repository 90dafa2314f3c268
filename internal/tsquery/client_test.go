package tsquery

import (
	"bufio"
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"
)

const testGreeting = "TS3\n\rWelcome to the TeamSpeak 3 ServerQuery interface, type \"help\" for a list of commands.\n\r"

// startFakeServer runs a minimal scripted ServerQuery endpoint. respond
// maps a full command line to its response; unscripted commands get a
// plain ok terminator.
func startFakeServer(t *testing.T, greeting string, respond map[string]string) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		if _, err := conn.Write([]byte(greeting)); err != nil {
			return
		}

		sc := bufio.NewScanner(conn)
		for sc.Scan() {
			cmd := strings.Trim(sc.Text(), "\r")
			if cmd == "quit" {
				return
			}
			resp, ok := respond[cmd]
			if !ok {
				resp = "error id=0 msg=ok\n\r"
			}
			if _, err := conn.Write([]byte(resp)); err != nil {
				return
			}
		}
	}()

	return ln.Addr().String()
}

func dialTest(t *testing.T, addr string) *Client {
	t.Helper()
	c, err := Dial(context.Background(), addr, Options{
		DialTimeout: 2 * time.Second,
		IOTimeout:   2 * time.Second,
	})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestDialRejectsUnknownGreeting(t *testing.T) {
	addr := startFakeServer(t, "SSH-2.0-OpenSSH\n", nil)

	_, err := Dial(context.Background(), addr, Options{DialTimeout: 2 * time.Second})
	var qe *Error
	if !errors.As(err, &qe) || qe.Kind != KindProtocol {
		t.Fatalf("expected protocol error, got %v", err)
	}
}

func TestDialConnectionRefused(t *testing.T) {
	// Grab a port that is certainly closed.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	_, err = Dial(context.Background(), addr, Options{DialTimeout: time.Second})
	var qe *Error
	if !errors.As(err, &qe) || qe.Kind != KindConnection {
		t.Fatalf("expected connection error, got %v", err)
	}
}

func TestLoginDeniedIsAuthError(t *testing.T) {
	addr := startFakeServer(t, testGreeting, map[string]string{
		`login client_login_name=bob client_login_password=wrong`: `error id=520 msg=invalid\sloginname\sor\spassword` + "\n\r",
	})
	c := dialTest(t, addr)

	err := c.Login("bob", "wrong")
	var qe *Error
	if !errors.As(err, &qe) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if qe.Kind != KindAuth || qe.ID != 520 {
		t.Errorf("expected auth error id 520, got kind=%v id=%d", qe.Kind, qe.ID)
	}
	if !strings.Contains(qe.Error(), "invalid loginname or password") {
		t.Errorf("unexpected message: %q", qe.Error())
	}
}

func TestUseInvalidServerIsAuthError(t *testing.T) {
	addr := startFakeServer(t, testGreeting, map[string]string{
		"use sid=99": `error id=1024 msg=invalid\sserverID` + "\n\r",
	})
	c := dialTest(t, addr)

	err := c.Use(99)
	var qe *Error
	if !errors.As(err, &qe) || qe.Kind != KindAuth {
		t.Fatalf("expected auth error, got %v", err)
	}
}

func TestChannelList(t *testing.T) {
	addr := startFakeServer(t, testGreeting, map[string]string{
		"channellist": `cid=1 pid=0 channel_order=0 channel_name=Lobby total_clients=2|cid=2 pid=1 channel_order=1 channel_name=Team\sRoom total_clients=0` + "\n\r" +
			"error id=0 msg=ok\n\r",
	})
	c := dialTest(t, addr)

	channels, err := c.ChannelList()
	if err != nil {
		t.Fatalf("ChannelList: %v", err)
	}
	if len(channels) != 2 {
		t.Fatalf("expected 2 channels, got %d", len(channels))
	}
	if channels[0].ID != 1 || channels[0].ParentID != 0 || channels[0].Name != "Lobby" {
		t.Errorf("unexpected first channel: %+v", channels[0])
	}
	if channels[1].Name != "Team Room" || channels[1].ParentID != 1 {
		t.Errorf("unexpected second channel: %+v", channels[1])
	}
}

func TestClientList(t *testing.T) {
	addr := startFakeServer(t, testGreeting, map[string]string{
		"clientlist -voice -away -country": `clid=5 cid=2 client_database_id=7 client_nickname=Alice client_type=0 client_away=0 client_input_muted=1 client_output_muted=0 client_country=SE` +
			`|clid=6 cid=1 client_database_id=1 client_nickname=monitor client_type=1 client_away=0 client_input_muted=0 client_output_muted=0 client_country=` + "\n\r" +
			"error id=0 msg=ok\n\r",
	})
	c := dialTest(t, addr)

	clients, err := c.ClientList()
	if err != nil {
		t.Fatalf("ClientList: %v", err)
	}
	if len(clients) != 2 {
		t.Fatalf("expected 2 clients, got %d", len(clients))
	}
	if clients[0].Nickname != "Alice" || !clients[0].InputMuted || clients[0].Country != "SE" {
		t.Errorf("unexpected first client: %+v", clients[0])
	}
	if clients[0].IsVoice() == false {
		t.Error("Alice should be a voice client")
	}
	if clients[1].IsVoice() {
		t.Error("query client should not count as voice")
	}
}

func TestServerInfo(t *testing.T) {
	addr := startFakeServer(t, testGreeting, map[string]string{
		"serverinfo": `virtualserver_name=My\sServer virtualserver_version=3.13.7 virtualserver_platform=Linux` + "\n\r" +
			"error id=0 msg=ok\n\r",
	})
	c := dialTest(t, addr)

	meta, err := c.ServerInfo()
	if err != nil {
		t.Fatalf("ServerInfo: %v", err)
	}
	if meta["virtualserver_name"] != "My Server" || meta["virtualserver_platform"] != "Linux" {
		t.Errorf("unexpected metadata: %v", meta)
	}
}

func TestLoginLogoutSequence(t *testing.T) {
	addr := startFakeServer(t, testGreeting, nil)
	c := dialTest(t, addr)

	if err := c.Login("serveradmin", "secret pass"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := c.Use(1); err != nil {
		t.Fatalf("Use: %v", err)
	}
	if err := c.Logout(); err != nil {
		t.Fatalf("Logout: %v", err)
	}
}
