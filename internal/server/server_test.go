package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/kilnhq/kiln/internal/protocol"
)

// Runs fn against the server side of a pipe and returns the decoded
// response from the client side.
func exchange(t *testing.T, fn func(conn net.Conn)) (protocol.Envelope, json.RawMessage) {
	t.Helper()

	client, srv := net.Pipe()
	defer client.Close()

	go func() {
		defer srv.Close()
		fn(srv)
	}()

	client.SetReadDeadline(time.Now().Add(5 * time.Second))
	line, err := bufio.NewReader(client).ReadBytes(byte(10))
	if err != nil {
		t.Fatalf("read response: %v", err)
	}

	env, payload, err := protocol.Decode(line)
	if err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return env, payload
}

func TestDispatchUnknownCommand(t *testing.T) {
	s := &Server{done: make(chan struct{})}

	env, payload := exchange(t, func(conn net.Conn) {
		s.dispatch(t.Context(), conn, protocol.Command("bogus"), nil)
	})

	if env.Command != protocol.CmdError {
		t.Fatalf("command = %s, want %s", env.Command, protocol.CmdError)
	}

	result, err := protocol.DecodePayload[protocol.ErrorResult](payload)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(result.Message, "bogus") {
		t.Fatalf("message %q does not name the command", result.Message)
	}
}

func TestHandleStatus(t *testing.T) {
	s := &Server{
		done:      make(chan struct{}),
		startedAt: time.Now().Add(-3 * time.Second),
		builds:    2,
	}

	env, payload := exchange(t, func(conn net.Conn) {
		s.handleStatus(conn)
	})

	if env.Command != protocol.CmdOK {
		t.Fatalf("command = %s, want %s", env.Command, protocol.CmdOK)
	}

	result, err := protocol.DecodePayload[protocol.StatusResult](payload)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Running {
		t.Error("running = false")
	}
	if result.Builds != 2 {
		t.Errorf("builds = %d, want 2", result.Builds)
	}
	if result.Pid <= 0 {
		t.Errorf("pid = %d", result.Pid)
	}
}

func TestHandleBuildRejectsInvalidRecipe(t *testing.T) {
	s := &Server{done: make(chan struct{})}

	// Recipe with no base image: the request must fail validation before
	// any container work is attempted.
	raw, err := json.Marshal(protocol.BuildRequest{
		Recipe: nil,
	})
	if err != nil {
		t.Fatal(err)
	}

	env, payload := exchange(t, func(conn net.Conn) {
		s.handleBuild(t.Context(), conn, raw)
	})

	if env.Command != protocol.CmdError {
		t.Fatalf("command = %s, want %s", env.Command, protocol.CmdError)
	}

	result, err := protocol.DecodePayload[protocol.ErrorResult](payload)
	if err != nil {
		t.Fatal(err)
	}
	if result.Message == "" {
		t.Fatal("empty error message")
	}
}

func TestStopIdempotent(t *testing.T) {
	s := &Server{done: make(chan struct{}), socketPath: "/nonexistent/kiln.sock"}

	if err := s.Stop(); err != nil {
		t.Fatal(err)
	}
	if err := s.Stop(); err != nil {
		t.Fatal(err)
	}

	select {
	case <-s.Done():
	default:
		t.Fatal("done channel not closed after Stop")
	}
}

func TestContextWithDisconnect(t *testing.T) {
	client, srv := net.Pipe()

	ctx, cancel := contextWithDisconnect(t.Context(), srv)
	defer cancel()

	select {
	case <-ctx.Done():
		t.Fatal("context cancelled before disconnect")
	default:
	}

	client.Close()

	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("context not cancelled after disconnect")
	}
	if !errors.Is(ctx.Err(), context.Canceled) {
		t.Fatalf("ctx.Err() = %v", ctx.Err())
	}
}
