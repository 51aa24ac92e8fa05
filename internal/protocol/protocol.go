package protocol

import (
	"errors"
	"fmt"

	"encoding/json"

	"github.com/kilnhq/kiln/internal/recipe"
)

// Returned for messages that cannot be decoded.
var ErrMalformed = errors.New("malformed message")

// Identifies a request or response type on the wire.
type Command string

const (
	// Requests.
	CmdBuild        Command = "build"
	CmdImageDestroy Command = "image-destroy"
	CmdStatus       Command = "status"
	CmdShutdown     Command = "shutdown"

	// Responses.
	CmdOK    Command = "ok"
	CmdError Command = "error"
)

// Wraps every message exchanged over the socket.
//
// The payload is left raw so the command can be inspected before the
// payload type is known.
type Envelope struct {
	Command Command         `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Asks the daemon to run a build.
type BuildRequest struct {
	Recipe   *recipe.Recipe `json:"recipe"`
	Name     string         `json:"name"`
	Output   string         `json:"output"`
	Root     string         `json:"root"`
	Platform string         `json:"platform,omitempty"`
	NoCache  bool           `json:"no_cache,omitempty"`
}

// Reports a completed build.
type BuildResult struct {
	Image string `json:"image"`
}

// Asks the daemon to remove an image and its containers.
type ImageDestroyRequest struct {
	Tag string `json:"tag"`
}

// Reports daemon liveness and counters.
type StatusResult struct {
	Running bool   `json:"running"`
	Version string `json:"version"`
	Pid     int    `json:"pid"`
	Uptime  string `json:"uptime"`
	Builds  int    `json:"builds"`
}

// Carries the failing step's message back to the client.
type ErrorResult struct {
	Message string `json:"message"`
}

// Serializes a command and payload into an envelope.
func Encode(cmd Command, payload any) ([]byte, error) {
	env := Envelope{Command: cmd}

	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		env.Payload = raw
	}

	return json.Marshal(env)
}

// Parses an envelope, returning it together with the raw payload.
func Decode(data []byte) (Envelope, json.RawMessage, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if env.Command == "" {
		return Envelope{}, nil, fmt.Errorf("%w: missing command", ErrMalformed)
	}
	return env, env.Payload, nil
}

// Parses a raw payload into a concrete request or result type.
func DecodePayload[T any](raw json.RawMessage) (*T, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: missing payload", ErrMalformed)
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return &v, nil
}
