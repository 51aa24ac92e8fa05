package protocol

import (
	"errors"
	"testing"
)

func TestEncodeDecode(t *testing.T) {
	data, err := Encode(CmdBuild, &BuildRequest{Name: "bot", Output: "dist"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	env, raw, err := Decode(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.Command != CmdBuild {
		t.Fatalf("command = %q, want %q", env.Command, CmdBuild)
	}

	req, err := DecodePayload[BuildRequest](raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Name != "bot" || req.Output != "dist" {
		t.Fatalf("request = %+v", req)
	}
}

func TestEncodeNilPayload(t *testing.T) {
	data, err := Encode(CmdShutdown, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	env, raw, err := Decode(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.Command != CmdShutdown {
		t.Fatalf("command = %q, want %q", env.Command, CmdShutdown)
	}
	if len(raw) != 0 {
		t.Fatalf("payload = %q, want empty", raw)
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:  "valid envelope",
			input: `{"command":"status"}`,
		},
		{
			name:    "not json",
			input:   "build please",
			wantErr: true,
		},
		{
			name:    "missing command",
			input:   `{"payload":{}}`,
			wantErr: true,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Decode([]byte(tt.input))
			if tt.wantErr {
				if !errors.Is(err, ErrMalformed) {
					t.Fatalf("error %v is not ErrMalformed", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestDecodePayloadMissing(t *testing.T) {
	if _, err := DecodePayload[BuildRequest](nil); !errors.Is(err, ErrMalformed) {
		t.Fatalf("error %v is not ErrMalformed", err)
	}
}

func TestDecodePayloadWrongShape(t *testing.T) {
	if _, err := DecodePayload[BuildRequest]([]byte(`"just a string"`)); !errors.Is(err, ErrMalformed) {
		t.Fatalf("error %v is not ErrMalformed", err)
	}
}
