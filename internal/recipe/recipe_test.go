package recipe

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const fullRecipe = `
entrypoint = ["python", "main.py"]

[image]
base = "docker.io/library/python:3.12-slim"
workdir = "/srv/app"

[dependencies]
manifest = "requirements.txt"
installer = ["pip", "install", "--no-cache-dir", "-r"]

[source]
path = "."
ignore = ".kilnignore"

[env]
PYTHONUNBUFFERED = "1"
`

func TestParseFullRecipe(t *testing.T) {
	r, err := Parse([]byte(fullRecipe))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if r.Image.Base != "docker.io/library/python:3.12-slim" {
		t.Errorf("base = %q", r.Image.Base)
	}
	if r.Image.Workdir != "/srv/app" {
		t.Errorf("workdir = %q, want /srv/app", r.Image.Workdir)
	}
	if r.Dependencies.Manifest != "requirements.txt" {
		t.Errorf("manifest = %q", r.Dependencies.Manifest)
	}
	if len(r.Entrypoint) != 2 || r.Entrypoint[0] != "python" {
		t.Errorf("entrypoint = %v", r.Entrypoint)
	}
	if r.Env["PYTHONUNBUFFERED"] != "1" {
		t.Errorf("env = %v", r.Env)
	}
}

func TestParseAppliesDefaults(t *testing.T) {
	minimal := `
entrypoint = ["python", "main.py"]

[image]
base = "python:3.12-slim"
`
	r, err := Parse([]byte(minimal))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if r.Image.Workdir != "/app" {
		t.Errorf("workdir = %q, want /app", r.Image.Workdir)
	}
	if r.Dependencies.Manifest != "requirements.txt" {
		t.Errorf("manifest = %q, want requirements.txt", r.Dependencies.Manifest)
	}
	want := []string{"pip", "install", "--no-cache-dir", "-r"}
	if len(r.Dependencies.Installer) != len(want) {
		t.Fatalf("installer = %v, want %v", r.Dependencies.Installer, want)
	}
	for i := range want {
		if r.Dependencies.Installer[i] != want[i] {
			t.Fatalf("installer = %v, want %v", r.Dependencies.Installer, want)
		}
	}
	if r.Source.Path != "." {
		t.Errorf("source path = %q, want .", r.Source.Path)
	}
	if r.Source.Ignore != ".kilnignore" {
		t.Errorf("ignore = %q, want .kilnignore", r.Source.Ignore)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Recipe {
		r := &Recipe{
			Image:      Image{Base: "python:3.12-slim"},
			Entrypoint: []string{"python", "main.py"},
		}
		r.applyDefaults()
		return r
	}

	tests := []struct {
		name    string
		mutate  func(*Recipe)
		wantErr bool
	}{
		{
			name:   "valid recipe",
			mutate: func(r *Recipe) {},
		},
		{
			name:    "missing base",
			mutate:  func(r *Recipe) { r.Image.Base = "" },
			wantErr: true,
		},
		{
			name:    "unparseable base reference",
			mutate:  func(r *Recipe) { r.Image.Base = "UPPERCASE NAME" },
			wantErr: true,
		},
		{
			name:   "archive base skips reference parsing",
			mutate: func(r *Recipe) { r.Image.Base = "bases/python-3.12.tar" },
		},
		{
			name:    "relative workdir",
			mutate:  func(r *Recipe) { r.Image.Workdir = "app" },
			wantErr: true,
		},
		{
			name:    "absolute manifest path",
			mutate:  func(r *Recipe) { r.Dependencies.Manifest = "/etc/passwd" },
			wantErr: true,
		},
		{
			name:    "manifest escapes context",
			mutate:  func(r *Recipe) { r.Dependencies.Manifest = "../requirements.txt" },
			wantErr: true,
		},
		{
			name:    "source escapes context",
			mutate:  func(r *Recipe) { r.Source.Path = "../../src" },
			wantErr: true,
		},
		{
			name:   "nested source path",
			mutate: func(r *Recipe) { r.Source.Path = "app/src" },
		},
		{
			name:    "missing entrypoint",
			mutate:  func(r *Recipe) { r.Entrypoint = nil },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid()
			tt.mutate(r)

			err := r.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, ErrRecipe) {
					t.Fatalf("error %v is not ErrRecipe", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kiln.toml")
	if err := os.WriteFile(path, []byte(fullRecipe), 0644); err != nil {
		t.Fatal(err)
	}

	r, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Image.Workdir != "/srv/app" {
		t.Errorf("workdir = %q", r.Image.Workdir)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, ErrRecipe) {
		t.Fatalf("error %v is not ErrRecipe", err)
	}
}

func TestLoadMalformedTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kiln.toml")
	if err := os.WriteFile(path, []byte("[image\nbase="), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); !errors.Is(err, ErrRecipe) {
		t.Fatalf("error %v is not ErrRecipe", err)
	}
}

func TestIsArchive(t *testing.T) {
	tests := []struct {
		base string
		want bool
	}{
		{"python:3.12-slim", false},
		{"docker.io/library/python:3.12", false},
		{"bases/python.tar", true},
		{"/abs/path/image.tar", true},
		{"image.tarball", false},
	}

	for _, tt := range tests {
		got := Image{Base: tt.base}.IsArchive()
		if got != tt.want {
			t.Errorf("IsArchive(%q) = %v, want %v", tt.base, got, tt.want)
		}
	}
}

func TestInstallCommand(t *testing.T) {
	d := Dependencies{Installer: []string{"pip", "install", "--no-cache-dir", "-r"}}
	cmd := d.InstallCommand("/app/requirements.txt")

	want := []string{"pip", "install", "--no-cache-dir", "-r", "/app/requirements.txt"}
	if len(cmd) != len(want) {
		t.Fatalf("cmd = %v, want %v", cmd, want)
	}
	for i := range want {
		if cmd[i] != want[i] {
			t.Fatalf("cmd[%d] = %q, want %q", i, cmd[i], want[i])
		}
	}

	// The installer slice must not be mutated by appending the manifest.
	cmd2 := d.InstallCommand("/app/other.txt")
	if cmd2[len(cmd2)-1] != "/app/other.txt" {
		t.Fatalf("second command = %v", cmd2)
	}
	if cmd[len(cmd)-1] != "/app/requirements.txt" {
		t.Fatalf("first command mutated: %v", cmd)
	}
}
