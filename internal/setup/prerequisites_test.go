package setup

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/muurk/fwbuild/internal/buildinfo"
	"github.com/muurk/fwbuild/internal/config"
)

// writeTool writes an executable shell script into dir.
func writeTool(t *testing.T, dir, name, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script mocks require a POSIX shell")
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatalf("failed to write mock %s: %v", name, err)
	}
	return path
}

func TestCheckBinary(t *testing.T) {
	dir := t.TempDir()
	writeTool(t, dir, "mock-git", "echo 'git version 2.43.0'\necho 'extra line'\n")
	writeTool(t, dir, "broken-tool", "exit 3\n")
	t.Setenv("PATH", dir)

	tests := []struct {
		name        string
		command     string
		wantOK      bool
		wantVersion string
	}{
		{"found", "mock-git", true, "git version 2.43.0"},
		{"failing", "broken-tool", false, ""},
		{"missing", "no-such-tool", false, ""},
		{"empty", "", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := CheckBinary(context.Background(), "Tool", tt.command, true)
			if check.Available != tt.wantOK {
				t.Fatalf("Available = %v, want %v (message %q)", check.Available, tt.wantOK, check.Message)
			}
			if check.Version != tt.wantVersion {
				t.Errorf("Version = %q, want %q", check.Version, tt.wantVersion)
			}
			if !tt.wantOK {
				var perr *PrerequisiteError
				if !errors.As(check.Err, &perr) {
					t.Errorf("Err = %v, want *PrerequisiteError", check.Err)
				}
			}
		})
	}
}

func TestCheckEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	if check := CheckEndpoint(context.Background(), srv.URL+"/satellite_firmware_upload"); !check.Available {
		t.Errorf("running server reported unreachable: %s (%v)", check.Message, check.Err)
	}

	addr := srv.Listener.Addr().String()
	srv.Close()
	if check := CheckEndpoint(context.Background(), "http://"+addr+"/upload"); check.Available {
		t.Error("closed server reported reachable")
	}

	if check := CheckEndpoint(context.Background(), "not a url"); check.Available || check.Err == nil {
		t.Error("invalid URL should fail with an error")
	}
}

func TestVerify(t *testing.T) {
	bin := t.TempDir()
	writeTool(t, bin, "git", "echo 'git version 2.43.0'\n")
	t.Setenv("PATH", bin)

	root := t.TempDir()
	cfg := config.Default()
	cfg.Resolver.Command = "missing-addr2line"
	cfg.Upload.Endpoint = "http://127.0.0.1:1/upload"
	cfg.Resolve(root)

	ini := "[env:nodemcu-32s2]\nbuild_flags = -g -DDEBUG\n"
	if err := os.WriteFile(cfg.PlatformIOINI, []byte(ini), 0o644); err != nil {
		t.Fatal(err)
	}

	report := Verify(context.Background(), cfg)
	if len(report.Checks) != 6 {
		t.Fatalf("got %d checks, want 6", len(report.Checks))
	}
	if !report.Ready() {
		t.Errorf("report not ready; failed: %+v", report.Failed())
	}

	byName := map[string]Check{}
	for _, c := range report.Checks {
		byName[c.Name] = c
	}
	if !byName["Revision control"].Available {
		t.Error("git mock not found")
	}
	if byName["Address resolver"].Available {
		t.Error("missing resolver reported available")
	}
	if got := byName["Build configuration"].Message; got != "Build type DEBUG" {
		t.Errorf("build configuration message = %q", got)
	}
	if c := byName["Build metadata"]; c.Available || !errors.Is(c.Err, os.ErrNotExist) {
		t.Errorf("missing metadata check = %+v", c)
	}

	store := buildinfo.NewStore(cfg.MetadataFile)
	if err := os.MkdirAll(filepath.Dir(cfg.MetadataFile), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(buildinfo.Initial()); err != nil {
		t.Fatal(err)
	}
	if c := checkMetadata(cfg.MetadataFile); !c.Available || c.Version != "v0.0.001" {
		t.Errorf("metadata check after save = %+v", c)
	}
}

func TestVerifyNotReadyWithoutVCS(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	cfg := config.Default()
	cfg.Resolve(t.TempDir())

	report := Verify(context.Background(), cfg)
	if report.Ready() {
		t.Error("report ready without a revision-control tool")
	}
}
