package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testApp(t *testing.T) (*app, *bytes.Buffer) {
	t.Helper()
	var stderr bytes.Buffer
	a := newApp()
	a.stderr = &stderr
	return a, &stderr
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mockapi.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestVersionCommand(t *testing.T) {
	a, _ := testApp(t)
	cmd := newRootCmd(a)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got := out.String(); got != "mockapi dev\n" {
		t.Fatalf("unexpected version output %q", got)
	}
}

func TestInvalidConfigIsRejected(t *testing.T) {
	a, _ := testApp(t)
	cmd := newRootCmd(a)
	path := writeConfig(t, "students:\n  lookup_mode: sideways\n")
	cmd.SetArgs([]string{"serve", "students", "--config", path})
	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "lookup_mode") {
		t.Fatalf("expected lookup_mode validation error, got %v", err)
	}
}

func TestMissingConfigFile(t *testing.T) {
	a, _ := testApp(t)
	cmd := newRootCmd(a)
	cmd.SetArgs([]string{"serve", "simulations", "-c", filepath.Join(t.TempDir(), "absent.yaml")})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

// serveOnce runs a serve subcommand, issues one GET per path once the server
// is listening, then triggers shutdown.
func serveOnce(t *testing.T, service, config string, paths ...string) map[string]string {
	t.Helper()
	a, _ := testApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a.notify = func(parent context.Context) (context.Context, context.CancelFunc) {
		return ctx, func() {}
	}
	bodies := make(map[string]string, len(paths))
	a.ready = func(addr string) {
		defer cancel()
		for _, p := range paths {
			resp, err := http.Get("http://" + addr + p)
			if err != nil {
				t.Errorf("GET %s: %v", p, err)
				return
			}
			b, _ := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			bodies[p] = string(b)
		}
	}

	cmd := newRootCmd(a)
	cmd.SetArgs([]string{"serve", service, "--config", writeConfig(t, config), "--listen", "127.0.0.1:0"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("serve %s: %v", service, err)
	}
	return bodies
}

func TestServeStudents(t *testing.T) {
	bodies := serveOnce(t, "students", "storage:\n  driver: memory\nmetrics:\n  enabled: true\n",
		"/get-student/1", "/healthz", "/metrics")
	if !strings.Contains(bodies["/get-student/1"], `"name":"Shlok"`) {
		t.Fatalf("unexpected student body %q", bodies["/get-student/1"])
	}
	if !strings.Contains(bodies["/healthz"], `"ok"`) {
		t.Fatalf("unexpected healthz body %q", bodies["/healthz"])
	}
	if !strings.Contains(bodies["/metrics"], "mockapi_service_operations_total") {
		t.Fatalf("expected service metrics to be exposed")
	}
}

func TestServeSimulations(t *testing.T) {
	bodies := serveOnce(t, "simulations", "blob:\n  driver: memory\nmetrics:\n  enabled: false\n",
		"/", "/pop_dop_sim/abc", "/metrics")
	if !strings.Contains(bodies["/"], "Houdini") {
		t.Fatalf("unexpected welcome body %q", bodies["/"])
	}
	if !strings.Contains(bodies["/pop_dop_sim/abc"], `"sim_id":"abc"`) {
		t.Fatalf("unexpected status body %q", bodies["/pop_dop_sim/abc"])
	}
	if strings.Contains(bodies["/metrics"], "mockapi_") {
		t.Fatalf("metrics endpoint should be absent when disabled")
	}
}

func TestServeFailsOnInvalidAddress(t *testing.T) {
	a, _ := testApp(t)
	a.notify = func(parent context.Context) (context.Context, context.CancelFunc) {
		return context.WithCancel(parent)
	}
	cmd := newRootCmd(a)
	cmd.SetArgs([]string{"serve", "students", "--listen", "256.0.0.1:0"})
	if err := cmd.Execute(); err == nil || !strings.Contains(err.Error(), "listen") {
		t.Fatalf("expected listen error, got %v", err)
	}
}
