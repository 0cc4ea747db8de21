package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/leofalp/resflavors/core/report"
	"github.com/leofalp/resflavors/internal/config"
	"github.com/leofalp/resflavors/providers/openstack"
)

const (
	gpuID   = "4f6b9c7e-3a1d-4c2b-9e8f-0a1b2c3d4e5f"
	mixedID = "0b4c2f1e-1111-2222-3333-444455556666"
)

const leaseTable = `+--------------------------------------+-----------+
| id                                   | name      |
+--------------------------------------+-----------+
| ` + gpuID + ` | gpu-lease |
| ` + mixedID + ` | mixed     |
+--------------------------------------+-----------+
`

const gpuDump = `id="` + gpuID + `"
name="gpu-lease"
reservations="[{\"amount\": \"3\", \"resource_properties\": \"{\\"name\\": \\"gpu-a100\\"}\"}]"
`

const mixedDump = `id="` + mixedID + `"
name="mixed"
reservations="{\"amount\": 2, \"resource_properties\": \"{\\"name\\": \\"compute-small\\"}\"} {\"amount\": \"lots\"}"
`

// syncBuffer is a bytes.Buffer safe for one writer goroutine and a polling
// reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type testEnv struct {
	app    *app
	stdout *syncBuffer
	stderr *syncBuffer
	calls  []string
	mu     sync.Mutex
}

func newTestEnv(stdin string, outputs map[string]string) *testEnv {
	env := &testEnv{stdout: &syncBuffer{}, stderr: &syncBuffer{}}
	env.app = newApp(strings.NewReader(stdin), env.stdout, env.stderr)
	env.app.loadConfig = func() (config.Config, error) { return config.Default(), nil }
	env.app.runner = openstack.RunnerFunc(func(_ context.Context, name string, args ...string) ([]byte, error) {
		key := strings.Join(args, " ")
		env.mu.Lock()
		env.calls = append(env.calls, name+" "+key)
		env.mu.Unlock()
		out, ok := outputs[key]
		if !ok {
			return nil, errors.New("exit status 1")
		}
		return []byte(out), nil
	})
	return env
}

func (e *testEnv) run(ctx context.Context, args ...string) error {
	cmd := newRootCmd(e.app)
	cmd.SetArgs(args)
	cmd.SetOut(e.stdout)
	cmd.SetErr(e.stderr)
	return cmd.ExecuteContext(ctx)
}

func TestList(t *testing.T) {
	env := newTestEnv("", map[string]string{
		"reservation lease list":                          leaseTable,
		"reservation lease show " + gpuID + " -f shell":   gpuDump,
		"reservation lease show " + mixedID + " -f shell": mixedDump,
	})

	if err := env.run(context.Background(), "list", "--concurrency", "2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := strings.Join([]string{
		"Lease name: gpu-lease",
		"  reservation amount: 3",
		"  resource_properties name: gpu-a100",
		"Lease name: mixed",
		"  reservation amount: 2",
		"  resource_properties name: compute-small",
		"  reservation amount: lots",
	}, "\n")
	if got := env.stdout.String(); !strings.HasPrefix(got, want) {
		t.Errorf("stdout:\n%s\nwant prefix:\n%s", got, want)
	}
	if len(env.calls) != 3 || env.calls[0] != "openstack reservation lease list" {
		t.Errorf("calls = %v", env.calls)
	}
}

func TestList_Strict(t *testing.T) {
	env := newTestEnv("", map[string]string{
		"reservation lease list":                          leaseTable,
		"reservation lease show " + gpuID + " -f shell":   gpuDump,
		"reservation lease show " + mixedID + " -f shell": mixedDump,
	})

	err := env.run(context.Background(), "list", "--strict", "--summary", "--log-level", "error")
	if !errors.Is(err, ErrWarnings) {
		t.Fatalf("expected ErrWarnings, got %v", err)
	}
	if !strings.Contains(env.stderr.String(), "compute-small 2") || !strings.Contains(env.stderr.String(), "coercion: 1") {
		t.Errorf("summary missing from stderr:\n%s", env.stderr.String())
	}
	if !strings.Contains(env.stdout.String(), "Lease name: gpu-lease") {
		t.Error("report should be written before the strict check")
	}
}

func TestList_FetchFailure(t *testing.T) {
	env := newTestEnv("", map[string]string{
		"reservation lease list":                        leaseTable,
		"reservation lease show " + gpuID + " -f shell": gpuDump,
	})

	if err := env.run(context.Background(), "list", "-o", "json"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := env.stdout.String()
	if !strings.Contains(out, `"resource_properties_name": "gpu-a100"`) {
		t.Errorf("missing gpu lease in:\n%s", out)
	}
	if !strings.Contains(out, `"error": "show lease `+mixedID) {
		t.Errorf("missing fetch error in:\n%s", out)
	}
}

func TestList_NoLeases(t *testing.T) {
	env := newTestEnv("", map[string]string{"reservation lease list": "+----+\n| id |\n+----+\n"})
	if err := env.run(context.Background(), "list"); !errors.Is(err, openstack.ErrNoLeases) {
		t.Errorf("expected ErrNoLeases, got %v", err)
	}
}

func TestIDs(t *testing.T) {
	env := newTestEnv("", map[string]string{"reservation lease list": leaseTable})
	if err := env.run(context.Background(), "ids"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := env.stdout.String(), gpuID+"\n"+mixedID+"\n"; got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
}

func TestParse_Stdin(t *testing.T) {
	env := newTestEnv(gpuDump, nil)
	if err := env.run(context.Background(), "parse", "-o", "markdown"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := env.stdout.String()
	if !strings.Contains(out, "## gpu-lease") || !strings.Contains(out, "`gpu-a100`") {
		t.Errorf("markdown report:\n%s", out)
	}
	if len(env.calls) != 0 {
		t.Errorf("parse should not run commands, got %v", env.calls)
	}
}

func TestParse_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lease.txt")
	if err := os.WriteFile(path, []byte(mixedDump), 0o600); err != nil {
		t.Fatal(err)
	}

	env := newTestEnv("", nil)
	if err := env.run(context.Background(), "parse", path, "-o", "yaml"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := env.stdout.String()
	for _, want := range []string{"id: lease", "name: mixed", "amount: lots", "warnings:"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}
}

func TestParse_GlobalFlags(t *testing.T) {
	doubled := `name="a"` + "\n" + `name="b"` + "\n" + `reservations="{\\"amount\\": 4}"` + "\n"

	env := newTestEnv(doubled, nil)
	err := env.run(context.Background(), "parse", "--duplicates", "first", "--unescape-depth", "2", "--log-format", "json", "--log-level", "warn")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := env.stdout.String(); got != "Lease name: a\n  reservation amount: 4\n"+
		`  warning: shellvars: field "name" repeated at line 2 (keeping first)`+"\n" {
		t.Errorf("stdout = %q", got)
	}
	if !strings.Contains(env.stderr.String(), `"warning.kind":"duplicate_key"`) {
		t.Errorf("stderr = %q", env.stderr.String())
	}
}

func TestParse_MissingName(t *testing.T) {
	env := newTestEnv(`reservations="{\"amount\": 1}"`+"\n", nil)
	if err := env.run(context.Background(), "parse", "--repair", "--log-level", "debug", "--log-format", "json"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := env.stdout.String(); got != "Lease name: n/a\n  reservation amount: 1\n" {
		t.Errorf("stdout = %q", got)
	}
	if !strings.Contains(env.stderr.String(), `"parse.repair":true`) {
		t.Errorf("configuration log missing repair flag:\n%s", env.stderr.String())
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{name: "bad output", args: []string{"parse", "-o", "csv"}, want: report.ErrUnknownFormat},
		{name: "bad duplicates", args: []string{"parse", "--duplicates", "middle"}, want: config.ErrInvalidConfig},
		{name: "bad depth", args: []string{"parse", "--unescape-depth", "-3"}, want: config.ErrInvalidConfig},
		{name: "bad log level", args: []string{"parse", "--log-level", "loud"}, want: config.ErrInvalidConfig},
		{name: "missing file", args: []string{"parse", filepath.Join(os.TempDir(), "resflavors-missing.txt")}, want: os.ErrNotExist},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(gpuDump, nil)
			if err := env.run(context.Background(), tt.args...); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	env := newTestEnv("", nil)
	if err := env.run(context.Background(), "parse", "--watch"); err == nil {
		t.Error("--watch on stdin should fail")
	}
}

func TestParse_Watch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lease.txt")
	if err := os.WriteFile(path, []byte(gpuDump), 0o600); err != nil {
		t.Fatal(err)
	}

	env := newTestEnv("", nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- env.run(ctx, "parse", "--watch", path) }()

	waitFor := func(want string) {
		t.Helper()
		deadline := time.Now().Add(5 * time.Second)
		for time.Now().Before(deadline) {
			if strings.Contains(env.stdout.String(), want) {
				return
			}
			time.Sleep(20 * time.Millisecond)
		}
		t.Fatalf("timed out waiting for %q, stdout:\n%s", want, env.stdout.String())
	}

	waitFor("gpu-a100")
	if err := os.WriteFile(path, []byte(mixedDump), 0o600); err != nil {
		t.Fatal(err)
	}
	waitFor("compute-small")

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("watch returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}
