package job

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/nexsoft/nexup/internal/config"
	"github.com/nexsoft/nexup/internal/logbuf"
)

func TestStartStreamsOutputAndReportsSuccess(t *testing.T) {
	requireUnixShell(t)

	script := writeScript(t, "#!/bin/sh\necho A\necho B\nexit 0\n")
	buf := logbuf.New(logbuf.DefaultCapacity)
	r := &Runner{ScriptPath: script, Log: buf}

	h, err := r.Start(storeWithSerial(t))
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	outcome := waitForOutcome(t, h)
	if !outcome.Success() {
		t.Fatalf("outcome = %+v, want success", outcome)
	}
	if got := outcome.Message(script); got != "Completed successfully" {
		t.Errorf("Message() = %q, want %q", got, "Completed successfully")
	}
	if h.Running() {
		t.Error("Running() = true after outcome delivered")
	}

	lines := buf.Snapshot()
	// starting line, A, B, summary
	if len(lines) != 4 {
		t.Fatalf("log lines = %d (%v), want 4", len(lines), lines)
	}
	if !strings.HasSuffix(lines[1], " A") || !strings.HasSuffix(lines[2], " B") {
		t.Errorf("output lines = %v, want A then B", lines[1:3])
	}
	if !strings.HasSuffix(lines[3], "Job finished: OK") {
		t.Errorf("summary line = %q, want Job finished: OK", lines[3])
	}
}

func TestStartReportsNonZeroExit(t *testing.T) {
	requireUnixShell(t)

	script := writeScript(t, "#!/bin/sh\necho failing\nexit 2\n")
	buf := logbuf.New(logbuf.DefaultCapacity)
	r := &Runner{ScriptPath: script, Log: buf}

	h, err := r.Start(storeWithSerial(t))
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	outcome := waitForOutcome(t, h)
	if outcome.Success() {
		t.Fatal("outcome reports success for exit code 2")
	}
	if outcome.ExitCode != 2 {
		t.Errorf("ExitCode = %d, want 2", outcome.ExitCode)
	}
	if outcome.Fault != FaultNone {
		t.Errorf("Fault = %v, want FaultNone (nonzero exit is not a fault)", outcome.Fault)
	}
	if msg := outcome.Message(script); !strings.Contains(msg, "2") {
		t.Errorf("Message() = %q, should contain exit code 2", msg)
	}

	lines := buf.Snapshot()
	last := lines[len(lines)-1]
	if !strings.HasSuffix(last, "Job finished: ERR rc=2") {
		t.Errorf("summary line = %q, want ERR rc=2", last)
	}
}

func TestStartMissingScriptIsNotFoundFault(t *testing.T) {
	requireUnixShell(t)

	script := filepath.Join(t.TempDir(), "no_such_script.sh")
	buf := logbuf.New(logbuf.DefaultCapacity)
	r := &Runner{ScriptPath: script, Log: buf}

	h, err := r.Start(storeWithSerial(t))
	if err != nil {
		t.Fatalf("Start() error = %v (launch faults must be async)", err)
	}

	outcome := waitForOutcome(t, h)
	if outcome.Fault != FaultNotFound {
		t.Fatalf("Fault = %v, want FaultNotFound", outcome.Fault)
	}
	if msg := outcome.Message(script); !strings.Contains(msg, "not found") {
		t.Errorf("Message() = %q, should flag a path problem", msg)
	}

	lines := buf.Snapshot()
	last := lines[len(lines)-1]
	if !strings.Contains(last, "not found") {
		t.Errorf("summary line = %q, want not-found report", last)
	}
}

func TestStartMergesStderrInOrder(t *testing.T) {
	requireUnixShell(t)

	script := writeScript(t, "#!/bin/sh\necho out1\necho err1 >&2\necho out2\nexit 0\n")
	buf := logbuf.New(logbuf.DefaultCapacity)
	r := &Runner{ScriptPath: script, Log: buf}

	h, err := r.Start(storeWithSerial(t))
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	waitForOutcome(t, h)

	lines := buf.Snapshot()
	if len(lines) != 5 {
		t.Fatalf("log lines = %d (%v), want 5", len(lines), lines)
	}
	for i, want := range []string{"out1", "err1", "out2"} {
		if !strings.HasSuffix(lines[i+1], " "+want) {
			t.Errorf("line %d = %q, want suffix %q", i+1, lines[i+1], want)
		}
	}
}

func TestStartRefusesEmptySerialNumber(t *testing.T) {
	script := writeScript(t, "#!/bin/sh\necho should-never-run\n")
	buf := logbuf.New(logbuf.DefaultCapacity)
	r := &Runner{ScriptPath: script, Log: buf}

	s := config.NewStore(nil, nil)
	s.Set(config.KeySerialNumber, "")

	h, err := r.Start(s)
	if !errors.Is(err, ErrSerialNumberRequired) {
		t.Fatalf("Start() error = %v, want ErrSerialNumberRequired", err)
	}
	if h != nil {
		t.Fatal("Start() returned a handle despite missing SERIAL_NUMBER")
	}

	lines := buf.Snapshot()
	if len(lines) != 1 || !strings.Contains(lines[0], "Refusing to start") {
		t.Errorf("log = %v, want single refusal line", lines)
	}
}

func TestChildSeesConfiguredEnvironment(t *testing.T) {
	requireUnixShell(t)

	script := writeScript(t, "#!/bin/sh\necho \"serial=$SERIAL_NUMBER\"\necho \"noupd=$NO_UPDATE\"\necho \"arg1=$1\"\nexit 0\n")
	buf := logbuf.New(logbuf.DefaultCapacity)
	r := &Runner{ScriptPath: script, Log: buf}

	s := storeWithSerial(t)
	s.ToggleFlag(config.FlagNoUpdate)

	h, err := r.Start(s)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	waitForOutcome(t, h)

	joined := strings.Join(buf.Snapshot(), "\n")
	if !strings.Contains(joined, "serial=NX-TEST-1") {
		t.Errorf("child did not see SERIAL_NUMBER: %s", joined)
	}
	if !strings.Contains(joined, "noupd=1") {
		t.Errorf("child did not see NO_UPDATE=1: %s", joined)
	}
	if !strings.Contains(joined, "arg1=--enable-rs232-test") {
		t.Errorf("child did not see first positional arg: %s", joined)
	}
}

func TestRunningPollsLiveJob(t *testing.T) {
	requireUnixShell(t)

	script := writeScript(t, "#!/bin/sh\nsleep 2\nexit 0\n")
	buf := logbuf.New(logbuf.DefaultCapacity)
	r := &Runner{ScriptPath: script, Log: buf}

	h, err := r.Start(storeWithSerial(t))
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if !h.Running() {
		t.Error("Running() = false immediately after Start")
	}

	h.Kill()
	outcome := waitForOutcome(t, h)
	if outcome.Success() {
		t.Error("killed job reported success")
	}
	if h.Running() {
		t.Error("Running() = true after kill outcome")
	}
}

// Helper functions

func requireUnixShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires /bin/sh")
	}
}

func writeScript(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "updater.sh")
	if err := os.WriteFile(path, []byte(content), 0755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}
	return path
}

func storeWithSerial(t *testing.T) *config.Store {
	t.Helper()
	s := config.NewStore(nil, nil)
	s.Set(config.KeySerialNumber, "NX-TEST-1")
	return s
}

func waitForOutcome(t *testing.T, h *Handle) Outcome {
	t.Helper()
	select {
	case o := <-h.Done():
		return o
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for job outcome")
		return Outcome{}
	}
}
