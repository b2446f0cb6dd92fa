package job

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nexsoft/nexup/internal/config"
	"github.com/nexsoft/nexup/internal/logbuf"
	"github.com/nexsoft/nexup/internal/logging"
)

// ErrSerialNumberRequired is returned by Start when the mandatory
// SERIAL_NUMBER field is empty. The caller is expected to have validated
// this already; the runner enforces it again as a final guard.
var ErrSerialNumberRequired = errors.New("job: SERIAL_NUMBER is required")

// Fault classifies how a job failed to run to a clean exit. A nonzero exit
// code is not a fault; it is a normal, reported outcome.
type Fault int

const (
	FaultNone     Fault = iota
	FaultNotFound       // updater script missing or not executable
	FaultLaunch         // any other spawn failure
	FaultStream         // output stream broke mid-run
)

// Outcome is the terminal result of one job.
type Outcome struct {
	ExitCode int
	Fault    Fault
	Err      error
	Duration time.Duration
}

// Success reports whether the job ran to a zero exit with no fault.
func (o Outcome) Success() bool {
	return o.Fault == FaultNone && o.ExitCode == 0
}

// Message returns the operator-facing status line for this outcome.
func (o Outcome) Message(scriptPath string) string {
	switch {
	case o.Fault == FaultNotFound:
		return fmt.Sprintf("Updater script not found: %s", scriptPath)
	case o.Fault == FaultLaunch:
		return fmt.Sprintf("Failed to launch updater: %v", o.Err)
	case o.Fault == FaultStream:
		return fmt.Sprintf("Updater output stream failed: %v", o.Err)
	case o.ExitCode != 0:
		return fmt.Sprintf("Finished with errors (rc=%d)", o.ExitCode)
	default:
		return "Completed successfully"
	}
}

// Handle tracks one in-flight job. The UI polls Running for quit
// confirmation and re-entrancy guarding, and consumes Done exactly once for
// the terminal outcome.
type Handle struct {
	mu      sync.Mutex
	running bool
	proc    *os.Process
	done    chan Outcome
}

// Running reports whether the job has not yet reached a terminal outcome.
// This is a non-blocking poll.
func (h *Handle) Running() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.running
}

// Done returns the channel carrying the job's single terminal outcome.
func (h *Handle) Done() <-chan Outcome {
	return h.done
}

// Kill best-effort terminates the child process. Used on quit-while-running
// after the operator confirms; abandoning a half-finished updater on a QC
// bench is worse than interrupting it.
func (h *Handle) Kill() {
	h.mu.Lock()
	proc := h.proc
	h.mu.Unlock()
	if proc != nil {
		_ = proc.Kill()
	}
}

func (h *Handle) finish(o Outcome) {
	h.mu.Lock()
	h.running = false
	h.proc = nil
	h.mu.Unlock()
	h.done <- o
}

// Runner launches updater jobs. It does not serialize Start calls; rejecting
// a second start while one is live is the caller's responsibility, using
// Handle.Running.
type Runner struct {
	// ScriptPath is the updater script to execute.
	ScriptPath string
	// Log receives the starting line, every output line, and one summary
	// line per terminal outcome.
	Log *logbuf.Buffer
}

// Start validates the mandatory field, then launches the updater
// asynchronously and returns a live Handle. All spawn and stream work,
// including spawn failures, happens on the job's own goroutine and is
// reported through the returned Handle; Start itself never blocks on the
// child.
func (r *Runner) Start(store *config.Store) (*Handle, error) {
	if store.Get(config.KeySerialNumber) == "" {
		r.Log.Append("Refusing to start: missing SERIAL_NUMBER")
		return nil, ErrSerialNumberRequired
	}

	fields := store.FieldValues()
	flags := store.FlagValues()
	args := BuildArgs(flags)
	env := BuildEnv(fields, flags)

	h := &Handle{
		running: true,
		done:    make(chan Outcome, 1),
	}

	r.Log.Append("Starting updater…")
	logging.LogJobStart(r.ScriptPath, args, len(env))

	go r.run(h, args, env)

	return h, nil
}

// run spawns the updater and drains its merged output line by line into the
// log buffer. It always delivers exactly one outcome and one summary log
// line.
func (r *Runner) run(h *Handle, args, env []string) {
	start := time.Now()

	cmd := exec.Command(r.ScriptPath, args...)
	cmd.Env = env

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		r.finishLaunchFailure(h, classifyLaunchError(err), err, start)
		return
	}
	// Merge stderr into the stdout pipe so line order matches what the
	// script emitted.
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		r.finishLaunchFailure(h, classifyLaunchError(err), err, start)
		return
	}

	h.mu.Lock()
	h.proc = cmd.Process
	h.mu.Unlock()

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		r.Log.Append(scanner.Text())
	}
	scanErr := scanner.Err()

	waitErr := cmd.Wait()
	duration := time.Since(start)

	outcome := Outcome{Duration: duration}
	switch {
	case scanErr != nil:
		outcome.Fault = FaultStream
		outcome.Err = scanErr
		r.Log.Appendf("Exception: %v", scanErr)
	case waitErr == nil:
		r.Log.Append("Job finished: OK")
	default:
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			outcome.ExitCode = exitErr.ExitCode()
			r.Log.Appendf("Job finished: ERR rc=%d", outcome.ExitCode)
		} else {
			outcome.Fault = FaultStream
			outcome.Err = waitErr
			r.Log.Appendf("Exception: %v", waitErr)
		}
	}

	logging.LogJobExit(outcome.ExitCode, duration)
	h.finish(outcome)
}

func (r *Runner) finishLaunchFailure(h *Handle, fault Fault, err error, start time.Time) {
	if fault == FaultNotFound {
		r.Log.Appendf("ERROR: %s not found", r.ScriptPath)
	} else {
		r.Log.Appendf("Exception: %v", err)
	}
	logging.Error("Updater launch failed", zap.Error(err))
	h.finish(Outcome{Fault: fault, Err: err, Duration: time.Since(start)})
}

// classifyLaunchError maps a spawn failure onto the closed fault set.
func classifyLaunchError(err error) Fault {
	if errors.Is(err, os.ErrNotExist) || errors.Is(err, exec.ErrNotFound) {
		return FaultNotFound
	}
	return FaultLaunch
}
