package download

//go:generate $MOCKGEN -source=runner.go -destination=mocks/runner_mock.go

import (
	"context"
	"errors"
	"os/exec"
	"time"
)

const (
	// outputTailSize bounds how much subprocess output is retained for
	// diagnostics. Downloader runs can emit megabytes of progress output;
	// only the tail matters for the failure message.
	outputTailSize = 64 * 1024

	// exitCodeInterrupted mirrors the shell convention for SIGINT.
	exitCodeInterrupted = 130

	// exitCodeNotFound mirrors the shell convention for a missing binary.
	exitCodeNotFound = 127
)

// ExecSpec describes a single subprocess invocation.
type ExecSpec struct {
	// Bin is the binary to execute.
	Bin string
	// Args are the arguments passed to the binary.
	Args []string
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Timeout bounds the invocation. Zero or negative means no timeout.
	Timeout time.Duration
}

// ExecResult captures the outcome of a single subprocess invocation.
type ExecResult struct {
	// ExitCode is the process exit code. 127 means the binary was not
	// found, 130 means the invocation was interrupted.
	ExitCode int
	// Duration is the wall-clock time the invocation took.
	Duration time.Duration
	// TimedOut reports whether the invocation hit its timeout.
	TimedOut bool
	// Interrupted reports whether the caller's context was canceled.
	Interrupted bool
	// StdoutTail holds the last bytes of standard output.
	StdoutTail string
	// StderrTail holds the last bytes of standard error.
	StderrTail string
	// Err is the raw error from the process wait, if any.
	Err error
}

// Runner executes external commands.
type Runner interface {
	// Run executes the command described by spec and blocks until it exits.
	Run(ctx context.Context, spec ExecSpec) ExecResult
}

// SubprocessRunner runs commands as OS subprocesses, capturing bounded
// output tails instead of streaming to the terminal. The live UI owns the
// terminal, so subprocess output is never passed through.
type SubprocessRunner struct{}

// NewSubprocessRunner creates a subprocess-backed runner.
func NewSubprocessRunner() Runner {
	return &SubprocessRunner{}
}

// Run executes the command described by spec and blocks until it exits.
func (r *SubprocessRunner) Run(ctx context.Context, spec ExecSpec) ExecResult {
	start := time.Now()

	if spec.Bin == "" {
		return ExecResult{
			ExitCode: 1,
			Duration: time.Since(start),
			Err:      ErrEmptyBinary,
		}
	}

	runCtx := ctx
	cancel := func() {}

	if spec.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, spec.Timeout)
	}

	defer cancel()

	cmd := exec.CommandContext(runCtx, spec.Bin, spec.Args...)
	cmd.Dir = spec.Dir

	stdoutTail := newTailBuffer(outputTailSize)
	stderrTail := newTailBuffer(outputTailSize)
	cmd.Stdout = stdoutTail
	cmd.Stderr = stderrTail

	err := cmd.Run()

	result := ExecResult{
		Duration:   time.Since(start),
		StdoutTail: stdoutTail.String(),
		StderrTail: stderrTail.String(),
		Err:        err,
	}

	if err == nil {
		return result
	}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		result.TimedOut = true
	}

	if errors.Is(runCtx.Err(), context.Canceled) {
		result.Interrupted = true
		result.ExitCode = exitCodeInterrupted

		return result
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()

		return result
	}

	if errors.Is(err, exec.ErrNotFound) {
		result.ExitCode = exitCodeNotFound

		return result
	}

	result.ExitCode = 1

	return result
}

// tailBuffer is an io.Writer that retains only the last max bytes written.
type tailBuffer struct {
	buf []byte
	max int
}

func newTailBuffer(max int) *tailBuffer {
	return &tailBuffer{
		buf: make([]byte, 0, max),
		max: max,
	}
}

// Write keeps the newest bytes, discarding from the front on overflow.
func (t *tailBuffer) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	if len(p) >= t.max {
		t.buf = append(t.buf[:0], p[len(p)-t.max:]...)

		return len(p), nil
	}

	overflow := len(t.buf) + len(p) - t.max
	if overflow > 0 {
		t.buf = append(t.buf[:0], t.buf[overflow:]...)
	}

	t.buf = append(t.buf, p...)

	return len(p), nil
}

func (t *tailBuffer) String() string {
	return string(t.buf)
}
