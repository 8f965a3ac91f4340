package exec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	osexec "os/exec"
	"strings"
	"sync"
	"time"
)

// waitGrace is how long Close waits for a process that has not exited on its
// own before it is killed.
const waitGrace = 5 * time.Second

// process is a running synthesis command whose stdout is read as PCM.
type process struct {
	stdout io.ReadCloser
	stderr *bytes.Buffer
	cmd    *osexec.Cmd
	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
	err    error
}

// startProcess runs argv with input on stdin. Stdin is attached before the
// process starts so the command never observes a half written pipe.
func startProcess(ctx context.Context, timeout time.Duration, input string, argv []string) (*process, error) {
	var cancel context.CancelFunc
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}

	cmd := osexec.CommandContext(ctx, argv[0], argv[1:]...) //nolint:gosec
	cmd.Stdin = strings.NewReader(input)
	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start %s: %w", argv[0], err)
	}

	return &process{
		stdout: stdout,
		stderr: stderr,
		cmd:    cmd,
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// Read reads PCM from the process. A timeout surfaces as the context error.
func (p *process) Read(b []byte) (int, error) {
	if err := p.ctx.Err(); err != nil {
		return 0, err
	}
	return p.stdout.Read(b)
}

// Close waits for the process to exit and reports a non-zero exit together
// with whatever it wrote to stderr.
func (p *process) Close() error {
	p.once.Do(func() {
		done := make(chan error, 1)
		go func() { done <- p.cmd.Wait() }()

		var waitErr error
		select {
		case waitErr = <-done:
		case <-time.After(waitGrace):
			p.cancel()
			waitErr = <-done
		}
		p.cancel()

		switch {
		case waitErr == nil:
		case errors.Is(p.ctx.Err(), context.DeadlineExceeded):
			p.err = fmt.Errorf("synthesis command timed out: %w", p.ctx.Err())
		default:
			if msg := strings.TrimSpace(p.stderr.String()); msg != "" {
				p.err = fmt.Errorf("synthesis command failed: %w\nstderr: %s", waitErr, msg)
			} else {
				p.err = fmt.Errorf("synthesis command failed: %w", waitErr)
			}
		}
	})
	return p.err
}

// checkBinary reports whether name can be found in PATH.
func checkBinary(name string) error {
	if _, err := osexec.LookPath(name); err != nil {
		return fmt.Errorf("binary '%s' not found in PATH: %w", name, err)
	}
	return nil
}
