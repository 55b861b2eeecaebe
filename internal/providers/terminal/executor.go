package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/datasprayio/dataspray/internal/domain/workspace"
	"github.com/datasprayio/dataspray/internal/infrastructure/logging"
	"github.com/datasprayio/dataspray/internal/shared/id"
	"github.com/datasprayio/dataspray/internal/shared/stream"
)

const (
	// DefaultJoinWait bounds how long a command may linger after closing its
	// output before it is killed.
	DefaultJoinWait = 3 * time.Second

	lineBufferSize = 64 * 1024
)

// ErrEmptyCommand is returned for blank commands.
var ErrEmptyCommand = errors.New("command is empty")

// Executor runs shell commands in the working directory.
type Executor struct {
	root     *workspace.Root
	shell    string
	timeout  time.Duration
	joinWait time.Duration
	usePTY   bool
	logger   *logging.Logger
	recorder Recorder

	running sync.Map // map[id.ExecID]*execution
}

// Option configures an Executor.
type Option func(*Executor)

// WithShell overrides the interpreter used for commands.
func WithShell(shell string) Option {
	return func(e *Executor) {
		if shell != "" {
			e.shell = shell
		}
	}
}

// WithTimeout bounds every execution. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(e *Executor) {
		if d >= 0 {
			e.timeout = d
		}
	}
}

// WithJoinWait sets the bounded wait after a command's output closes.
func WithJoinWait(d time.Duration) Option {
	return func(e *Executor) {
		if d > 0 {
			e.joinWait = d
		}
	}
}

// WithPTY runs commands on a pseudo-terminal.
func WithPTY(enabled bool) Option {
	return func(e *Executor) {
		e.usePTY = enabled
	}
}

// WithLogger sets the executor logger.
func WithLogger(logger *logging.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(e *Executor) {
		e.recorder = r
	}
}

// NewExecutor creates an executor bound to root.
func NewExecutor(root *workspace.Root, opts ...Option) *Executor {
	e := &Executor{
		root:     root,
		shell:    defaultShell(),
		joinWait: DefaultJoinWait,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs command to completion and returns its combined output.
func (e *Executor) Execute(ctx context.Context, command string) (*Result, error) {
	x, p, err := e.begin(command)
	if err != nil {
		return nil, err
	}

	var out []byte
	res, err := e.collect(ctx, x, p, "simple", func(chunk []byte) bool {
		out = append(out, chunk...)
		return true
	})
	if err != nil {
		return nil, err
	}
	res.Output = out
	return res, nil
}

// Stream starts command and returns its output as a stream of lines ending
// with a status line. The process is launched before Stream returns, so start
// failures surface here rather than inside the stream. Closing the stream
// kills the process group.
func (e *Executor) Stream(ctx context.Context, command string) (*stream.Stream, error) {
	x, p, err := e.begin(command)
	if err != nil {
		return nil, err
	}

	return stream.New(ctx, func(ctx context.Context, emit stream.Emit) error {
		last := byte('\n')
		res, err := e.collect(ctx, x, p, "stream", func(chunk []byte) bool {
			last = chunk[len(chunk)-1]
			return emit(chunk)
		})
		if err != nil {
			return err
		}

		line := StatusLine(res.ExitCode, res.Elapsed)
		if last != '\n' {
			line = "\n" + line
		}
		emit([]byte(line))
		return nil
	}), nil
}

// Active lists in-flight executions, oldest first.
func (e *Executor) Active() []ExecutionInfo {
	var infos []ExecutionInfo
	e.running.Range(func(_, value interface{}) bool {
		infos = append(infos, value.(*execution).info())
		return true
	})
	sort.Slice(infos, func(i, j int) bool { return infos[i].StartedAt.Before(infos[j].StartedAt) })
	return infos
}

// Shutdown cancels every in-flight execution.
func (e *Executor) Shutdown() {
	e.running.Range(func(_, value interface{}) bool {
		value.(*execution).stop()
		return true
	})
}

// StatusLine renders the synthetic record that ends a streamed execution.
func StatusLine(exitCode int, elapsed time.Duration) string {
	return fmt.Sprintf("status %d in %s", exitCode, FormatElapsed(elapsed))
}

// FormatElapsed renders d with two decimals in millis under a second, minutes
// from a minute on, and seconds otherwise.
func FormatElapsed(d time.Duration) string {
	sec := d.Seconds()
	switch {
	case sec < 1:
		return fmt.Sprintf("%.2f millis", sec*1000)
	case sec >= 60:
		return fmt.Sprintf("%.2f minutes", sec/60)
	default:
		return fmt.Sprintf("%.2f seconds", sec)
	}
}

// process is a launched child with its combined output.
type process struct {
	cmd     *exec.Cmd
	out     io.ReadCloser
	exited  chan struct{}
	started time.Time
}

// begin launches command and registers the execution.
func (e *Executor) begin(command string) (*execution, *process, error) {
	if strings.TrimSpace(command) == "" {
		return nil, nil, ErrEmptyCommand
	}
	if err := e.root.Check(); err != nil {
		return nil, nil, err
	}

	cmd := exec.Command(e.shell, shellFlag, command)
	cmd.Dir = e.root.Dir()
	cmd.Env = os.Environ()

	var (
		out io.ReadCloser
		err error
	)
	if e.usePTY {
		out, err = startPTY(cmd)
	} else {
		out, err = startPiped(cmd)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start command: %w", err)
	}

	p := &process{
		cmd:     cmd,
		out:     out,
		exited:  make(chan struct{}),
		started: time.Now(),
	}
	go func() {
		_ = cmd.Wait()
		close(p.exited)
	}()

	// The stop context exists before the execution is visible to Shutdown.
	stopped, stop := context.WithCancel(context.Background())
	x := &execution{
		ID:        id.NewExecID(),
		Command:   command,
		StartedAt: p.started,
		pty:       e.usePTY,
		stopped:   stopped,
		stop:      stop,
		state:     Running,
	}
	e.running.Store(x.ID, x)

	e.logger.Debug("Command started",
		zap.String("exec_id", x.ID.String()),
		zap.String("command", command),
		zap.Int("pid", cmd.Process.Pid),
		zap.Bool("pty", e.usePTY),
	)
	return x, p, nil
}

// startPiped runs cmd with stdout and stderr sharing one pipe.
func startPiped(cmd *exec.Cmd) (io.ReadCloser, error) {
	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	cmd.Stdout = pw
	cmd.Stderr = pw
	setProcGroup(cmd)

	if err := cmd.Start(); err != nil {
		pr.Close()
		pw.Close()
		return nil, err
	}
	// The child holds its own copy of the write end.
	pw.Close()
	return pr, nil
}

// collect feeds output to sink line by line, then joins the process. It
// always leaves the process reaped and the output closed.
func (e *Executor) collect(ctx context.Context, x *execution, p *process, mode string, sink func([]byte) bool) (*Result, error) {
	defer x.stop()
	defer e.running.Delete(x.ID)
	defer p.out.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	// Shutdown may have stopped x before collect started.
	if x.stopped.Err() != nil {
		cancel()
	}
	defer context.AfterFunc(x.stopped, cancel)()

	runCtx := ctx
	if e.timeout > 0 {
		var stop context.CancelFunc
		runCtx, stop = context.WithTimeout(ctx, e.timeout)
		defer stop()
	}

	// Kill on timeout or cancellation while output is still open. Closing
	// the reader unblocks reads held open by descendants outside the group.
	watchDone := make(chan struct{})
	stopWatch := make(chan struct{})
	go func() {
		defer close(watchDone)
		select {
		case <-runCtx.Done():
			killGroup(p.cmd)
			p.out.Close()
		case <-stopWatch:
		}
	}()
	defer func() {
		close(stopWatch)
		<-watchDone
	}()

	r := bufio.NewReaderSize(p.out, lineBufferSize)
	for {
		line, err := r.ReadSlice('\n')
		if len(line) > 0 {
			if !sink(append([]byte(nil), line...)) {
				break
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if err != nil {
			// EOF, or EIO once a pty's child has gone, or a closed reader.
			break
		}
	}

	joined := time.NewTimer(e.joinWait)
	defer joined.Stop()
	select {
	case <-p.exited:
	case <-joined.C:
		e.logger.Warn("Command did not exit after output closed, killing",
			zap.String("exec_id", x.ID.String()),
			zap.Duration("join_wait", e.joinWait),
		)
		killGroup(p.cmd)
		<-p.exited
	case <-runCtx.Done():
		killGroup(p.cmd)
		<-p.exited
	}

	elapsed := time.Since(p.started)
	if err := ctx.Err(); err != nil {
		x.setState(Completed)
		e.logger.Info("Command cancelled",
			zap.String("exec_id", x.ID.String()),
			zap.Duration("elapsed", elapsed),
		)
		return nil, err
	}

	res := &Result{
		ExitCode: p.cmd.ProcessState.ExitCode(),
		Elapsed:  elapsed,
		TimedOut: errors.Is(runCtx.Err(), context.DeadlineExceeded),
	}
	if res.TimedOut {
		x.setState(TimedOut)
		e.logger.Warn("Command timed out",
			zap.String("exec_id", x.ID.String()),
			zap.Duration("timeout", e.timeout),
		)
	} else {
		x.setState(Completed)
	}

	e.logger.Info("Command finished",
		zap.String("exec_id", x.ID.String()),
		zap.String("mode", mode),
		zap.Int("exit_code", res.ExitCode),
		zap.Duration("elapsed", elapsed),
	)
	if e.recorder != nil {
		e.recorder.RecordExecution(mode, res.ExitCode, elapsed)
	}
	return res, nil
}
