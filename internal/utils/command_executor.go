package utils

import (
	"io"
	"os/exec"
)

func NewCommandFactory() *ExecCommandFactory {
	return &ExecCommandFactory{}
}

// CommandFactory creates CommandExecutor instances.
//
// The factory abstracts process creation so that callers do not depend
// directly on exec.Command. This makes the behavior testable by replacing
// the factory with a mock implementation.
type CommandFactory interface {
	Command(name string, args ...string) CommandExecutor
}

// ExecCommandFactory is the default implementation backed by exec.Cmd.
type ExecCommandFactory struct{}

func (e *ExecCommandFactory) Command(name string, args ...string) CommandExecutor {
	return &ExecCmd{cmd: exec.Command(name, args...)}
}

// CommandExecutor represents a process that can be started.
//
// It provides a minimal surface over exec.Cmd so that command execution
// can be substituted or mocked in tests.
type CommandExecutor interface {
	Start() error
	Wait() error
	Run() error
	Output() ([]byte, error)
	CombineOutput() ([]byte, error)
	Pid() int
	SetDir(dir string)
	SetEnv(envv []string)
	SetStdout(w io.Writer)
	SetStderr(w io.Writer)
	SetStdin(r io.Reader)
}

// ExecCmd is the concrete CommandExecutor backed by exec.Cmd.
type ExecCmd struct {
	cmd *exec.Cmd
}

func (e *ExecCmd) Start() error {
	return e.cmd.Start()
}

func (e *ExecCmd) Wait() error {
	return e.cmd.Wait()
}

func (e *ExecCmd) Run() error {
	return e.cmd.Run()
}

func (e *ExecCmd) Output() ([]byte, error) {
	return e.cmd.Output()
}

func (e *ExecCmd) CombineOutput() ([]byte, error) {
	return e.cmd.CombinedOutput()
}

// Pid returns the PID of the started process, or -1 if it has not
// been started.
func (e *ExecCmd) Pid() int {
	if e.cmd.Process == nil {
		return -1
	}
	return e.cmd.Process.Pid
}

func (e *ExecCmd) SetDir(dir string) {
	e.cmd.Dir = dir
}

func (e *ExecCmd) SetEnv(envv []string) {
	e.cmd.Env = append(e.cmd.Env, envv...)
}

func (e *ExecCmd) SetStdout(w io.Writer) {
	e.cmd.Stdout = w
}

func (e *ExecCmd) SetStderr(w io.Writer) {
	e.cmd.Stderr = w
}

func (e *ExecCmd) SetStdin(r io.Reader) {
	e.cmd.Stdin = r
}
