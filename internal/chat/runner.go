package chat

import (
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sys/windows"
)

// Runner abstracts the managed backend process so the supervisor can be
// exercised against fakes.
type Runner interface {
	Probe() bool
	Start() error
	Terminate()
}

// ProcessRunner launches the chat backend executable and probes it through
// the API client. The backend gets its own process group so it can be shut
// down with a console break before falling back to a hard kill.
type ProcessRunner struct {
	client *Client
	logger *slog.Logger

	executable string
	host       string
	port       int
	authToken  string
	proxy      string

	cmd *exec.Cmd
}

func NewProcessRunner(logger *slog.Logger, client *Client, executable, host string, port int, authToken, proxy string) *ProcessRunner {
	return &ProcessRunner{
		client:     client,
		logger:     logger,
		executable: executable,
		host:       host,
		port:       port,
		authToken:  authToken,
		proxy:      proxy,
	}
}

func (r *ProcessRunner) Probe() bool {
	return r.client.Healthy()
}

func (r *ProcessRunner) Start() error {
	args := []string{
		"--host", r.host,
		"--port", strconv.Itoa(r.port),
		"--auth_token", r.authToken,
	}
	if r.proxy != "" {
		args = append(args, "--proxy", r.proxy)
	}

	cmd := exec.Command(r.executable, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: windows.CREATE_NEW_PROCESS_GROUP,
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("error starting chat backend: %w", err)
	}

	r.cmd = cmd
	r.logger.Info("chat backend launched", slog.Int("pid", cmd.Process.Pid))
	return nil
}

// Terminate stops the managed process: console break first, then a kill if
// it does not exit within the grace period. No-op when nothing is running.
// A single goroutine owns the Wait; both exit paths block on it.
func (r *ProcessRunner) Terminate() {
	if r.cmd == nil || r.cmd.Process == nil {
		return
	}

	done := make(chan struct{})
	go func() {
		r.cmd.Wait()
		close(done)
	}()

	pid := uint32(r.cmd.Process.Pid)
	if err := windows.GenerateConsoleCtrlEvent(windows.CTRL_BREAK_EVENT, pid); err == nil {
		select {
		case <-done:
			r.cmd = nil
			return
		case <-time.After(2 * time.Second):
		}
	}

	if err := r.cmd.Process.Kill(); err != nil {
		r.logger.Warn("error killing chat backend", slog.Any("error", err))
	}
	<-done
	r.cmd = nil
}
