package chat

import (
	"io"
	"log/slog"
	"os/exec"
	"syscall"
	"testing"
	"time"

	"golang.org/x/sys/windows"
)

// launches a long-running console process the way Start does, so Terminate
// exercises the real break-then-kill path.
func launchSleeper(t *testing.T) *exec.Cmd {
	t.Helper()

	cmd := exec.Command("ping", "127.0.0.1", "-n", "60")
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: windows.CREATE_NEW_PROCESS_GROUP,
	}
	if err := cmd.Start(); err != nil {
		t.Skipf("could not launch helper process: %v", err)
	}
	return cmd
}

func TestTerminateReapsProcessExactlyOnce(t *testing.T) {
	r := &ProcessRunner{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	r.cmd = launchSleeper(t)
	cmd := r.cmd

	done := make(chan struct{})
	go func() {
		r.Terminate()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("Terminate did not return")
	}

	if r.cmd != nil {
		t.Error("Terminate must clear the process record")
	}
	if cmd.ProcessState == nil {
		t.Error("managed process was not reaped")
	}

	// second call sees no process and is a no-op
	r.Terminate()
}

func TestTerminateWithoutProcessIsNoop(t *testing.T) {
	r := &ProcessRunner{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	r.Terminate()
}
