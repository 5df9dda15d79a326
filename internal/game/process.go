package game

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"syscall"
	"time"
	"unsafe"

	"github.com/dreheist/drebot/internal/utils/winproc"
	"github.com/lxn/win"
	"golang.org/x/sys/windows"
)

// Process owns the handle pair for the game. Whoever relaunches the game
// updates it through UpdateInfo; everyone else only reads, and must tolerate
// the handles going stale between reads.
type Process struct {
	mu     sync.RWMutex
	hwnd   win.HWND
	pid    uint32
	logger *slog.Logger

	windowTitle  string
	processNames []string
}

func NewProcess(logger *slog.Logger, windowTitle string, processNames []string) *Process {
	return &Process{
		logger:       logger,
		windowTitle:  windowTitle,
		processNames: processNames,
	}
}

// UpdateInfo re-resolves the window handle and owning pid. Clears both when
// the window is gone.
func (p *Process) UpdateInfo() bool {
	titlePtr, _ := syscall.UTF16PtrFromString(p.windowTitle)
	hwnd, _, _ := winproc.FindWindow.Call(0, uintptr(unsafe.Pointer(titlePtr)))

	p.mu.Lock()
	defer p.mu.Unlock()

	if hwnd == 0 {
		p.hwnd = 0
		p.pid = 0
		return false
	}

	var pid uint32
	winproc.GetWindowThreadProcessId.Call(hwnd, uintptr(unsafe.Pointer(&pid)))
	p.hwnd = win.HWND(hwnd)
	p.pid = pid

	return true
}

func (p *Process) HWND() win.HWND {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.hwnd
}

func (p *Process) PID() uint32 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.pid
}

// IsStarted reports whether the previously resolved window still exists,
// refreshing the handles when it does not.
func (p *Process) IsStarted() bool {
	p.mu.RLock()
	hwnd := p.hwnd
	p.mu.RUnlock()

	if hwnd != 0 {
		if alive, _, _ := winproc.IsWindow.Call(uintptr(hwnd)); alive != 0 {
			return true
		}
	}

	return p.UpdateInfo()
}

// Launch asks the shell to open the configured launch URL. The storefront
// client owns the actual process creation, so there is no child handle to
// hold on to; the window is resolved later with UpdateInfo.
func (p *Process) Launch(url string) error {
	verb, _ := syscall.UTF16PtrFromString("open")
	target, _ := syscall.UTF16PtrFromString(url)
	ret, _, _ := winproc.ShellExecute.Call(0, uintptr(unsafe.Pointer(verb)), uintptr(unsafe.Pointer(target)), 0, 0, 1)
	if ret <= 32 {
		return fmt.Errorf("shell launch of %s failed with code %d", url, ret)
	}
	return nil
}

// Suspend freezes every thread of the game process.
func (p *Process) Suspend() error {
	return p.ntCall(winproc.NtSuspendProcess)
}

// Resume unfreezes the game process. Safe to call when not suspended.
func (p *Process) Resume() error {
	return p.ntCall(winproc.NtResumeProcess)
}

// SuspendFor freezes the process for the given duration and then resumes it.
// The resume runs even if the caller's context has moved on; a permanently
// frozen game is unrecoverable without a kill.
func (p *Process) SuspendFor(d time.Duration) error {
	if err := p.Suspend(); err != nil {
		return err
	}
	time.Sleep(d)
	return p.Resume()
}

func (p *Process) ntCall(proc *windows.LazyProc) error {
	pid := p.PID()
	if pid == 0 {
		return fmt.Errorf("no game process attached")
	}

	h, err := windows.OpenProcess(windows.PROCESS_SUSPEND_RESUME, false, pid)
	if err != nil {
		return fmt.Errorf("error opening process %d: %w", pid, err)
	}
	defer windows.CloseHandle(h)

	if status, _, _ := proc.Call(uintptr(h)); status != 0 {
		return fmt.Errorf("%s failed with NTSTATUS 0x%X", proc.Name, status)
	}

	return nil
}

// Kill terminates every process whose image name matches the configured list,
// then clears the cached handles.
func (p *Process) Kill() error {
	snapshot, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return fmt.Errorf("error creating process snapshot: %w", err)
	}
	defer windows.CloseHandle(snapshot)

	var entry windows.ProcessEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))

	for err = windows.Process32First(snapshot, &entry); err == nil; err = windows.Process32Next(snapshot, &entry) {
		name := windows.UTF16ToString(entry.ExeFile[:])
		if !p.matchesName(name) {
			continue
		}

		h, openErr := windows.OpenProcess(windows.PROCESS_TERMINATE, false, entry.ProcessID)
		if openErr != nil {
			p.logger.Warn("could not open process for termination",
				slog.String("name", name),
				slog.Any("error", openErr))
			continue
		}
		if termErr := windows.TerminateProcess(h, 1); termErr != nil {
			p.logger.Warn("could not terminate process",
				slog.String("name", name),
				slog.Any("error", termErr))
		} else {
			p.logger.Info("terminated game process", slog.String("name", name), slog.Int("pid", int(entry.ProcessID)))
		}
		windows.CloseHandle(h)
	}

	p.mu.Lock()
	p.hwnd = 0
	p.pid = 0
	p.mu.Unlock()

	return nil
}

func (p *Process) matchesName(name string) bool {
	for _, candidate := range p.processNames {
		if strings.EqualFold(name, candidate) {
			return true
		}
	}
	return false
}
