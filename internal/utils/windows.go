package utils

import (
	"syscall"

	"github.com/dreheist/drebot/internal/utils/winproc"
	"golang.org/x/sys/windows"
)

const swRestore = 9

func HasAdminPermission() bool {
	f, err := windows.Open("\\\\.\\PHYSICALDRIVE0", windows.O_RDONLY, 0)
	if err != nil {
		return false
	}
	windows.Close(f)
	return true
}

func ShowDialog(title, message string) {
	t, _ := syscall.UTF16PtrFromString(title)
	txt, _ := syscall.UTF16PtrFromString(message)

	windows.MessageBox(0, txt, t, 0)
}

// ForegroundWindow returns the handle of the window the user is interacting with.
func ForegroundWindow() uintptr {
	hwnd, _, _ := winproc.GetForegroundWindow.Call()
	return hwnd
}

// BringWindowToFront restores a minimized window and gives it input focus.
// Synthetic input lands on whatever window is foreground, so this must be
// called before every input batch when the target may have lost focus.
func BringWindowToFront(hwnd uintptr) {
	if hwnd == 0 {
		return
	}
	if minimized, _, _ := winproc.IsIconic.Call(hwnd); minimized != 0 {
		winproc.ShowWindow.Call(hwnd, swRestore)
	}
	winproc.SetForegroundWindow.Call(hwnd)
}

// HotkeyPressed reports whether both keys of a modifier+key chord are held
// down right now, via GetAsyncKeyState.
func HotkeyPressed(modifier, key int) bool {
	const pressedBit = 0x8000
	m, _, _ := winproc.GetAsyncKeyState.Call(uintptr(modifier))
	k, _, _ := winproc.GetAsyncKeyState.Call(uintptr(key))
	return m&pressedBit != 0 && k&pressedBit != 0
}
