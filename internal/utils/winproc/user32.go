package winproc

import "golang.org/x/sys/windows"

var (
	USER32                   = windows.NewLazySystemDLL("user32.dll")
	PrintWindow              = USER32.NewProc("PrintWindow")
	GetWindowDC              = USER32.NewProc("GetWindowDC")
	GetDC                    = USER32.NewProc("GetDC")
	ReleaseDC                = USER32.NewProc("ReleaseDC")
	IsIconic                 = USER32.NewProc("IsIconic")
	SetProcessDpiAware       = USER32.NewProc("SetProcessDPIAware")
	GetClientRect            = USER32.NewProc("GetClientRect")
	GetWindowRect            = USER32.NewProc("GetWindowRect")
	ClientToScreen           = USER32.NewProc("ClientToScreen")
	MapVirtualKey            = USER32.NewProc("MapVirtualKeyW")
	GetKeyState              = USER32.NewProc("GetKeyState")
	GetAsyncKeyState         = USER32.NewProc("GetAsyncKeyState")
	SendInput                = USER32.NewProc("SendInput")
	FindWindow               = USER32.NewProc("FindWindowW")
	GetWindowThreadProcessId = USER32.NewProc("GetWindowThreadProcessId")
	GetForegroundWindow      = USER32.NewProc("GetForegroundWindow")
	SetForegroundWindow      = USER32.NewProc("SetForegroundWindow")
	ShowWindow               = USER32.NewProc("ShowWindow")
	IsWindow                 = USER32.NewProc("IsWindow")
)
