package winproc

import "golang.org/x/sys/windows"

var (
	SHELL32      = windows.NewLazySystemDLL("shell32.dll")
	ShellExecute = SHELL32.NewProc("ShellExecuteW")
)
