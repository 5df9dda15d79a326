package winproc

import "golang.org/x/sys/windows"

var (
	NTDLL            = windows.NewLazySystemDLL("ntdll.dll")
	NtSuspendProcess = NTDLL.NewProc("NtSuspendProcess")
	NtResumeProcess  = NTDLL.NewProc("NtResumeProcess")
)
