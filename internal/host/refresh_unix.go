//go:build unix

package host

import "syscall"

// sigRTMin is the first real-time signal as seen by programs linked against glibc.
const sigRTMin = 34

func killProcess(pid, sig int) error {
	return syscall.Kill(pid, syscall.Signal(sig))
}
