//go:build !windows

// Package process terminates browser process trees left behind by the launcher.
package process

import "syscall"

// KillTree sends SIGKILL to the process group led by pid, taking Chrome's
// renderer and GPU helpers down with it. Errors are ignored: the launcher
// kills the leader itself as a fallback.
func KillTree(pid int) {
	if pid <= 0 {
		return
	}
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
