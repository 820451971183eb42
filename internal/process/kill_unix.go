//go:build !windows

package process

import "syscall"

// KillGroup sends SIGKILL to the process group led by pid, taking Chrome's
// renderer and GPU helpers down with the browser. It reports whether the
// signal was delivered. Non-positive pids are ignored: -0 would target our
// own group.
func KillGroup(pid int) bool {
	if pid <= 0 {
		return false
	}
	return syscall.Kill(-pid, syscall.SIGKILL) == nil
}
