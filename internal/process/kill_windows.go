//go:build windows

package process

import (
	"os/exec"
	"strconv"
)

// KillGroup terminates pid and its child processes with taskkill
// (/F force, /T tree). It reports whether taskkill succeeded.
func KillGroup(pid int) bool {
	if pid <= 0 {
		return false
	}
	return exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run() == nil
}
