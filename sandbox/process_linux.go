package sandbox

import (
	"errors"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// processGroupAttr puts the shell in its own process group so a timeout can
// kill everything it spawned, and kills it if this process dies first.
func processGroupAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		Setpgid:   true,
		Pdeathsig: syscall.SIGKILL,
	}
}

// killProcessGroup kills the group led by p. It returns os.ErrProcessDone
// when the leader had already exited, even though stragglers in the group
// are still killed.
func killProcessGroup(p *os.Process) error {
	if p == nil || p.Pid <= 0 {
		return nil
	}
	exited := leaderExited(p.Pid)
	err := unix.Kill(-p.Pid, unix.SIGKILL)
	if exited || errors.Is(err, unix.ESRCH) {
		return os.ErrProcessDone
	}
	return err
}

// leaderExited reports whether pid has exited, reaped or not. The zombie is
// left in place for Wait.
func leaderExited(pid int) bool {
	var info unix.Siginfo
	err := unix.Waitid(unix.P_PID, pid, &info, unix.WEXITED|unix.WNOHANG|unix.WNOWAIT, nil)
	if errors.Is(err, unix.ECHILD) {
		return true
	}
	return err == nil && info.Signo == int32(unix.SIGCHLD)
}
