package sysutil

import (
	"io"
	"os/exec"
	"runtime"
)

// ClearTerminal clears the terminal screen written to by out in supported
// operating systems.
func ClearTerminal(out io.Writer) {
	args := clearCommand(runtime.GOOS)
	if args == nil {
		return
	}

	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdout = out
	_ = cmd.Run()
}

// clearCommand returns the command that clears the screen on goos, nil when
// there is none.
func clearCommand(goos string) []string {
	switch goos {
	case "windows":
		return []string{"cmd", "/c", "cls"}
	case "linux", "darwin", "freebsd", "openbsd", "netbsd":
		return []string{"clear"}
	default:
		return nil
	}
}
