//go:build !windows

package process

import (
	"os/exec"
	"testing"
	"time"
)

func TestKillProcessGroup_KillsChildTree(t *testing.T) {
	t.Parallel()

	// The shell forks a grandchild sleep; killing the group must end both.
	cmd := exec.Command("sh", "-c", "sleep 30 & wait")
	Isolate(cmd)
	if !cmd.SysProcAttr.Setpgid {
		t.Fatal("Isolate() did not request a new process group")
	}
	if err := cmd.Start(); err != nil {
		t.Skipf("cannot start sh: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	KillProcessGroup(cmd.Process.Pid)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		_ = cmd.Process.Kill()
		t.Fatal("process group still running after KillProcessGroup")
	}
}
