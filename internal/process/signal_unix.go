// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build !windows

package process

import (
	"errors"
	"os"
	"syscall"
)

// Children run in their own process group so that terminating a shell
// also reaches the commands it spawned.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}

func interruptGroup(ps *os.Process) error {
	return signalGroup(ps, syscall.SIGTERM)
}

func killGroup(ps *os.Process) error {
	return signalGroup(ps, syscall.SIGKILL)
}

func signalGroup(ps *os.Process, sig syscall.Signal) error {
	err := syscall.Kill(-ps.Pid, sig)
	if errors.Is(err, syscall.ESRCH) {
		return os.ErrProcessDone
	}

	return err
}
