// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build windows

package process

import (
	"os"
	"syscall"
)

func sysProcAttr() *syscall.SysProcAttr {
	return nil
}

// Windows has no portable interrupt for a child process.
func interruptGroup(ps *os.Process) error {
	return ps.Kill()
}

func killGroup(ps *os.Process) error {
	return ps.Kill()
}
