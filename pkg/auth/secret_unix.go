//go:build unix

package auth

import "syscall"

func lockMemory(b []byte) error   { return syscall.Mlock(b) }
func unlockMemory(b []byte) error { return syscall.Munlock(b) }
