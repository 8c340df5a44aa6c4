//go:build !unix

package auth

import "errors"

var errNoMemoryLocking = errors.New("memory locking unsupported on this platform")

func lockMemory([]byte) error   { return errNoMemoryLocking }
func unlockMemory([]byte) error { return nil }
