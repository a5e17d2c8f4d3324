//go:build !unix

package config

import "syscall"

var reservedSignals = map[syscall.Signal]string{}
