// Package main provides the entry point for the gdata CLI tool.
package main

import (
	"github.com/GNOME/libgdata-sub004/cmd/gdata/cmd"
)

// Version information populated by the build system.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	cmd.Execute(version, commit)
}
