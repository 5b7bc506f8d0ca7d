// Package main is the single-binary entrypoint for focus, a local focus
// timer with coin rewards, streaks, goals and achievements.
package main

import "github.com/tutu-network/focus/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
