// Package execs runs the external commands zoorunner depends on: the web
// framework's route listing and the accessibility checker.
//
// Command lines are written as a single shell-style string in configuration
// and split with go-shellwords; no shell is involved when running them.
package execs
