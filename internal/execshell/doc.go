// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec behind ShellExecutor, which reports command lifecycle
// events to a CommandEventObserver and converts non-zero exit codes into
// CommandFailedError values. OSCommandRunner is the default process runner;
// tests substitute their own CommandRunner.
package execshell
