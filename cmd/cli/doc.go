// Package cli constructs the git-fetch-all command-line interface. The root
// Cobra command is the fetch command; the Application layers embedded
// defaults, configuration files, environment variables, and flags before
// building the zap logger shared by every component.
package cli
