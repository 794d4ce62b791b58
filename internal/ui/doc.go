// Package ui renders git command events as short console log lines. Fetches
// are announced at info level and failed fetches surface at warn level.
package ui
