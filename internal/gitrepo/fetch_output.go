package gitrepo

import (
	"regexp"
	"strings"

	"github.com/temirov/git-fetch-all/internal/repos/shared"
)

const (
	lineSeparatorConstant       = "\n"
	carriageReturnConstant      = "\r"
	newTagSummaryMarkerConstant = "tag"
)

const (
	fetchFlagFastForward  = ' '
	fetchFlagForced       = '+'
	fetchFlagPruned       = '-'
	fetchFlagTagUpdate    = 't'
	fetchFlagNewReference = '*'
	fetchFlagRejected     = '!'
	fetchFlagUpToDate     = '='
)

// fetchLinePattern matches " <flag> <summary> <from> -> <to> [(reason)]".
var fetchLinePattern = regexp.MustCompile(`^ ([ +\-t*!=]) (\[[^\]]+\]|\S+)\s+(\S+)\s+->\s+(\S+)(?:\s+\((.+)\))?\s*$`)

// ParseFetchOutput extracts the per-reference status lines from the standard
// error of git fetch --verbose. Progress and informational lines are ignored.
func ParseFetchOutput(standardError string) []shared.RefUpdate {
	updates := []shared.RefUpdate{}
	for _, rawLine := range strings.Split(standardError, lineSeparatorConstant) {
		line := rawLine
		if carriageIndex := strings.LastIndex(line, carriageReturnConstant); carriageIndex >= 0 {
			line = line[carriageIndex+1:]
		}

		matches := fetchLinePattern.FindStringSubmatch(line)
		if matches == nil {
			continue
		}

		summary := matches[2]
		updates = append(updates, shared.RefUpdate{
			Flags:       refUpdateFlags(matches[1][0], summary),
			Summary:     summary,
			Source:      matches[3],
			Destination: matches[4],
			Reason:      matches[5],
		})
	}
	return updates
}

func refUpdateFlags(flagCharacter byte, summary string) shared.RefUpdateFlag {
	switch flagCharacter {
	case fetchFlagFastForward:
		return shared.RefUpdateFastForward
	case fetchFlagForced:
		return shared.RefUpdateForcedUpdate
	case fetchFlagPruned:
		return shared.RefUpdatePruned
	case fetchFlagTagUpdate:
		return shared.RefUpdateTagUpdate
	case fetchFlagNewReference:
		if strings.Contains(summary, newTagSummaryMarkerConstant) {
			return shared.RefUpdateNewTag
		}
		return shared.RefUpdateNewHead
	case fetchFlagRejected:
		return shared.RefUpdateRejected | shared.RefUpdateError
	case fetchFlagUpToDate:
		return shared.RefUpdateUpToDate
	default:
		return shared.RefUpdateError
	}
}
