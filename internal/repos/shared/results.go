package shared

import (
	"errors"
	"sort"
	"strings"
)

const (
	outcomeStatusUpToDateLabelConstant = "up_to_date"
	outcomeStatusUpdatedLabelConstant  = "updated"
	outcomeStatusFailedLabelConstant   = "failed"
	outcomeStatusUnknownLabelConstant  = "unknown"
)

// OutcomeStatus enumerates the tri-state result of fetching one remote.
type OutcomeStatus int

// Supported outcome states.
const (
	OutcomeUpToDate OutcomeStatus = iota
	OutcomeUpdated
	OutcomeFailed
)

// String returns the snake_case label of the status.
func (status OutcomeStatus) String() string {
	switch status {
	case OutcomeUpToDate:
		return outcomeStatusUpToDateLabelConstant
	case OutcomeUpdated:
		return outcomeStatusUpdatedLabelConstant
	case OutcomeFailed:
		return outcomeStatusFailedLabelConstant
	default:
		return outcomeStatusUnknownLabelConstant
	}
}

// Outcome captures the result of a single remote fetch. Failure is set only
// for OutcomeFailed.
type Outcome struct {
	Status  OutcomeStatus
	Failure error
}

// UpToDateOutcome reports a successful fetch that retrieved nothing new.
func UpToDateOutcome() Outcome {
	return Outcome{Status: OutcomeUpToDate}
}

// UpdatedOutcome reports a successful fetch that advanced at least one reference.
func UpdatedOutcome() Outcome {
	return Outcome{Status: OutcomeUpdated}
}

// FailedOutcome reports a fetch-domain failure.
func FailedOutcome(failure error) Outcome {
	return Outcome{Status: OutcomeFailed, Failure: failure}
}

// OutcomeFromRefUpdates translates the ref indicators of a successful fetch.
func OutcomeFromRefUpdates(updates []RefUpdate) Outcome {
	if AllRefsUpToDate(updates) {
		return UpToDateOutcome()
	}
	return UpdatedOutcome()
}

// Failed reports whether the outcome represents a failure.
func (outcome Outcome) Failed() bool {
	return outcome.Status == OutcomeFailed
}

// ErrorDetail renders the failure for display, preferring git standard error.
func (outcome Outcome) ErrorDetail() string {
	if outcome.Failure == nil {
		return ""
	}
	var fetchError FetchError
	if errors.As(outcome.Failure, &fetchError) {
		return fetchError.Detail()
	}
	var openError RepositoryOpenError
	if errors.As(outcome.Failure, &openError) {
		return openError.Detail()
	}
	return strings.TrimSpace(outcome.Failure.Error())
}

// ResultKey identifies one (repository path, remote name) pair.
type ResultKey struct {
	RepositoryPath string
	RemoteName     string
}

// ResultSet maps every fetched pair to its outcome.
type ResultSet map[ResultKey]Outcome

// MergeResultSets returns the union of the provided sets. Keys are expected to
// be disjoint; on collision the later set wins.
func MergeResultSets(resultSets ...ResultSet) ResultSet {
	totalSize := 0
	for _, resultSet := range resultSets {
		totalSize += len(resultSet)
	}

	merged := make(ResultSet, totalSize)
	for _, resultSet := range resultSets {
		for resultKey, outcome := range resultSet {
			merged[resultKey] = outcome
		}
	}
	return merged
}

// HasFailures reports whether any outcome failed.
func (resultSet ResultSet) HasFailures() bool {
	for _, outcome := range resultSet {
		if outcome.Failed() {
			return true
		}
	}
	return false
}

// Count returns the number of outcomes with the provided status.
func (resultSet ResultSet) Count(status OutcomeStatus) int {
	count := 0
	for _, outcome := range resultSet {
		if outcome.Status == status {
			count++
		}
	}
	return count
}

// SortedKeys returns keys ordered by repository path, then remote name.
func (resultSet ResultSet) SortedKeys() []ResultKey {
	keys := make([]ResultKey, 0, len(resultSet))
	for resultKey := range resultSet {
		keys = append(keys, resultKey)
	}
	sort.Slice(keys, func(leftIndex int, rightIndex int) bool {
		if keys[leftIndex].RepositoryPath != keys[rightIndex].RepositoryPath {
			return keys[leftIndex].RepositoryPath < keys[rightIndex].RepositoryPath
		}
		return keys[leftIndex].RemoteName < keys[rightIndex].RemoteName
	})
	return keys
}
