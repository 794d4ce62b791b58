package shared

import (
	"fmt"
	"strings"
)

const (
	fetchErrorTemplateConstant           = "fetch of %s in %s failed"
	fetchErrorWithCauseTemplateConstant  = "fetch of %s in %s failed: %v"
	fetchErrorWithStderrTemplateConstant = "fetch of %s in %s failed: %s"
)

// FetchError reports a failure that belongs to the fetch operation itself, such
// as authentication, network or ref rejection problems.
type FetchError struct {
	RepositoryPath string
	RemoteName     string
	StandardError  string
	Cause          error
}

// NewFetchError constructs a FetchError for the provided repository and remote.
func NewFetchError(repositoryPath string, remoteName string, standardError string, cause error) FetchError {
	return FetchError{
		RepositoryPath: repositoryPath,
		RemoteName:     remoteName,
		StandardError:  standardError,
		Cause:          cause,
	}
}

// Error describes the failed fetch.
func (fetchError FetchError) Error() string {
	trimmedStandardError := strings.TrimSpace(fetchError.StandardError)
	if len(trimmedStandardError) > 0 {
		return fmt.Sprintf(fetchErrorWithStderrTemplateConstant, fetchError.RemoteName, fetchError.RepositoryPath, trimmedStandardError)
	}
	if fetchError.Cause != nil {
		return fmt.Sprintf(fetchErrorWithCauseTemplateConstant, fetchError.RemoteName, fetchError.RepositoryPath, fetchError.Cause)
	}
	return fmt.Sprintf(fetchErrorTemplateConstant, fetchError.RemoteName, fetchError.RepositoryPath)
}

// Unwrap exposes the underlying cause.
func (fetchError FetchError) Unwrap() error {
	return fetchError.Cause
}

// Detail returns the human-readable failure text: the standard error reported
// by git trimmed of surrounding whitespace when present, otherwise the cause.
func (fetchError FetchError) Detail() string {
	trimmedStandardError := strings.TrimSpace(fetchError.StandardError)
	if len(trimmedStandardError) > 0 {
		return trimmedStandardError
	}
	if fetchError.Cause != nil {
		return strings.TrimSpace(fetchError.Cause.Error())
	}
	return fetchError.Error()
}
