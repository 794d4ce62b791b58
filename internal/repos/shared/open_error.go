package shared

import (
	"fmt"
	"strings"
)

const (
	openErrorTemplateConstant           = "%s is a repository that could not be opened"
	openErrorWithCauseTemplateConstant  = "%s is a repository that could not be opened: %v"
	openErrorWithStderrTemplateConstant = "%s is a repository that could not be opened: %s"
)

// RepositoryOpenError reports a directory the backend recognizes as a
// repository but refuses to open, for example because of unsafe ownership or
// a corrupt configuration. The directory is reported as failed and never
// descended into.
type RepositoryOpenError struct {
	RepositoryPath string
	StandardError  string
	Cause          error
}

// NewRepositoryOpenError constructs a RepositoryOpenError.
func NewRepositoryOpenError(repositoryPath string, standardError string, cause error) RepositoryOpenError {
	return RepositoryOpenError{RepositoryPath: repositoryPath, StandardError: standardError, Cause: cause}
}

// Error describes the repository that could not be opened.
func (openError RepositoryOpenError) Error() string {
	trimmedStandardError := strings.TrimSpace(openError.StandardError)
	if len(trimmedStandardError) > 0 {
		return fmt.Sprintf(openErrorWithStderrTemplateConstant, openError.RepositoryPath, trimmedStandardError)
	}
	if openError.Cause != nil {
		return fmt.Sprintf(openErrorWithCauseTemplateConstant, openError.RepositoryPath, openError.Cause)
	}
	return fmt.Sprintf(openErrorTemplateConstant, openError.RepositoryPath)
}

// Unwrap exposes the underlying cause.
func (openError RepositoryOpenError) Unwrap() error {
	return openError.Cause
}

// Detail returns git's standard error when present, otherwise the cause.
func (openError RepositoryOpenError) Detail() string {
	trimmedStandardError := strings.TrimSpace(openError.StandardError)
	if len(trimmedStandardError) > 0 {
		return trimmedStandardError
	}
	if openError.Cause != nil {
		return strings.TrimSpace(openError.Cause.Error())
	}
	return openError.Error()
}
