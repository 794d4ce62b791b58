package report

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/muesli/termenv"
	"gopkg.in/yaml.v3"

	"github.com/temirov/git-fetch-all/internal/repos/shared"
)

const (
	updatedSymbolConstant       = "✓"
	upToDateSymbolConstant      = "-"
	failedSymbolConstant        = "𐄂"
	unknownSymbolConstant       = "?"
	statusLineTemplateConstant  = "%s %s:%s"
	repositoryLineTemplate      = "%s %s"
	detailIndentConstant        = "    "
	lineSeparatorConstant       = "\n"
	jsonIndentConstant          = "  "
	yamlIndentWidthConstant     = 2
	encodeErrorTemplateConstant = "failed to encode %s report: %w"
	writeErrorTemplateConstant  = "failed to write report: %w"
)

// Options configures report rendering.
type Options struct {
	// BaseDirectory is the directory entry paths are made relative to.
	BaseDirectory string
	// Quiet limits the report to failed entries.
	Quiet  bool
	Color  bool
	Format Format
}

// Entry is one rendered result.
type Entry struct {
	Path   string `json:"path" yaml:"path"`
	Remote string `json:"remote" yaml:"remote"`
	Status string `json:"status" yaml:"status"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`

	outcome shared.Outcome
}

// BuildEntries orders results by path then remote and converts them to
// entries with slash-separated paths relative to baseDirectory.
func BuildEntries(results shared.ResultSet, baseDirectory string, quiet bool) []Entry {
	entries := make([]Entry, 0, len(results))
	for _, resultKey := range results.SortedKeys() {
		outcome := results[resultKey]
		if quiet && !outcome.Failed() {
			continue
		}
		entries = append(entries, Entry{
			Path:    relativePath(baseDirectory, resultKey.RepositoryPath),
			Remote:  resultKey.RemoteName,
			Status:  outcome.Status.String(),
			Error:   outcome.ErrorDetail(),
			outcome: outcome,
		})
	}
	return entries
}

// Render returns the report without a trailing newline.
func Render(results shared.ResultSet, options Options) (string, error) {
	entries := BuildEntries(results, options.BaseDirectory, options.Quiet)
	switch options.Format {
	case FormatJSON:
		encoded, encodeError := json.MarshalIndent(entries, "", jsonIndentConstant)
		if encodeError != nil {
			return "", fmt.Errorf(encodeErrorTemplateConstant, FormatJSON, encodeError)
		}
		return string(encoded), nil
	case FormatYAML:
		var builder strings.Builder
		encoder := yaml.NewEncoder(&builder)
		encoder.SetIndent(yamlIndentWidthConstant)
		if encodeError := encoder.Encode(entries); encodeError != nil {
			return "", fmt.Errorf(encodeErrorTemplateConstant, FormatYAML, encodeError)
		}
		if closeError := encoder.Close(); closeError != nil {
			return "", fmt.Errorf(encodeErrorTemplateConstant, FormatYAML, closeError)
		}
		return strings.TrimSuffix(builder.String(), lineSeparatorConstant), nil
	default:
		return renderText(entries, options.Color), nil
	}
}

// Write renders the report to writer, terminated by a newline when non-empty.
func Write(writer io.Writer, results shared.ResultSet, options Options) error {
	rendered, renderError := Render(results, options)
	if renderError != nil {
		return renderError
	}
	if len(rendered) == 0 {
		return nil
	}
	if _, writeError := io.WriteString(writer, rendered+lineSeparatorConstant); writeError != nil {
		return fmt.Errorf(writeErrorTemplateConstant, writeError)
	}
	return nil
}

func renderText(entries []Entry, color bool) string {
	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		statusLine := formatStatusLine(entry)
		if !entry.outcome.Failed() {
			lines = append(lines, statusLine)
			continue
		}
		if color {
			statusLine = termenv.String(statusLine).Foreground(termenv.ANSIRed).String()
		}
		lines = append(lines, statusLine)
		if len(entry.Error) > 0 {
			lines = append(lines, indentLines(entry.Error))
		}
	}
	return strings.Join(lines, lineSeparatorConstant)
}

// formatStatusLine omits the remote for repositories that could not be opened.
func formatStatusLine(entry Entry) string {
	if len(entry.Remote) == 0 {
		return fmt.Sprintf(repositoryLineTemplate, statusSymbol(entry.outcome.Status), entry.Path)
	}
	return fmt.Sprintf(statusLineTemplateConstant, statusSymbol(entry.outcome.Status), entry.Path, entry.Remote)
}

func statusSymbol(status shared.OutcomeStatus) string {
	switch status {
	case shared.OutcomeUpdated:
		return updatedSymbolConstant
	case shared.OutcomeUpToDate:
		return upToDateSymbolConstant
	case shared.OutcomeFailed:
		return failedSymbolConstant
	default:
		return unknownSymbolConstant
	}
}

// indentLines prefixes every line that is not blank.
func indentLines(text string) string {
	lines := strings.Split(text, lineSeparatorConstant)
	for lineIndex, line := range lines {
		if len(strings.TrimSpace(line)) == 0 {
			continue
		}
		lines[lineIndex] = detailIndentConstant + line
	}
	return strings.Join(lines, lineSeparatorConstant)
}

func relativePath(baseDirectory string, repositoryPath string) string {
	if len(baseDirectory) == 0 {
		return filepath.ToSlash(repositoryPath)
	}
	relative, relativeError := filepath.Rel(baseDirectory, repositoryPath)
	if relativeError != nil {
		return filepath.ToSlash(repositoryPath)
	}
	return filepath.ToSlash(relative)
}
