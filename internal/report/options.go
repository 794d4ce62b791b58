package report

import (
	"fmt"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Format selects the report rendering.
type Format string

// Supported report formats.
const (
	FormatText Format = Format("text")
	FormatJSON Format = Format("json")
	FormatYAML Format = Format("yaml")
)

// ColorMode selects when failed lines are highlighted.
type ColorMode string

// Supported color modes.
const (
	ColorAuto   ColorMode = ColorMode("auto")
	ColorAlways ColorMode = ColorMode("always")
	ColorNever  ColorMode = ColorMode("never")
)

const (
	unsupportedFormatTemplateConstant    = "unsupported report format %q"
	unsupportedColorModeTemplateConstant = "unsupported color mode %q"
)

// SupportedFormats lists the accepted format names.
func SupportedFormats() []string {
	return []string{string(FormatText), string(FormatJSON), string(FormatYAML)}
}

// SupportedColorModes lists the accepted color mode names.
func SupportedColorModes() []string {
	return []string{string(ColorAuto), string(ColorAlways), string(ColorNever)}
}

// ParseFormat converts a case-insensitive format name.
func ParseFormat(value string) (Format, error) {
	normalized := Format(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case FormatText, FormatJSON, FormatYAML:
		return normalized, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf(unsupportedFormatTemplateConstant, value)
	}
}

// ParseColorMode converts a case-insensitive color mode name.
func ParseColorMode(value string) (ColorMode, error) {
	normalized := ColorMode(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case ColorAuto, ColorAlways, ColorNever:
		return normalized, nil
	case "":
		return ColorAuto, nil
	default:
		return "", fmt.Errorf(unsupportedColorModeTemplateConstant, value)
	}
}

// FileDescriptor is satisfied by *os.File.
type FileDescriptor interface {
	Fd() uintptr
}

// ResolveColor decides whether to emit ANSI colors. Auto mode requires a
// terminal and honors NO_COLOR and CLICOLOR.
func ResolveColor(mode ColorMode, output FileDescriptor) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if termenv.EnvNoColor() || output == nil {
		return false
	}
	descriptor := output.Fd()
	return isatty.IsTerminal(descriptor) || isatty.IsCygwinTerminal(descriptor)
}
