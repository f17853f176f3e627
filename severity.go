package humane

import (
	"fmt"
	"strings"
)

// Severity classifies a diagnostic message. Severities have no ordering
// beyond membership; each maps to exactly one color token and one gating
// rule.
type Severity uint8

const (
	// SeverityWarning flags a recoverable problem the user should know about.
	SeverityWarning Severity = iota
	// SeverityInfo reports normal operation.
	SeverityInfo
	// SeverityDebug carries developer detail, rendered only when debug output
	// is enabled.
	SeverityDebug
	// SeverityNotice highlights a noteworthy non-error event.
	SeverityNotice
	// SeverityFatal reports an unrecoverable failure and triggers crash
	// reporting.
	SeverityFatal
)

// String returns the severity's level tag.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "WARNING"
	case SeverityInfo:
		return "INFO"
	case SeverityDebug:
		return "DEBUG"
	case SeverityNotice:
		return "NOTICE"
	case SeverityFatal:
		return "FATAL"
	}

	return "UNKNOWN"
}

// ParseSeverity parses a severity name, case-insensitively.
func ParseSeverity(name string) (Severity, error) {
	switch strings.ToLower(name) {
	case "warning", "warn":
		return SeverityWarning, nil
	case "info":
		return SeverityInfo, nil
	case "debug":
		return SeverityDebug, nil
	case "notice":
		return SeverityNotice, nil
	case "fatal":
		return SeverityFatal, nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownSeverity, name)
}

// Severities returns all severities in display order.
func Severities() []Severity {
	return []Severity{
		SeverityWarning,
		SeverityInfo,
		SeverityDebug,
		SeverityNotice,
		SeverityFatal,
	}
}

// SeverityNames returns the lowercase names of all severities, as accepted
// by [ParseSeverity] and used as palette keys.
func SeverityNames() []string {
	sevs := Severities()
	names := make([]string, 0, len(sevs))

	for _, s := range sevs {
		names = append(names, strings.ToLower(s.String()))
	}

	return names
}
