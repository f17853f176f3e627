package report

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
)

// ErrMalformedArtifact indicates artifact text that does not parse.
var ErrMalformedArtifact = errors.New("malformed artifact")

// ArtifactPattern matches crash artifact file names, for use with
// [path/filepath.Glob].
const ArtifactPattern = "crash-*.log"

// Artifact section labels, in serialization order.
const (
	labelReportID    = "Report-Id"
	labelTimestamp   = "Timestamp"
	labelSeverity    = "Severity"
	labelMessage     = "Message"
	labelStack       = "Stack-Context"
	labelEnvironment = "Environment"
)

// artifactName returns the file name for a report ID.
func artifactName(id string) string {
	return "crash-" + id + ".log"
}

// String renders the report in its artifact form: labeled sections in fixed
// order, one frame or key per line, environment keys sorted. The rendering
// is deterministic for identical field values. Message lines after the first
// are indented by two spaces; frame and environment values are flattened to
// single lines.
//
// The format reserves " (" as the frame separator and ": " as the
// environment separator: a function name containing " (" or an environment
// key containing ": " does not survive [ParseArtifact]. Locations and
// environment values may contain both.
func (r *Report) String() string {
	var sb strings.Builder

	sb.WriteString(labelReportID + ": " + r.ID + "\n")
	sb.WriteString(labelTimestamp + ": " + r.Time.UTC().Format(time.RFC3339) + "\n")
	sb.WriteString(labelSeverity + ": " + r.Severity + "\n")
	sb.WriteString(labelMessage + ": " + strings.ReplaceAll(r.Text, "\n", "\n  ") + "\n")
	sb.WriteString(labelStack + ":\n")

	for _, f := range r.Frames {
		sb.WriteString("  " + flatten(f.Function) + " (" + flatten(f.Location) + ")\n")
	}

	sb.WriteString(labelEnvironment + ":\n")

	for _, k := range slices.Sorted(maps.Keys(r.Environment)) {
		sb.WriteString("  " + flatten(k) + ": " + flatten(r.Environment[k]) + "\n")
	}

	return sb.String()
}

// flatten collapses newlines so list entries stay one line each.
func flatten(s string) string {
	return strings.ReplaceAll(s, "\n", " ")
}

// ParseArtifact parses text produced by [Report.String] back into a
// [Report]. Path is not part of the artifact and is left empty.
func ParseArtifact(data []byte) (*Report, error) {
	p := &artifactParser{scanner: bufio.NewScanner(bytes.NewReader(data))}

	rep, err := p.parse()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedArtifact, err)
	}

	return rep, nil
}

// artifactParser consumes artifact lines section by section.
type artifactParser struct {
	scanner *bufio.Scanner
	line    string
	eof     bool
}

// next advances to the following line.
func (p *artifactParser) next() {
	if p.scanner.Scan() {
		p.line = p.scanner.Text()
		return
	}

	p.line = ""
	p.eof = true
}

func (p *artifactParser) parse() (*Report, error) {
	rep := &Report{Environment: map[string]string{}}

	p.next()

	id, err := p.scalar(labelReportID)
	if err != nil {
		return nil, err
	}

	rep.ID = id

	ts, err := p.scalar(labelTimestamp)
	if err != nil {
		return nil, err
	}

	rep.Time, err = time.Parse(time.RFC3339, ts)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", labelTimestamp, err)
	}

	rep.Severity, err = p.scalar(labelSeverity)
	if err != nil {
		return nil, err
	}

	rep.Text, err = p.message()
	if err != nil {
		return nil, err
	}

	rep.Frames, err = p.frames()
	if err != nil {
		return nil, err
	}

	rep.Environment, err = p.environment()
	if err != nil {
		return nil, err
	}

	return rep, p.scanner.Err()
}

// scalar consumes one "Label: value" line.
func (p *artifactParser) scalar(label string) (string, error) {
	if p.eof {
		return "", fmt.Errorf("missing %s section", label)
	}

	value, ok := strings.CutPrefix(p.line, label+": ")
	if !ok {
		// A scalar with an empty value has no trailing space.
		if p.line != label+":" {
			return "", fmt.Errorf("expected %s section, got %q", label, p.line)
		}

		value = ""
	}

	p.next()

	return value, nil
}

// message consumes the Message line plus its indented continuations.
func (p *artifactParser) message() (string, error) {
	text, err := p.scalar(labelMessage)
	if err != nil {
		return "", err
	}

	for !p.eof {
		cont, ok := strings.CutPrefix(p.line, "  ")
		if !ok {
			break
		}

		text += "\n" + cont

		p.next()
	}

	return text, nil
}

// frames consumes the Stack-Context section.
func (p *artifactParser) frames() ([]Frame, error) {
	if p.eof || p.line != labelStack+":" {
		return nil, fmt.Errorf("expected %s section, got %q", labelStack, p.line)
	}

	p.next()

	var frames []Frame

	for !p.eof {
		entry, ok := strings.CutPrefix(p.line, "  ")
		if !ok {
			break
		}

		frames = append(frames, parseFrame(entry))

		p.next()
	}

	return frames, nil
}

// parseFrame splits "function (location)" at the first " (", so locations
// may contain spaces and parentheses. An entry without a location group
// becomes a bare function name.
func parseFrame(entry string) Frame {
	if strings.HasSuffix(entry, ")") {
		if i := strings.Index(entry, " ("); i >= 0 {
			return Frame{
				Function: entry[:i],
				Location: entry[i+2 : len(entry)-1],
			}
		}
	}

	return Frame{Function: entry}
}

// environment consumes the Environment section.
func (p *artifactParser) environment() (map[string]string, error) {
	if p.eof || p.line != labelEnvironment+":" {
		return nil, fmt.Errorf("expected %s section, got %q", labelEnvironment, p.line)
	}

	p.next()

	env := map[string]string{}

	for !p.eof {
		entry, ok := strings.CutPrefix(p.line, "  ")
		if !ok {
			return nil, fmt.Errorf("unexpected line after %s section: %q", labelEnvironment, p.line)
		}

		key, value, found := strings.Cut(entry, ": ")
		if !found {
			return nil, fmt.Errorf("malformed environment entry %q", entry)
		}

		env[key] = value

		p.next()
	}

	return env, nil
}
