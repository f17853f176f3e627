package report

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/valyala/fasttemplate"
)

// Sentinel errors returned by the reporter.
var (
	// ErrPersist indicates the crash artifact could not be written. The
	// in-memory report and instruction remain valid.
	ErrPersist = errors.New("persisting crash artifact")
	// ErrInvalidTemplate indicates an instruction template that does not
	// parse or uses unrecognized tags.
	ErrInvalidTemplate = errors.New("invalid instruction template")
)

// Defaults used when [Config] fields are empty.
const (
	// DefaultCrashMessage opens the instruction text.
	DefaultCrashMessage = "Oh no! The program has crashed"
	// DefaultURL is where users are pointed absent configuration.
	DefaultURL = "the appropriate place"
	// DefaultTemplate is the instruction wording. See [ValidateTemplate] for
	// the recognized tags.
	DefaultTemplate = "{{crash_message}}. Please submit a report to {{url}}, " +
		"along with a copy of this error message, which can also be found in " +
		"{{report_path}} as plaintext."
)

// noArtifactPath substitutes for {{report_path}} when no artifact exists.
const noArtifactPath = "the console output above"

// Template tag delimiters.
const (
	tagStart = "{{"
	tagEnd   = "}}"
)

// instructionTags are the placeholders recognized in instruction templates.
var instructionTags = []string{"crash_message", "url", "report_path", "report_id"}

// Config holds reporter configuration.
type Config struct {
	// Environment adds fixed key/value pairs to every report.
	Environment map[string]string
	// Dir receives crash artifacts. Empty disables persistence; the
	// in-memory report and instruction are still produced.
	Dir string
	// URL names where users file bug reports. Empty means [DefaultURL].
	URL string
	// CrashMessage opens the instruction text. Empty means
	// [DefaultCrashMessage].
	CrashMessage string
	// Template overrides [DefaultTemplate].
	Template string
}

// Reporter captures crash reports and persists their artifacts.
//
// Create instances with [New]. A Reporter is immutable and safe for
// concurrent use: concurrent captures cannot collide because every artifact
// is created new under a unique ID.
type Reporter struct {
	now          func() time.Time
	newID        func(time.Time) string
	env          map[string]string
	tmpl         *fasttemplate.Template
	dir          string
	url          string
	crashMessage string
}

// Option configures a [Reporter].
type Option func(*Reporter)

// WithNow sets the clock used for report timestamps and IDs.
func WithNow(now func() time.Time) Option {
	return func(r *Reporter) {
		r.now = now
	}
}

// WithIDFunc sets the report ID generator. Useful for deterministic tests;
// production generators must keep IDs unique per report.
func WithIDFunc(fn func(time.Time) string) Option {
	return func(r *Reporter) {
		r.newID = fn
	}
}

// New creates a [Reporter] from cfg.
func New(cfg Config, opts ...Option) (*Reporter, error) {
	tmplSrc := cfg.Template
	if tmplSrc == "" {
		tmplSrc = DefaultTemplate
	}

	err := ValidateTemplate(tmplSrc)
	if err != nil {
		return nil, err
	}

	tmpl, err := fasttemplate.NewTemplate(tmplSrc, tagStart, tagEnd)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTemplate, err)
	}

	r := &Reporter{
		now:          time.Now,
		newID:        NewID,
		env:          maps.Clone(cfg.Environment),
		tmpl:         tmpl,
		dir:          cfg.Dir,
		url:          cfg.URL,
		crashMessage: cfg.CrashMessage,
	}

	if r.url == "" {
		r.url = DefaultURL
	}

	if r.crashMessage == "" {
		r.crashMessage = DefaultCrashMessage
	}

	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

// ValidateTemplate checks that an instruction template parses and uses only
// the recognized tags: {{crash_message}}, {{url}}, {{report_path}}, and
// {{report_id}}.
func ValidateTemplate(tmpl string) error {
	parsed, err := fasttemplate.NewTemplate(tmpl, tagStart, tagEnd)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTemplate, err)
	}

	var unknown []string

	parsed.ExecuteFuncString(func(_ io.Writer, tag string) (int, error) {
		if !slices.Contains(instructionTags, strings.TrimSpace(tag)) {
			unknown = append(unknown, tag)
		}

		return 0, nil
	})

	if len(unknown) > 0 {
		return fmt.Errorf("%w: unrecognized tags %q", ErrInvalidTemplate, unknown)
	}

	return nil
}

// Capture assembles a [Report] for msg, persists its artifact when a
// directory is configured, and builds the user-facing instruction.
//
// Capture always returns a valid report and a non-empty instruction. When
// only the artifact write fails, the error wraps [ErrPersist] and the report
// remains usable in memory; persistence failure never masks the fatal
// message being reported.
func (r *Reporter) Capture(msg Message, frames ...Frame) (*Report, string, error) {
	ts := msg.Time
	if ts.IsZero() {
		ts = r.now()
	}

	ts = ts.UTC()

	rep := &Report{
		ID:          r.newID(ts),
		Time:        ts,
		Severity:    msg.Severity,
		Text:        msg.Text,
		Frames:      slices.Clone(frames),
		Environment: r.environment(msg.Metadata),
	}

	var persistErr error

	if r.dir != "" {
		path, err := r.persist(rep)
		if err != nil {
			persistErr = fmt.Errorf("%w: %w", ErrPersist, err)
		} else {
			rep.Path = path
		}
	}

	return rep, r.instruction(rep), persistErr
}

// environment merges the platform snapshot, the configured environment, and
// the message metadata. Later sources win on key collisions.
func (r *Reporter) environment(metadata map[string]string) map[string]string {
	env := Environment()

	maps.Copy(env, r.env)
	maps.Copy(env, metadata)

	return env
}

// persist writes the artifact create-new so concurrent captures never
// clobber each other.
func (r *Reporter) persist(rep *Report) (string, error) {
	path := filepath.Join(r.dir, artifactName(rep.ID))

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}

	_, writeErr := f.WriteString(rep.String())

	err = errors.Join(writeErr, f.Close())
	if err != nil {
		return "", err
	}

	return path, nil
}

// instruction renders the user-facing bug-report instruction for rep.
func (r *Reporter) instruction(rep *Report) string {
	path := rep.Path
	if path == "" {
		path = noArtifactPath
	}

	return r.tmpl.ExecuteFuncString(func(w io.Writer, tag string) (int, error) {
		switch strings.TrimSpace(tag) {
		case "crash_message":
			return io.WriteString(w, r.crashMessage)
		case "url":
			return io.WriteString(w, r.url)
		case "report_path":
			return io.WriteString(w, path)
		case "report_id":
			return io.WriteString(w, rep.ID)
		}

		return 0, nil
	})
}
