package humane

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/fatih/color"

	"go.jacobcolvin.com/humane/report"
)

// FatalExitCode is the conventional process exit code after a fatal
// diagnostic. The emitter never terminates the process itself; hosts that
// want to exit after [Emitter.Fatal] use this code.
const FatalExitCode = 3

// Outcome classifies how the emitter handled a message.
type Outcome uint8

const (
	// OutcomeSuppressed means a DEBUG message was gated off without output.
	OutcomeSuppressed Outcome = iota
	// OutcomeRendered means the message was rendered to the sink. A failed
	// write keeps this outcome; the error carries the failure.
	OutcomeRendered
	// OutcomeFatalHandled means the message was rendered and crash handling
	// ran.
	OutcomeFatalHandled
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeSuppressed:
		return "suppressed"
	case OutcomeRendered:
		return "rendered"
	case OutcomeFatalHandled:
		return "fatal-handled"
	}

	return "unknown"
}

// EmitResult describes how a message was handled. For fatal messages it
// carries the captured [report.Report] and the user-facing instruction.
type EmitResult struct {
	// Message is the message as routed, with its timestamp filled in.
	Message Message
	// Report is the crash report for fatal messages, nil otherwise. It is
	// valid even when the artifact could not be persisted.
	Report *report.Report
	// Instruction is the bug-filing instruction for fatal messages.
	Instruction string
	// Outcome classifies what the emitter did.
	Outcome Outcome
}

// Emitter routes diagnostic messages to a sink, rendering each as a
// color-coded "[SEVERITY] text" line, and runs crash handling for fatal
// messages.
//
// Create instances with [New]. An Emitter is immutable after construction;
// writes to the sink are serialized by the sink itself.
type Emitter struct {
	out      io.Writer
	colors   map[Severity]*color.Color
	reporter *report.Reporter
	frames   func() []report.Frame
	now      func() time.Time
	debug    bool
}

// Option configures an [Emitter].
type Option func(*Emitter)

// WithOutput sets the sink rendered messages are written to.
// The default is [os.Stderr].
func WithOutput(w io.Writer) Option {
	return func(e *Emitter) {
		e.out = w
	}
}

// WithNow sets the clock used to stamp messages and crash reports.
func WithNow(now func() time.Time) Option {
	return func(e *Emitter) {
		e.now = now
	}
}

// WithFrameSource sets the stack context used when a fatal message carries
// no explicit frames. Hosts that want call stacks in crash reports wire in
// [report.Callers]:
//
//	e, err := humane.New(cfg, humane.WithFrameSource(func() []report.Frame {
//	    return report.Callers(1)
//	}))
func WithFrameSource(fn func() []report.Frame) Option {
	return func(e *Emitter) {
		e.frames = fn
	}
}

// New creates an [Emitter] from cfg. A nil cfg uses [NewConfig] defaults.
func New(cfg *Config, opts ...Option) (*Emitter, error) {
	if cfg == nil {
		cfg = NewConfig()
	}

	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	colors, err := cfg.palette()
	if err != nil {
		return nil, err
	}

	e := &Emitter{
		out:   os.Stderr,
		now:   time.Now,
		debug: cfg.DebugEnabled,
	}

	for _, opt := range opts {
		opt(e)
	}

	mode := cfg.Color
	if mode == "" {
		mode = ColorAuto
	}

	if colorEnabled(mode, e.out) {
		for _, col := range colors {
			col.EnableColor()
		}

		e.colors = colors
	}

	reporter, err := report.New(report.Config{
		Environment:  cfg.Environment,
		Dir:          cfg.ReportDir,
		URL:          cfg.ReportURL,
		CrashMessage: cfg.CrashMessage,
		Template:     cfg.InstructionTemplate,
	}, report.WithNow(e.now))
	if err != nil {
		return nil, err
	}

	e.reporter = reporter

	return e, nil
}

// Emit routes one diagnostic message. DEBUG messages are suppressed unless
// debug output is enabled; FATAL messages additionally run crash handling.
// Optional frames attach stack context to fatal crash reports.
//
// A failed sink write on a non-fatal message returns an error wrapping
// [ErrSinkWrite] alongside the rendered result. For fatal messages, write and
// persist failures are joined into the returned error while the [EmitResult]
// stays valid, so the crash report is never lost to a broken sink.
func (e *Emitter) Emit(severity Severity, text string, metadata map[string]string, frames ...report.Frame) (EmitResult, error) {
	return e.EmitMessage(Message{
		Metadata: metadata,
		Text:     text,
		Severity: severity,
	}, frames...)
}

// EmitMessage routes msg like [Emitter.Emit], preserving a caller-supplied
// timestamp. A zero [Message.Time] is stamped with the emitter's clock.
func (e *Emitter) EmitMessage(msg Message, frames ...report.Frame) (EmitResult, error) {
	if msg.Time.IsZero() {
		msg.Time = e.now().UTC()
	}

	if msg.Severity == SeverityDebug && !e.debug {
		return EmitResult{Outcome: OutcomeSuppressed, Message: msg}, nil
	}

	if msg.Severity == SeverityFatal {
		return e.fatal(msg, frames)
	}

	err := e.render(msg.Severity, msg.Text)

	return EmitResult{Outcome: OutcomeRendered, Message: msg}, err
}

// Warning renders a WARNING message.
func (e *Emitter) Warning(text string) error {
	_, err := e.Emit(SeverityWarning, text, nil)

	return err
}

// Info renders an INFO message.
func (e *Emitter) Info(text string) error {
	_, err := e.Emit(SeverityInfo, text, nil)

	return err
}

// Debug renders a DEBUG message when debug output is enabled.
func (e *Emitter) Debug(text string) error {
	_, err := e.Emit(SeverityDebug, text, nil)

	return err
}

// Notice renders a NOTICE message.
func (e *Emitter) Notice(text string) error {
	_, err := e.Emit(SeverityNotice, text, nil)

	return err
}

// Fatal renders a FATAL message and runs crash handling.
func (e *Emitter) Fatal(text string, frames ...report.Frame) (EmitResult, error) {
	return e.Emit(SeverityFatal, text, nil, frames...)
}

// fatal renders the message, captures the crash report, and writes the
// bug-filing instruction. Failures accumulate instead of aborting: a broken
// sink or full disk must not eat the report.
func (e *Emitter) fatal(msg Message, frames []report.Frame) (EmitResult, error) {
	var errs []error

	err := e.render(msg.Severity, msg.Text)
	if err != nil {
		errs = append(errs, err)
	}

	if len(frames) == 0 && e.frames != nil {
		frames = e.frames()
	}

	rep, instruction, err := e.reporter.Capture(report.Message{
		Time:     msg.Time,
		Metadata: msg.Metadata,
		Severity: msg.Severity.String(),
		Text:     msg.Text,
	}, frames...)
	if err != nil {
		errs = append(errs, err)
	}

	// Without a persisted artifact the instruction points at the console
	// output, so the full report has to be there.
	if rep.Path == "" {
		_, err = io.WriteString(e.out, rep.String())
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %w", ErrSinkWrite, err))
		}
	}

	err = e.writeLine(msg.Severity, instruction)
	if err != nil {
		errs = append(errs, err)
	}

	res := EmitResult{
		Outcome:     OutcomeFatalHandled,
		Message:     msg,
		Report:      rep,
		Instruction: instruction,
	}

	return res, errors.Join(errs...)
}

// render writes one "[SEVERITY] text" line for msg.
func (e *Emitter) render(sev Severity, text string) error {
	return e.writeLine(sev, "["+sev.String()+"] "+text)
}

// writeLine writes line to the sink in the severity's color, or plain when
// the severity has no palette entry.
func (e *Emitter) writeLine(sev Severity, line string) error {
	var err error

	if col, ok := e.colors[sev]; ok {
		_, err = col.Fprintln(e.out, line)
	} else {
		_, err = fmt.Fprintln(e.out, line)
	}

	if err != nil {
		return fmt.Errorf("%w: %w", ErrSinkWrite, err)
	}

	return nil
}

// defaultEmitter backs the package-level emit functions.
var defaultEmitter atomic.Pointer[Emitter]

// Configure builds the package-level emitter used by [Emit] and the
// severity shorthands. It may be called again to reconfigure; emits already
// in flight finish on the previous emitter.
func Configure(cfg *Config, opts ...Option) error {
	e, err := New(cfg, opts...)
	if err != nil {
		return err
	}

	defaultEmitter.Store(e)

	return nil
}

// Default returns the package-level emitter, or nil before [Configure].
func Default() *Emitter {
	return defaultEmitter.Load()
}

// Emit routes one message through the package-level emitter. It returns an
// error wrapping [ErrNotConfigured] before [Configure].
func Emit(severity Severity, text string, metadata map[string]string, frames ...report.Frame) (EmitResult, error) {
	e := defaultEmitter.Load()
	if e == nil {
		return EmitResult{}, fmt.Errorf("%w: call Configure first", ErrNotConfigured)
	}

	return e.Emit(severity, text, metadata, frames...)
}

// Warning renders a WARNING message through the package-level emitter.
func Warning(text string) error {
	_, err := Emit(SeverityWarning, text, nil)

	return err
}

// Info renders an INFO message through the package-level emitter.
func Info(text string) error {
	_, err := Emit(SeverityInfo, text, nil)

	return err
}

// Debug renders a DEBUG message through the package-level emitter when debug
// output is enabled.
func Debug(text string) error {
	_, err := Emit(SeverityDebug, text, nil)

	return err
}

// Notice renders a NOTICE message through the package-level emitter.
func Notice(text string) error {
	_, err := Emit(SeverityNotice, text, nil)

	return err
}

// Fatal renders a FATAL message and runs crash handling through the
// package-level emitter.
func Fatal(text string, frames ...report.Frame) (EmitResult, error) {
	return Emit(SeverityFatal, text, nil, frames...)
}
