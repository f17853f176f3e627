package report

import "time"

// Frame is one entry of caller-supplied stack context.
type Frame struct {
	// Function is the fully qualified function name.
	Function string
	// Location is the source position, typically file:line.
	Location string
}

// Message is the fatal diagnostic a report is about. Severity crosses the
// package boundary as a string so the reporter stays decoupled from the
// router's severity type.
type Message struct {
	// Time is when the message was emitted. A zero Time is replaced by the
	// reporter's clock.
	Time time.Time
	// Metadata carries free-form context, folded into the report's
	// Environment.
	Metadata map[string]string
	// Severity is the severity name, FATAL in normal use.
	Severity string
	// Text is the message body.
	Text string
}

// Report is the structured snapshot captured for one fatal message. Its
// artifact form is rendered by [Report.String] and read back by
// [ParseArtifact].
//
// Create instances with [Reporter.Capture].
type Report struct {
	// Time is when the fatal message was emitted (UTC).
	Time time.Time
	// Environment holds platform and host-supplied key/value context,
	// including the message metadata.
	Environment map[string]string
	// ID uniquely identifies the report and names its artifact.
	ID string
	// Severity is the severity name of the reported message.
	Severity string
	// Text is the fatal message text.
	Text string
	// Path is the artifact location on disk, empty when the report was not
	// persisted.
	Path string
	// Frames is the stack context in the order it was supplied.
	Frames []Frame
}
