package humane

import "time"

// Message is one diagnostic event as emitted. Messages are immutable values;
// the emitter never retains or mutates them after rendering.
type Message struct {
	// Time is when the message was emitted (UTC).
	Time time.Time
	// Metadata carries optional free-form context, such as a module name.
	// For fatal messages it is folded into the crash report's Environment
	// section.
	Metadata map[string]string
	// Text is the message body. Empty text renders as a blank message with
	// the level tag intact.
	Text string
	// Severity classifies the message.
	Severity Severity
}
