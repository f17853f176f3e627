// Package report captures and persists crash reports for fatal diagnostics.
//
// A [Reporter] turns a fatal [Message] into a [Report]: a deterministic
// snapshot carrying a unique ID, the crash time, the message, optional stack
// context, and an environment table. [Report.String] serializes it as a
// labeled plain-text artifact with fixed section order, and [ParseArtifact]
// reads one back. Alongside each report the Reporter renders instruction
// text telling the user where to file the bug.
//
// Typical usage creates a [Reporter] once and captures on crash:
//
//	rep, err := report.New(report.Config{
//	    Dir: "/var/log/myapp",
//	    URL: "https://github.com/example/myapp/issues",
//	})
//
//	crash, instruction, err := rep.Capture(report.Message{
//	    Severity: "FATAL",
//	    Text:     "index out of range",
//	}, report.Callers(0)...)
//
// Persistence is best-effort: when the artifact cannot be written, Capture
// returns an error wrapping [ErrPersist] while the in-memory [Report] and
// the instruction text remain valid.
package report
