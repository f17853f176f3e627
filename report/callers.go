package report

import (
	"fmt"
	"runtime"
)

// maxFrames bounds the number of stack frames captured by [Callers].
const maxFrames = 64

// Callers returns the current goroutine's call stack as [Frame] values,
// skipping skip frames on top of Callers itself. Pass the result to
// [Reporter.Capture] to include a stack context in the report.
func Callers(skip int) []Frame {
	pcs := make([]uintptr, maxFrames)

	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return nil
	}

	frames := runtime.CallersFrames(pcs[:n])
	out := make([]Frame, 0, n)

	for {
		fr, more := frames.Next()
		if fr.Function != "" {
			out = append(out, Frame{
				Function: fr.Function,
				Location: fmt.Sprintf("%s:%d", fr.File, fr.Line),
			})
		}

		if !more {
			break
		}
	}

	return out
}
