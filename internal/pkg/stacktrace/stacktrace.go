package stacktrace

import (
	"runtime"
	"strconv"
	"strings"
)

const maxDepth = 64

// Internal lists the caller's frames that belong to this module's internal
// packages as "internal/pkg/file.go:line", innermost first. Called from a
// deferred recover it includes the frames that panicked.
func Internal(skip int) []string {
	pcs := make([]uintptr, maxDepth)
	n := runtime.Callers(skip+2, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	var paths []string
	for {
		frame, more := frames.Next()
		if i := strings.Index(frame.File, "/internal/"); i >= 0 {
			paths = append(paths, frame.File[i+1:]+":"+strconv.Itoa(frame.Line))
		}
		if !more {
			return paths
		}
	}
}
