package sptensor

import (
	"fmt"
	"os"
	"time"
)

// DebugTimer measures one step and prints it to standard error.  A disabled timer
// does nothing.
type DebugTimer struct {
	start   time.Time
	enabled bool
}

// StartDebugTimer starts a timer when enabled is true.
func StartDebugTimer(enabled bool) DebugTimer {
	if !enabled {
		return DebugTimer{}
	}
	return DebugTimer{start: time.Now(), enabled: true}
}

// Print reports the elapsed time since the timer started, tagged with name.
func (t DebugTimer) Print(name string) {
	if !t.enabled {
		return
	}
	d := time.Since(t.start)
	fmt.Fprintf(os.Stderr, "[Timing] %s:\t%d.%09d seconds\n",
		name, int64(d/time.Second), int64(d%time.Second))
}
