package boxlib

import (
	"runtime/debug"
	"strconv"
	"time"
)

// Library version.
const (
	VersionMajor = 2
	VersionMinor = 0
)

// Build stamp, set with -ldflags "-X". When empty the VCS commit time
// recorded by the Go toolchain is used.
var (
	BuildDate string
	BuildTime string
)

// Version returns "boxlib version <major>.<minor> built <date> at <time>".
func Version() string {
	date, clock := buildStamp()
	return "boxlib version " + strconv.Itoa(VersionMajor) + "." + strconv.Itoa(VersionMinor) +
		" built " + date + " at " + clock
}

func buildStamp() (date, clock string) {
	if BuildDate != "" {
		if BuildTime == "" {
			return BuildDate, "unknown"
		}
		return BuildDate, BuildTime
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key != "vcs.time" {
				continue
			}
			if t, err := time.Parse(time.RFC3339, s.Value); err == nil {
				return t.Format("Jan _2 2006"), t.Format("15:04:05")
			}
		}
	}
	return "unknown", "unknown"
}
