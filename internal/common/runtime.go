package common

import (
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Runtime profiles by CPU count. Executions hold a process-wide write lock, so
// extra procs mostly serve concurrent quotes and HTTP.
const (
	smallServerGOGC     = 200
	smallServerMemLimit = 1 * 1024 * 1024 * 1024

	largeServerGOGC     = 400
	largeServerMemLimit = 4 * 1024 * 1024 * 1024
)

func detectServerProfile() (gogc int, memLimit int64, maxProcs int) {
	cpus := runtime.NumCPU()
	if cpus <= 2 {
		return smallServerGOGC, smallServerMemLimit, 1
	}
	return largeServerGOGC, largeServerMemLimit, cpus / 2
}

// InitRuntime applies GOGC, GOMAXPROCS and GOMEMLIMIT defaults for the
// detected profile. Values already set in the environment win; a gogc of -1
// in the log line means GOGC came from the environment.
func InitRuntime() {
	gogc, memLimit, maxProcs := detectServerProfile()

	if os.Getenv("GOGC") == "" {
		debug.SetGCPercent(gogc)
	} else {
		gogc = -1
	}
	if os.Getenv("GOMAXPROCS") == "" {
		runtime.GOMAXPROCS(maxProcs)
	}
	if os.Getenv("GOMEMLIMIT") == "" {
		debug.SetMemoryLimit(memLimit)
	}

	log.Info().
		Int("num_cpu", runtime.NumCPU()).
		Int("gomaxprocs", runtime.GOMAXPROCS(0)).
		Int("gogc", gogc).
		Str("go_version", runtime.Version()).
		Msg("[runtime] runtime settings applied")
}

// ParseLogLevel maps LOG_LEVEL values such as "INFO" or "debug" to a zerolog
// level, falling back to info.
func ParseLogLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
