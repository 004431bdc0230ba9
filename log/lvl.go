// Package log provides the leveled debug-logging surface used throughout
// the simulator: a numbered verbosity level (Lvl1 being the least
// chatty) gated by a single global threshold, plus Warn/Error/Fatal for
// unconditional output. It is a thin façade over logrus, so the rest of
// the codebase never imports logrus directly.
package log

import (
	"fmt"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	mu           sync.Mutex
	debugVisible = 1
	logger       = logrus.New()
)

func init() {
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
}

// SetDebugVisible sets the verbosity threshold: messages logged at a level
// higher than this are discarded.
func SetDebugVisible(lvl int) {
	mu.Lock()
	defer mu.Unlock()
	debugVisible = lvl
}

// DebugVisible returns the current verbosity threshold.
func DebugVisible() int {
	mu.Lock()
	defer mu.Unlock()
	return debugVisible
}

func visible(lvl int) bool {
	mu.Lock()
	defer mu.Unlock()
	return lvl <= debugVisible
}

func lvl(n int, args ...interface{}) {
	if !visible(n) {
		return
	}
	logger.Infof("%d : %s", n, fmt.Sprintln(args...))
}

func lvlf(n int, format string, args ...interface{}) {
	if !visible(n) {
		return
	}
	logger.Infof("%d : %s", n, fmt.Sprintf(format, args...))
}

// Lvl1 through Lvl5 log at increasing verbosity; Lvl1 is shown by default.
func Lvl1(args ...interface{}) { lvl(1, args...) }
func Lvl2(args ...interface{}) { lvl(2, args...) }
func Lvl3(args ...interface{}) { lvl(3, args...) }
func Lvl4(args ...interface{}) { lvl(4, args...) }
func Lvl5(args ...interface{}) { lvl(5, args...) }

// Lvlf1 through Lvlf5 are the Printf-style variants.
func Lvlf1(format string, args ...interface{}) { lvlf(1, format, args...) }
func Lvlf2(format string, args ...interface{}) { lvlf(2, format, args...) }
func Lvlf3(format string, args ...interface{}) { lvlf(3, format, args...) }
func Lvlf4(format string, args ...interface{}) { lvlf(4, format, args...) }
func Lvlf5(format string, args ...interface{}) { lvlf(5, format, args...) }

// Warn logs a warning unconditionally of the debug-visible threshold.
func Warn(args ...interface{}) {
	logger.Warn(fmt.Sprintln(args...))
}

// Error logs an error unconditionally of the debug-visible threshold.
func Error(args ...interface{}) {
	logger.Error(fmt.Sprintln(args...))
}

// Errorf is the Printf-style variant of Error.
func Errorf(format string, args ...interface{}) {
	logger.Error(fmt.Sprintf(format, args...))
}

// Print always logs, regardless of level.
func Print(args ...interface{}) {
	logger.Info(fmt.Sprintln(args...))
}

// Fatal logs the message and terminates the process.
func Fatal(args ...interface{}) {
	logger.Fatal(fmt.Sprintln(args...))
}

// ErrFatal calls Fatal if err is non-nil, else is a no-op. It collapses
// "if err != nil { fatal }" at call sites that can't recover.
func ErrFatal(err error, args ...interface{}) {
	if err == nil {
		return
	}
	all := append(args, err)
	logger.Fatal(fmt.Sprintln(all...))
}
