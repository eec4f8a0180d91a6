// Package logger provides the shared logging facility for jetlab. It wraps
// logrus so commands can emit plain progress lines by default and structured
// debug output when --verbose is set.
package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

var log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp:       true,
		DisableLevelTruncation: true,
	})
	return l
}

// SetVerbose switches the logger to debug level so Debugf lines become
// visible. Wired to the root --verbose flag.
func SetVerbose(verbose bool) {
	if verbose {
		log.SetLevel(logrus.DebugLevel)
		return
	}
	log.SetLevel(logrus.InfoLevel)
}

// Println logs its arguments at info level.
func Println(args ...interface{}) {
	log.Infoln(args...)
}

// Printf logs a formatted line at info level.
func Printf(format string, args ...interface{}) {
	log.Infof(format, args...)
}

// Warnf logs a formatted line at warning level.
func Warnf(format string, args ...interface{}) {
	log.Warnf(format, args...)
}

// Debugf logs a formatted line at debug level; silent unless SetVerbose(true)
// was called.
func Debugf(format string, args ...interface{}) {
	log.Debugf(format, args...)
}

// Errorf logs a formatted line at error level.
func Errorf(format string, args ...interface{}) {
	log.Errorf(format, args...)
}
