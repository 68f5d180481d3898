//  Copyright (c) 2014 Couchbase, Inc.

// Package log is the diagnostic facility for pbheap. Importing this
// package initializes a console logger at info level; applications
// can supply their own Logger{} implementation via SetLogger. The
// allocator core emits only fatal messages and, in debug builds,
// per-call traces - it never allocates from the heap it manages
// while logging.
package log

import "io"
import "os"
import "fmt"
import "time"
import "strings"

func init() {
	setts := map[string]interface{}{
		"log.level": "info",
		"log.file":  "",
	}
	SetLogger(nil, setts)
}

// Logger interface for pbheap logging, applications can supply a
// logger object implementing this interface or pbheap will fall
// back to the defaultLogger{}.
type Logger interface {
	SetLogLevel(string)
	Fatalf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Infof(format string, v ...interface{})
	Verbosef(format string, v ...interface{})
	Debugf(format string, v ...interface{})
	Tracef(format string, v ...interface{})
	Printlf(loglevel LogLevel, format string, v ...interface{})
}

// LogLevel defines pbheap log level.
type LogLevel int

const (
	logLevelIgnore LogLevel = iota + 1
	logLevelFatal
	logLevelError
	logLevelWarn
	logLevelInfo
	logLevelVerbose
	logLevelDebug
	logLevelTrace
)

var log Logger // object used by pbheap components for logging.

// SetLogger to integrate pbheap logging with application logging.
// importing this package will initialize the logger with info level
// logging to console.
func SetLogger(logger Logger, setts map[string]interface{}) Logger {
	if logger != nil {
		log = logger
		return log
	}

	var err error
	level := string2logLevel(setts["log.level"].(string))
	logfd := os.Stderr
	if logfile := setts["log.file"].(string); logfile != "" {
		logfd, err = os.OpenFile(logfile, os.O_RDWR|os.O_APPEND, 0660)
		if err != nil {
			if logfd, err = os.Create(logfile); err != nil {
				panic(err)
			}
		}
	}
	log = &defaultLogger{level: level, output: logfd}
	return log
}

// defaultLogger with default log-file as os.Stderr and, default
// log-level as logLevelInfo. Applications can supply a Logger{}
// object when instantiating a Heap.
type defaultLogger struct {
	level  LogLevel
	output io.Writer
}

func (l *defaultLogger) SetLogLevel(level string) {
	l.level = string2logLevel(level)
}

func (l *defaultLogger) Fatalf(format string, v ...interface{}) {
	l.Printlf(logLevelFatal, format, v...)
}

func (l *defaultLogger) Errorf(format string, v ...interface{}) {
	l.Printlf(logLevelError, format, v...)
}

func (l *defaultLogger) Warnf(format string, v ...interface{}) {
	l.Printlf(logLevelWarn, format, v...)
}

func (l *defaultLogger) Infof(format string, v ...interface{}) {
	l.Printlf(logLevelInfo, format, v...)
}

func (l *defaultLogger) Verbosef(format string, v ...interface{}) {
	l.Printlf(logLevelVerbose, format, v...)
}

func (l *defaultLogger) Debugf(format string, v ...interface{}) {
	l.Printlf(logLevelDebug, format, v...)
}

func (l *defaultLogger) Tracef(format string, v ...interface{}) {
	l.Printlf(logLevelTrace, format, v...)
}

func (l *defaultLogger) Printlf(level LogLevel, format string, v ...interface{}) {
	if l.canlog(level) {
		ts := time.Now().Format("2006-01-02T15:04:05.999Z-07:00")
		fmt.Fprintf(l.output, ts+" ["+level.String()+"] "+format, v...)
	}
}

func (l *defaultLogger) canlog(level LogLevel) bool {
	if level <= l.level {
		return true
	}
	return false
}

func (l LogLevel) String() string {
	switch l {
	case logLevelIgnore:
		return "Ignor"
	case logLevelFatal:
		return "Fatal"
	case logLevelError:
		return "Error"
	case logLevelWarn:
		return "Warng"
	case logLevelInfo:
		return "Infom"
	case logLevelVerbose:
		return "Verbs"
	case logLevelDebug:
		return "Debug"
	case logLevelTrace:
		return "Trace"
	}
	panic("unexpected log level") // should never reach here
}

func string2logLevel(s string) LogLevel {
	s = strings.ToLower(s)
	switch s {
	case "ignore":
		return logLevelIgnore
	case "fatal":
		return logLevelFatal
	case "error":
		return logLevelError
	case "warn":
		return logLevelWarn
	case "info":
		return logLevelInfo
	case "verbose":
		return logLevelVerbose
	case "debug":
		return logLevelDebug
	case "trace":
		return logLevelTrace
	}
	panic("unexpected log level") // should never reach here
}

// Fatalf emits the message at fatal level and terminates the process
// with a non-zero status. Does not return. The allocator calls this
// when the initial region reservation fails, a condition it cannot
// recover from.
func Fatalf(format string, v ...interface{}) {
	log.Printlf(logLevelFatal, format, v...)
	os.Exit(1)
}

func Errorf(format string, v ...interface{}) {
	log.Printlf(logLevelError, format, v...)
}

func Warnf(format string, v ...interface{}) {
	log.Printlf(logLevelWarn, format, v...)
}

func Infof(format string, v ...interface{}) {
	log.Printlf(logLevelInfo, format, v...)
}

func Verbosef(format string, v ...interface{}) {
	log.Printlf(logLevelVerbose, format, v...)
}

func Debugf(format string, v ...interface{}) {
	log.Printlf(logLevelDebug, format, v...)
}

func Tracef(format string, v ...interface{}) {
	log.Printlf(logLevelTrace, format, v...)
}
