// Package logger provides leveled, printf-style logging for the server and
// client processes. Console output is colored per level; file output goes
// through a size-rotated log file.
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fatih/color"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogLevel controls which messages a logger emits
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger is a named, leveled logger writing to the console and optionally
// to a rotating log file
type Logger struct {
	name  string
	level LogLevel
	file  *lumberjack.Logger
	mu    sync.Mutex
}

var (
	// Server is the logger used by the server process
	Server = NewLogger("SERVER")
	// Client is the logger used by the client process
	Client = NewLogger("CLIENT")

	levelColors = map[LogLevel]*color.Color{
		DEBUG: color.New(color.FgHiBlack),
		INFO:  color.New(color.FgGreen),
		WARN:  color.New(color.FgYellow),
		ERROR: color.New(color.FgRed, color.Bold),
	}
)

// NewLogger creates a logger with the given name at INFO level
func NewLogger(name string) *Logger {
	return &Logger{
		name:  name,
		level: INFO,
	}
}

// SetGlobalLogLevel sets the level on all package-level loggers
func SetGlobalLogLevel(level LogLevel) {
	Server.SetLevel(level)
	Client.SetLevel(level)
}

// SetLevel changes the minimum level this logger emits
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetFile directs this logger's output to the given file path in addition
// to the console. The file is rotated at 10MB with 3 backups kept for up
// to 7 days.
func (l *Logger) SetFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.file = &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     7, // days
		Compress:   false,
	}
	return nil
}

// InitializeFileLogging points the package-level loggers at per-process
// log files under the given directory
func InitializeFileLogging(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	if err := Server.SetFile(filepath.Join(dir, "server.log")); err != nil {
		return err
	}
	return Client.SetFile(filepath.Join(dir, "client.log"))
}

// Debug logs a message at DEBUG level
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(DEBUG, format, args...)
}

// Info logs a message at INFO level
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(INFO, format, args...)
}

// Warn logs a message at WARN level
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(WARN, format, args...)
}

// Error logs a message at ERROR level
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(ERROR, format, args...)
}

// Fatal logs a message at ERROR level and exits the process
func (l *Logger) Fatal(format string, args ...interface{}) {
	l.log(ERROR, format, args...)
	os.Exit(1)
}

func (l *Logger) log(level LogLevel, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	message := fmt.Sprintf(format, args...)
	line := fmt.Sprintf("[%s] [%s] [%s] %s", timestamp, l.name, level, message)

	if c, ok := levelColors[level]; ok {
		c.Fprintln(os.Stderr, line)
	} else {
		fmt.Fprintln(os.Stderr, line)
	}

	if l.file != nil {
		fmt.Fprintln(l.file, line)
	}
}
