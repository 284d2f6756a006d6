package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const maxBufferSize = 1000

var (
	instance *Logger
	once     sync.Once
)

type LogEntry struct {
	Timestamp time.Time
	Message   string
}

type Logger struct {
	file    *os.File
	logger  *log.Logger
	mu      sync.Mutex
	buffer  []LogEntry
	enabled bool
}

// Init opens the log file sink. An empty path keeps logs in memory only.
func Init(logPath string) error {
	var initErr error
	once.Do(func() {
		if logPath == "" {
			return
		}

		if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
			initErr = fmt.Errorf("failed to create log directory: %w", err)
			return
		}

		file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			initErr = fmt.Errorf("failed to open log file: %w", err)
			return
		}

		instance = &Logger{
			file:    file,
			logger:  log.New(file, "", log.LstdFlags),
			buffer:  make([]LogEntry, 0, maxBufferSize),
			enabled: true,
		}
	})

	EnsureInit()
	return initErr
}

func EnsureInit() {
	if instance == nil {
		instance = &Logger{
			buffer:  make([]LogEntry, 0, maxBufferSize),
			enabled: false,
		}
	}
}

func Close() error {
	if instance != nil && instance.file != nil {
		return instance.file.Close()
	}
	return nil
}

func write(message string) {
	EnsureInit()
	instance.mu.Lock()
	defer instance.mu.Unlock()

	if len(instance.buffer) >= maxBufferSize {
		instance.buffer = instance.buffer[1:]
	}
	instance.buffer = append(instance.buffer, LogEntry{
		Timestamp: time.Now(),
		Message:   message,
	})

	if instance.enabled && instance.logger != nil {
		instance.logger.Println(message)
	}
}

func GetLogs() []LogEntry {
	EnsureInit()
	instance.mu.Lock()
	defer instance.mu.Unlock()

	logs := make([]LogEntry, len(instance.buffer))
	copy(logs, instance.buffer)
	return logs
}

func LogFileOpen(path string) {
	write(fmt.Sprintf("[FILE_OPEN] %s", path))
}

func LogFileWrite(path string) {
	write(fmt.Sprintf("[FILE_WRITE] %s", path))
}

func LogError(operation, subject string, err error) {
	write(fmt.Sprintf("[ERROR] %s: %s - %v", operation, subject, err))
}

// LogTask records a background task transition, keyed by task id.
func LogTask(kind, id, state string) {
	write(fmt.Sprintf("[TASK] %s %s %s", kind, id, state))
}

func Log(message string, args ...interface{}) {
	write(fmt.Sprintf("[INFO] "+message, args...))
}
