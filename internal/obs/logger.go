// Package obs wires application logging: rotating file output for the main
// log and an append-only diagnosis transcript log.
package obs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogRotationConfig holds log rotation settings
type LogRotationConfig struct {
	Filename   string
	MaxSize    int  // Maximum size in MB before rotation
	MaxBackups int  // Maximum number of old log files
	MaxAge     int  // Maximum days to retain old log files
	Compress   bool // Compress old log files
}

// DefaultLogRotationConfig returns default log rotation settings
func DefaultLogRotationConfig(logFile string) *LogRotationConfig {
	return &LogRotationConfig{
		Filename:   logFile,
		MaxSize:    10,
		MaxBackups: 10,
		MaxAge:     30,
		Compress:   true,
	}
}

func newRotatingWriter(cfg *LogRotationConfig) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   cfg.Filename,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}
}

// SetupLogging configures logrus to write to both stdout and a rotating log
// file under the given directory.
func SetupLogging(dir string, verbose bool) {
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}

	logFile := filepath.Join(dir, "log", "codexswitch.log")
	logWriter := newRotatingWriter(DefaultLogRotationConfig(logFile))
	logrus.SetOutput(io.MultiWriter(os.Stdout, logWriter))
}

// DiagnosisLog appends diagnostic transcripts to a dedicated rotating file so
// past runs can be reviewed after the fact.
type DiagnosisLog struct {
	mu     sync.Mutex
	writer io.WriteCloser
	now    func() time.Time
}

// NewDiagnosisLog opens the diagnosis log in the given directory.
func NewDiagnosisLog(dir string) *DiagnosisLog {
	return &DiagnosisLog{
		writer: newRotatingWriter(DefaultLogRotationConfig(filepath.Join(dir, "codex_switcher.log"))),
		now:    time.Now,
	}
}

// Append writes one titled block to the log. Errors are reported but never
// block the caller.
func (d *DiagnosisLog) Append(title, detail string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	block := fmt.Sprintf("[%s] %s\n%s\n\n", d.now().Format("2006-01-02 15:04:05"), title, detail)
	if _, err := d.writer.Write([]byte(block)); err != nil {
		logrus.Warnf("failed to write diagnosis log: %v", err)
	}
}

// Close closes the underlying log file.
func (d *DiagnosisLog) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.writer.Close()
}
