package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/robalyx/steamfriends/internal/setup/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// sessionLayout names each session directory after its start time.
const sessionLayout = "2006-01-02_15-04-05"

// Manager handles the creation of log files and session directories.
// Every run gets its own timestamped directory under logDir.
type Manager struct {
	instanceID        string // Unique identifier for this program instance
	currentSessionDir string // Path to the current session's log directory
	logDir            string // Base directory for all logs
	level             string // Logging level (debug, info, warn, error)
	maxLogsToKeep     int    // Maximum number of log sessions to retain
	files             []*os.File
}

// NewManager creates a new Manager instance.
func NewManager(logDir string, debugCfg *config.Debug) *Manager {
	return &Manager{
		instanceID:    uuid.New().String(),
		logDir:        logDir,
		level:         debugCfg.LogLevel,
		maxLogsToKeep: debugCfg.MaxLogsToKeep,
	}
}

// GetLogger prepares the session directory and returns the main logger.
// Output goes to main.log in the session directory and to stderr.
func (lm *Manager) GetLogger() (*zap.Logger, error) {
	if err := lm.setupLogDirectories(); err != nil {
		return nil, err
	}

	logger, err := lm.initLogger(filepath.Join(lm.currentSessionDir, "main.log"), true)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize main logger: %w", err)
	}

	return logger.With(zap.String("instanceID", lm.instanceID)), nil
}

// GetWorkerLogger creates a logger for background workers.
// Each worker gets its own log file in the session directory.
func (lm *Manager) GetWorkerLogger(name string) *zap.Logger {
	if lm.currentSessionDir == "" {
		return zap.NewNop()
	}

	logger, err := lm.initLogger(filepath.Join(lm.currentSessionDir, name+".log"), false)
	if err != nil {
		return zap.NewNop()
	}

	return logger
}

// GetCurrentSessionDir returns the current session directory.
func (lm *Manager) GetCurrentSessionDir() string {
	return lm.currentSessionDir
}

// GetInstanceID returns the unique instance identifier for this program run.
func (lm *Manager) GetInstanceID() string {
	return lm.instanceID
}

// Close closes every log file opened by the manager.
func (lm *Manager) Close() {
	for _, f := range lm.files {
		_ = f.Close()
	}
	lm.files = nil
}

// setupLogDirectories ensures the base directory exists, removes old sessions
// and creates a new session directory.
func (lm *Manager) setupLogDirectories() error {
	if err := os.MkdirAll(lm.logDir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	if err := lm.rotateLogSessions(); err != nil {
		return fmt.Errorf("failed to rotate log sessions: %w", err)
	}

	lm.currentSessionDir = filepath.Join(lm.logDir, time.Now().Format(sessionLayout))
	if err := os.MkdirAll(lm.currentSessionDir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	return nil
}

// initLogger creates a zap logger writing to path, optionally teed to stderr.
func (lm *Manager) initLogger(path string, withConsole bool) (*zap.Logger, error) {
	zapLevel, err := zapcore.ParseLevel(lm.level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("cannot open log file %s: %w", path, err)
	}
	lm.files = append(lm.files, file)

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	encoder := zapcore.NewConsoleEncoder(encoderConfig)

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.AddSync(file), zapLevel),
	}
	if withConsole {
		cores = append(cores, zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), zapLevel))
	}

	return zap.New(
		zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	), nil
}

// rotateLogSessions removes the oldest sessions beyond maxLogsToKeep.
func (lm *Manager) rotateLogSessions() error {
	sessions, err := filepath.Glob(filepath.Join(lm.logDir, "*"))
	if err != nil {
		return err
	}

	if lm.maxLogsToKeep <= 0 || len(sessions) < lm.maxLogsToKeep {
		return nil
	}

	sort.Slice(sessions, func(i, j int) bool {
		iInfo, iErr := os.Stat(sessions[i])
		jInfo, jErr := os.Stat(sessions[j])
		if iErr != nil || jErr != nil {
			return sessions[i] < sessions[j]
		}

		return iInfo.ModTime().Before(jInfo.ModTime())
	})

	// Leave room for the session about to be created
	toDelete := len(sessions) - lm.maxLogsToKeep + 1
	for i := range toDelete {
		if err := os.RemoveAll(sessions[i]); err != nil {
			return err
		}
	}

	return nil
}
