// Package telemetry manages per-run log sessions and error tracing.
package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/robalyx/stylist/internal/setup/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ServiceType represents the type of service being initialized.
type ServiceType int

const (
	ServiceAnalyze ServiceType = iota
	ServiceBatch
	ServiceServer
	ServiceHistory
)

// String returns the component name of the service.
func (s ServiceType) String() string {
	switch s {
	case ServiceAnalyze:
		return "analyze"
	case ServiceBatch:
		return "batch"
	case ServiceServer:
		return "server"
	case ServiceHistory:
		return "history"
	default:
		return "unknown"
	}
}

// GetRequestTimeout returns the model request timeout for the given service type.
func (s ServiceType) GetRequestTimeout(cfg *config.Config) time.Duration {
	timeout := cfg.Gemini.RequestTimeout
	if s == ServiceServer {
		// Keep requests within typical proxy read timeouts
		timeout = min(timeout, 60000)
	}

	return time.Duration(timeout) * time.Millisecond
}

// sessionDirLayout is the timestamp format of session directories.
const sessionDirLayout = "2006-01-02_15-04-05"

// Manager handles the creation and management of log files and directories.
// Each run writes into its own timestamped session directory.
type Manager struct {
	instanceID        string // Unique identifier for this program instance
	componentName     string // Component identifier for this instance
	currentSessionDir string // Path to the current session's log directory
	logDir            string // Base directory for all logs
	level             string // Logging level (debug, info, warn, error)
	maxLogsToKeep     int    // Maximum number of log sessions to retain
	maxLogLines       int    // Maximum number of lines to keep in each log file
	writers           []*lineCapWriter
}

// NewManager creates a new Manager instance.
func NewManager(serviceType ServiceType, logDir string, debugCfg *config.Debug) *Manager {
	return &Manager{
		instanceID:    uuid.New().String(),
		componentName: serviceType.String(),
		logDir:        logDir,
		level:         debugCfg.LogLevel,
		maxLogsToKeep: debugCfg.MaxLogsToKeep,
		maxLogLines:   debugCfg.MaxLogLines,
	}
}

// GetLogger initializes the main application logger for the session.
func (lm *Manager) GetLogger() (*zap.Logger, error) {
	if err := lm.setupLogDirectories(); err != nil {
		return nil, err
	}

	logger, err := lm.initLogger(filepath.Join(lm.currentSessionDir, lm.componentName+".log"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize main logger: %w", err)
	}

	return logger.With(zap.String("instanceID", lm.instanceID)), nil
}

// GetArtifactDir returns a directory inside the session for generated files.
func (lm *Manager) GetArtifactDir(name string) (string, error) {
	dir := filepath.Join(lm.getOrCreateSessionDir(), "artifacts", name)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create artifact directory: %w", err)
	}

	return dir, nil
}

// GetCurrentSessionDir returns the current session directory.
func (lm *Manager) GetCurrentSessionDir() string {
	return lm.getOrCreateSessionDir()
}

// GetInstanceID returns the unique instance identifier for this program run.
func (lm *Manager) GetInstanceID() string {
	return lm.instanceID
}

// Stop flushes every log file opened by the manager.
func (lm *Manager) Stop() {
	for _, w := range lm.writers {
		_ = w.Sync()
	}
}

// setupLogDirectories creates the base directory, rotates old sessions and
// creates a new session directory.
func (lm *Manager) setupLogDirectories() error {
	if err := os.MkdirAll(lm.logDir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	if err := lm.rotateLogSessions(); err != nil {
		return fmt.Errorf("failed to rotate log sessions: %w", err)
	}

	lm.currentSessionDir = filepath.Join(lm.logDir, time.Now().Format(sessionDirLayout))
	if err := os.MkdirAll(lm.currentSessionDir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	return nil
}

// getOrCreateSessionDir returns the current session directory or creates a new one.
// Falls back to base log directory if creation fails.
func (lm *Manager) getOrCreateSessionDir() string {
	if lm.currentSessionDir != "" {
		return lm.currentSessionDir
	}

	sessionDir := filepath.Join(lm.logDir, time.Now().Format(sessionDirLayout))
	if err := os.MkdirAll(sessionDir, os.ModePerm); err != nil {
		return lm.logDir
	}

	lm.currentSessionDir = sessionDir
	return sessionDir
}

// initLogger creates a zap logger writing to a line-capped file and
// recording errors as spans.
func (lm *Manager) initLogger(path string) (*zap.Logger, error) {
	zapLevel, err := zapcore.ParseLevel(lm.level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	writer, err := openLineCapWriter(path, lm.maxLogLines)
	if err != nil {
		return nil, err
	}
	lm.writers = append(lm.writers, writer)

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(writer), zapLevel),
		NewCore(zapLevel),
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

	// Leave room for the session about to be created
	keep := max(lm.maxLogsToKeep-1, 0)
	if len(sessions) <= keep {
		return nil
	}

	sort.Slice(sessions, func(i, j int) bool {
		iInfo, _ := os.Stat(sessions[i])
		jInfo, _ := os.Stat(sessions[j])

		return iInfo.ModTime().Before(jInfo.ModTime())
	})

	for _, session := range sessions[:len(sessions)-keep] {
		if err := os.RemoveAll(session); err != nil {
			return err
		}
	}

	return nil
}
