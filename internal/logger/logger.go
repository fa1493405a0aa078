// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package logger

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// moduleField defines log field with the module name.
	moduleField = "module"
	// maxAge defines how long rotated log files are kept.
	maxAge = 30 * 24 * time.Hour
	// rotationTime defines how often log file is rotated.
	rotationTime = 24 * time.Hour
)

// Config defines logger settings.
type Config struct {
	Level string
	Path  string // log directory, file output is disabled if empty.
	Name  string // log file name prefix.
}

// Logger writes module entries to the console and to the rotated log file.
type Logger struct {
	log     *logrus.Logger
	rotator *rotatelogs.RotateLogs
}

// New is a constructor for Logger.
func New(config Config, console io.Writer) (*Logger, error) {
	level, err := logrus.ParseLevel(config.Level)
	if err != nil {
		return nil, errors.Wrap(err, "log level")
	}

	log := logrus.New()
	log.SetLevel(level)
	log.SetFormatter(&TextFormatter{})

	logger := &Logger{log: log}
	writers := []io.Writer{console}
	if config.Path != "" {
		pattern := filepath.Join(config.Path, config.Name)
		logger.rotator, err = rotatelogs.New(
			pattern+".%Y%m%d%H%M.log",
			rotatelogs.WithLinkName(pattern+".log"),
			rotatelogs.WithMaxAge(maxAge),
			rotatelogs.WithRotationTime(rotationTime),
		)
		if err != nil {
			return nil, errors.Wrap(err, "log file rotator")
		}

		writers = append(writers, logger.rotator)
	}

	log.SetOutput(io.MultiWriter(writers...))

	return logger, nil
}

// Module returns entry of the module.
func (l *Logger) Module(name string) *logrus.Entry {
	return l.log.WithField(moduleField, name)
}

// Close closes the log file.
func (l *Logger) Close() error {
	if l.rotator == nil {
		return nil
	}

	return l.rotator.Close()
}

// TextFormatter formats entries as a single line: time, level, module, message and fields.
type TextFormatter struct{}

// Format implements logrus.Formatter.
func (f *TextFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer

	module, ok := entry.Data[moduleField].(string)
	if !ok {
		module = "default"
	}

	fmt.Fprintf(&b, "%s [%s] %s: %s", entry.Time.Format("2006-01-02 15:04:05"), entry.Level.String(), module, entry.Message)

	keys := make([]string, 0, len(entry.Data))
	for key := range entry.Data {
		if key != moduleField {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		fmt.Fprintf(&b, " %s=%v", key, entry.Data[key])
	}
	b.WriteByte('\n')

	return b.Bytes(), nil
}
