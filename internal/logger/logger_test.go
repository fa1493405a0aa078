// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package logger_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/BoostyLabs/etcher/internal/logger"
)

func TestTextFormatter(t *testing.T) {
	formatter := &logger.TextFormatter{}
	at := time.Date(2024, 4, 20, 0, 9, 27, 0, time.UTC)

	tests := []struct {
		name     string
		entry    *logrus.Entry
		expected string
	}{
		{
			name:     "without module",
			entry:    &logrus.Entry{Time: at, Level: logrus.InfoLevel, Message: "started", Data: logrus.Fields{}},
			expected: "2024-04-20 00:09:27 [info] default: started\n",
		},
		{
			name: "module and sorted fields",
			entry: &logrus.Entry{Time: at, Level: logrus.WarnLevel, Message: "waiting", Data: logrus.Fields{
				"module":        "etching",
				"rune":          "UNCOMMON•GOODS",
				"confirmations": 2,
			}},
			expected: "2024-04-20 00:09:27 [warning] etching: waiting confirmations=2 rune=UNCOMMON•GOODS\n",
		},
		{
			name:     "error field",
			entry:    &logrus.Entry{Time: at, Level: logrus.ErrorLevel, Message: "failed", Data: logrus.Fields{logrus.ErrorKey: errors.New("boom")}},
			expected: "2024-04-20 00:09:27 [error] default: failed error=boom\n",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			b, err := formatter.Format(test.entry)
			require.NoError(t, err)
			require.Equal(t, test.expected, string(b))
		})
	}
}

func TestLogger(t *testing.T) {
	t.Run("console and file", func(t *testing.T) {
		var (
			console bytes.Buffer
			dir     = t.TempDir()
		)

		log, err := logger.New(logger.Config{Level: "debug", Path: dir, Name: "etcher"}, &console)
		require.NoError(t, err)

		log.Module("etching").WithField("rune", "UNCOMMON•GOODS").Debug("commit transaction broadcast")
		require.NoError(t, log.Close())

		require.Contains(t, console.String(), "[debug] etching: commit transaction broadcast rune=UNCOMMON•GOODS")

		files, err := filepath.Glob(filepath.Join(dir, "etcher.*.log"))
		require.NoError(t, err)
		require.Len(t, files, 1)

		content, err := os.ReadFile(files[0])
		require.NoError(t, err)
		require.Equal(t, console.String(), string(content))
	})

	t.Run("level filters entries", func(t *testing.T) {
		var console bytes.Buffer

		log, err := logger.New(logger.Config{Level: "warn"}, &console)
		require.NoError(t, err)
		defer func() { require.NoError(t, log.Close()) }()

		log.Module("rpc").Info("hidden")
		log.Module("rpc").Warn("shown")

		require.NotContains(t, console.String(), "hidden")
		require.Contains(t, console.String(), "[warning] rpc: shown")
	})

	t.Run("invalid level", func(t *testing.T) {
		_, err := logger.New(logger.Config{Level: "loud"}, &bytes.Buffer{})
		require.Error(t, err)
	})
}
