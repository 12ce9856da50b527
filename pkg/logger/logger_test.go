package logger

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomFormatter_Format(t *testing.T) {
	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Time:    time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC),
		Level:   logrus.WarnLevel,
		Message: "lookup failed",
		Data:    logrus.Fields{"food": "eggs", "attempt": 1},
	}

	out, err := (&CustomFormatter{}).Format(entry)
	require.NoError(t, err)
	assert.Equal(t, "[2024-05-01 08:30:00] [WARN] [] lookup failed attempt=1 food=eggs\n", string(out))
}

func TestInitLogger_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "run.log")
	require.NoError(t, InitLogger("debug", path))
	t.Cleanup(func() { Log = logrus.New() })

	assert.Equal(t, logrus.DebugLevel, Log.GetLevel())
	Log.Info("hello")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[INFO]")
	assert.Contains(t, string(data), "logger_test.go")
	assert.Contains(t, string(data), "hello")
}

func TestInitLogger_BadLevelFallsBackToInfo(t *testing.T) {
	require.NoError(t, InitLogger("loud", ""))
	t.Cleanup(func() { Log = logrus.New() })
	assert.Equal(t, logrus.InfoLevel, Log.GetLevel())
}
