package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phishguard/risk-engine/internal/adapters/storage"
	"github.com/phishguard/risk-engine/internal/config"
	"github.com/phishguard/risk-engine/internal/domain"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "phishguard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestAnalyzeCommand(t *testing.T) {
	path := writeConfig(t, "storage:\n  driver: memory\nlogging:\n  level: error\n")

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"analyze", "--config", path, "http://phishing-example.com/login"})

	require.NoError(t, cmd.Execute())

	var result domain.AnalysisResult
	require.NoError(t, json.NewDecoder(&stdout).Decode(&result))
	assert.Equal(t, "phishing-example.com", result.Domain)
	assert.Equal(t, domain.StatusPhishing, result.Status)
}

func TestAnalyzeCommand_InvalidURL(t *testing.T) {
	path := writeConfig(t, "storage:\n  driver: memory\nlogging:\n  level: error\n")

	var stdout bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"analyze", "--config", path, "not a url"})

	assert.Error(t, cmd.Execute())
	assert.Contains(t, stdout.String(), "Invalid URL")
}

type stubFlusher struct {
	err   error
	calls int
}

func (s *stubFlusher) Flush(ctx context.Context) error {
	s.calls++
	return s.err
}

func TestFlushState(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		expectedLog string
	}{
		{name: "Successful flush logs nothing", err: nil, expectedLog: ""},
		{name: "Failed flush is logged", err: errors.New("disk full"), expectedLog: "Failed to persist state"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := logrus.New()
			logger.SetOutput(&buf)

			f := &stubFlusher{err: tt.err}
			flushState(context.Background(), f, logger)

			assert.Equal(t, 1, f.calls)
			if tt.expectedLog == "" {
				assert.Empty(t, buf.String())
				return
			}
			assert.Contains(t, buf.String(), tt.expectedLog)
			assert.Contains(t, buf.String(), "disk full")
		})
	}
}

func TestNewStorage(t *testing.T) {
	ctx := context.Background()

	mem, err := newStorage(ctx, config.StorageConfig{Driver: config.DriverMemory})
	require.NoError(t, err)
	assert.IsType(t, &storage.MemoryStore{}, mem)

	file, err := newStorage(ctx, config.StorageConfig{Driver: config.DriverFile, Path: filepath.Join(t.TempDir(), "s.json")})
	require.NoError(t, err)
	assert.IsType(t, &storage.FileStore{}, file)
}
