package errors

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	assert.NoError(t, Wrap(nil, "failed to open config file"))

	cause := errors.New("permission denied")
	err := Wrap(cause, "failed to open config file")
	require.Error(t, err)
	assert.Equal(t, "failed to open config file: permission denied", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestWrapf(t *testing.T) {
	assert.NoError(t, Wrapf(nil, "invalid value for %s", "plugin.platform"))

	err := Wrapf(ErrConfigValidation, "invalid value for %s", "plugin.platform")
	assert.Equal(t, "invalid value for plugin.platform: invalid configuration", err.Error())
	assert.ErrorIs(t, err, ErrConfigValidation)
}

func TestDetailHelpers(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		contains string
	}{
		{
			name:     "output format",
			err:      ErrInvalidOutputFormatWithDetails("xml"),
			sentinel: ErrInvalidOutputFormat,
			contains: "'xml', must be one of: text, json",
		},
		{
			name:     "log level",
			err:      ErrInvalidLogLevelWithDetails("trace"),
			sentinel: ErrInvalidLogLevel,
			contains: "'trace'",
		},
		{
			name:     "schema version",
			err:      ErrInvalidSchemaVersionWithDetails("2.1", ">= 1.0, < 2.0"),
			sentinel: ErrInvalidSchemaVersion,
			contains: "supported: >= 1.0, < 2.0",
		},
		{
			name:     "duplicate export",
			err:      ErrDuplicateExportWithName("robot_step"),
			sentinel: ErrDuplicateExport,
			contains: "export 'robot_step'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.sentinel)
			assert.Contains(t, tt.err.Error(), tt.contains)
		})
	}
}

func TestIsAs(t *testing.T) {
	cause := &fs.PathError{Op: "open", Path: "plugpub.yaml", Err: fs.ErrPermission}
	err := Wrap(Wrap(cause, "failed to open config file"), "loading configuration")

	assert.True(t, Is(err, fs.ErrPermission))
	assert.False(t, Is(err, ErrConfigParse))

	var pathErr *fs.PathError
	require.True(t, As(err, &pathErr))
	assert.Equal(t, "plugpub.yaml", pathErr.Path)
}
