package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebugEnabled(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected bool
	}{
		{"unset", "", false},
		{"one", "1", true},
		{"true", "true", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TS_DEBUG", tt.value)
			assert.Equal(t, tt.expected, DebugEnabled())
		})
	}
}

func TestDebugf(t *testing.T) {
	var buf bytes.Buffer
	Init(&buf, true)
	t.Cleanup(func() { Init(nil, false) })

	t.Setenv("TS_DEBUG", "")
	Debugf("hidden %s\n", "message")
	assert.Empty(t, buf.String())

	t.Setenv("TS_DEBUG", "1")
	Debugf("saving cell %d\n", 4)
	assert.Contains(t, buf.String(), "saving cell 4")
	assert.Contains(t, buf.String(), "level=DEBUG")
}

func TestDebugln(t *testing.T) {
	var buf bytes.Buffer
	Init(&buf, true)
	t.Cleanup(func() { Init(nil, false) })

	t.Setenv("TS_DEBUG", "1")
	Debugln("week", "loaded")
	assert.Contains(t, buf.String(), "week loaded")
}

func TestInit_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	Init(&buf, false)
	t.Cleanup(func() { Init(nil, false) })

	Logger().Info("not shown")
	Logger().Warn("save failed", KeyProject, 3)

	assert.NotContains(t, buf.String(), "not shown")
	assert.Contains(t, buf.String(), "save failed")
	assert.Contains(t, buf.String(), "project_id=3")
}

func TestRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background())
	id := RequestID(ctx)
	require.NotEmpty(t, id)

	_, err := uuid.Parse(id)
	assert.NoError(t, err)
	assert.Equal(t, id, RequestID(WithRequestID(ctx)), "existing ID is kept")
	assert.Empty(t, RequestID(context.Background()))

	var buf bytes.Buffer
	Init(&buf, true)
	t.Cleanup(func() { Init(nil, false) })

	FromContext(ctx).Debug("report generated")
	assert.Contains(t, buf.String(), "request_id="+id)
}
