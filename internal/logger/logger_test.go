package logger

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatLog(t *testing.T) {
	b, err := formatLog(LL_ERROR, "scan failed", 0, "watcher.go", 42, "chain", "BSC", "error", "timeout")
	require.NoError(t, err)

	var msg LogMessage
	require.NoError(t, json.Unmarshal(b, &msg))

	assert.Equal(t, "scan failed", msg.Message)
	assert.Equal(t, "ERROR", msg.LogLevel)
	assert.Equal(t, "BSC", msg.Args["chain"])
	assert.Equal(t, 42, msg.Source.Line)
}

func TestFormatLogRejectsBadArgs(t *testing.T) {
	_, err := formatLog(LL_INFO, "x", 0, "f.go", 1, 123, "value")
	assert.Error(t, err)

	_, err = formatLog(LL_INFO, "x", 0, "f.go", 1, "dangling")
	assert.Error(t, err)
}

func TestGenErrorId(t *testing.T) {
	id := GenErrorId()
	assert.NotEqual(t, NA, id)
	assert.Len(t, id, 36)
}
