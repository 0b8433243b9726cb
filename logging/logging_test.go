package logging_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/warp/viability/logging"
)

func TestNew_Levels(t *testing.T) {
	logger, err := logging.New("warn", "json")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	logger, err = logging.New("debug", "console")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNew_Rejects(t *testing.T) {
	_, err := logging.New("loud", "json")
	assert.Error(t, err)

	_, err = logging.New("info", "xml")
	assert.Error(t, err)
}
