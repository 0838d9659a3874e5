package audit

import (
	"context"
	"testing"

	"github.com/dropDatabas3/authbridge/internal/observability/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLog(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx := logger.ToContext(context.Background(), zap.New(core).With(logger.RequestID("r1")))

	Log(ctx, EventSignOnSucceeded, logger.AuthMethod("V5_MD5"))

	require.Equal(t, 1, logs.Len())
	e := logs.All()[0]
	assert.Equal(t, "audit", e.LoggerName)
	assert.Equal(t, EventSignOnSucceeded, e.Message)
	m := e.ContextMap()
	assert.Equal(t, "signon.succeeded", m["event"])
	assert.Equal(t, "V5_MD5", m["auth_method"])
	assert.Equal(t, "r1", m["request_id"])
}
