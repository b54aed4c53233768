package handlers_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"auto-credit-engine/internal/handlers"
	"auto-credit-engine/internal/utils"
)

func TestLoadDependencies_LoggerFollowsConfig(t *testing.T) {
	previous := utils.Logger
	t.Cleanup(func() { utils.Logger = previous })

	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("DATABASE_URL", "postgres://postgres@127.0.0.1:1/auto_credit?sslmode=disable&connect_timeout=1")

	deps, err := handlers.LoadDependencies(context.Background(), handlers.Options{Registerer: prometheus.NewRegistry()})
	require.NoError(t, err)
	defer deps.Close()

	assert.Equal(t, "warn", deps.Config.LogLevel)
	assert.Nil(t, deps.DB, "unreachable database runs without storage")
	assert.NotNil(t, deps.Service)

	core := utils.GetLogger().Core()
	assert.False(t, core.Enabled(zapcore.InfoLevel))
	assert.True(t, core.Enabled(zapcore.WarnLevel))
	assert.Same(t, utils.GetLogger(), deps.Logger)
}
