package cmd

import (
	"context"
	"testing"

	"parent-reconciler/core/config"
	"parent-reconciler/core/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestConnectUnknownDriver(t *testing.T) {
	cfg := &config.Config{}
	cfg.Search.Driver = "solr"

	b, release, err := connect(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown search driver "solr"`)
	assert.Nil(t, b)
	assert.Nil(t, release)
}

func TestPrintParentsReport(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	candidates := int64(5)

	printParentsReport(zap.New(core), &reconcile.Report{
		Orphans: []int64{20, 30},
		Summary: reconcile.Summary{
			Candidates: &candidates,
			Pages:      2,
			Records:    5,
			Anomalies:  1,
			Orphans:    2,
		},
	})

	require.Equal(t, 3, logs.Len())
	summary := logs.All()[0].ContextMap()
	assert.Equal(t, int64(2), summary["orphans"])
	assert.Equal(t, int64(5), summary["candidates"])
	assert.Equal(t, zapcore.WarnLevel, logs.All()[1].Level)
	assert.Equal(t, []interface{}{int64(20), int64(30)}, logs.All()[2].ContextMap()["keys"])
}
