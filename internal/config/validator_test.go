package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/connector/configs"
	"github.com/weisyn/connector/pkg/types"
)

func ptr[T any](v T) *T { return &v }

func TestValidateEmbeddedConfigs(t *testing.T) {
	for _, env := range []string{"dev", "test", "prod"} {
		cfg, err := ParseAppConfig(configs.ForEnvironment(env))
		require.NoError(t, err, env)
		assert.NoError(t, ValidateAppConfig(cfg), env)
	}
}

func TestValidateAppConfigReportsEveryProblem(t *testing.T) {
	cfg := &types.AppConfig{
		Environment: ptr("staging"),
		Connector: &types.UserConnectorConfig{
			NotifyDebounce: ptr("soon"),
			Polling:        &types.UserPollingConfig{Intervals: []string{"1s", "0s"}},
			Authenticity:   &types.UserAuthenticityConfig{Threshold: ptr(1.5)},
			Clusters: []types.UserClusterConfig{
				{ID: "solana:mainnet"},
				{ID: "solana:mainnet"},
			},
			DefaultCluster: ptr("solana:devnet"),
		},
		Storage: &types.UserStorageConfig{Backend: ptr("redis")},
		API:     &types.UserAPIConfig{ListenAddr: ptr("localhost")},
	}

	err := ValidateAppConfig(cfg)
	require.Error(t, err)
	var verrs *ValidationErrors
	require.ErrorAs(t, err, &verrs)

	fields := make([]string, 0, len(verrs.Errors))
	for _, e := range verrs.Errors {
		var ve *ValidationError
		require.ErrorAs(t, e, &ve)
		fields = append(fields, ve.Field)
	}
	assert.ElementsMatch(t, []string{
		"environment",
		"connector.notify_debounce",
		"connector.polling.intervals[1]",
		"connector.authenticity.threshold",
		"connector.clusters[1].id",
		"connector.default_cluster",
		"storage.redis.addr",
		"api.listen_addr",
	}, fields)
}

func TestValidateNil(t *testing.T) {
	assert.NoError(t, ValidateAppConfig(nil))
	assert.NoError(t, ValidateAppConfig(&types.AppConfig{}))
}
