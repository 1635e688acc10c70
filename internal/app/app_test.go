package app

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/connector/internal/core/connector/registry"
	corelog "github.com/weisyn/connector/internal/core/infrastructure/log"
	"github.com/weisyn/connector/internal/core/simwallet"
	"github.com/weisyn/connector/pkg/types"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func testConfig() *types.AppConfig {
	return &types.AppConfig{
		Environment: strPtr("test"),
		Log:         &types.UserLogConfig{Level: strPtr("error"), FilePath: strPtr("stderr")},
		Connector: &types.UserConnectorConfig{
			NotifyDebounce:  strPtr("1ms"),
			SecondPassDelay: strPtr("0s"),
			AutoConnect:     &types.UserAutoConnectConfig{Enabled: boolPtr(false)},
		},
		Storage: &types.UserStorageConfig{Backend: strPtr("memory")},
		API: &types.UserAPIConfig{
			Enabled:    boolPtr(true),
			ListenAddr: strPtr("127.0.0.1:0"),
		},
	}
}

func TestBootstrapServesEngineAndAPI(t *testing.T) {
	sim := simwallet.MustNew(simwallet.Options{Name: "Phantom"})
	reg := registry.New()
	defer reg.Close()
	reg.Register(sim)

	a, err := BootstrapApp(WithAppConfig(testConfig()), WithWalletRegistry(reg))
	require.NoError(t, err)
	defer func() { assert.NoError(t, a.Stop()) }()

	require.Eventually(t, func() bool { return len(a.Engine().Wallets()) == 1 }, time.Second, 10*time.Millisecond)
	require.NoError(t, a.Engine().Connect(context.Background(), "Phantom"))
	assert.Equal(t, sim.Address(0), a.Engine().Snapshot().SelectedAccount)

	require.NotEmpty(t, a.APIAddr())
	resp, err := http.Get("http://" + a.APIAddr() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestBootstrapWithoutAPI(t *testing.T) {
	a, err := BootstrapApp(WithAppConfig(testConfig()), WithoutAPI())
	require.NoError(t, err)
	defer a.Stop()

	assert.Empty(t, a.APIAddr())
	assert.NotNil(t, a.Engine().Snapshot())
}

func TestStopReleasesGlobalLogger(t *testing.T) {
	a, err := BootstrapApp(WithAppConfig(testConfig()), WithoutAPI())
	require.NoError(t, err)

	assert.NotNil(t, corelog.GetLogger())
	require.NoError(t, a.Stop())
	assert.Nil(t, corelog.GetLogger())
}

func TestBootstrapRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Storage.Backend = strPtr("floppy")

	_, err := BootstrapApp(WithAppConfig(cfg))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.backend")
}

func TestEmbeddedConfigTakesPrecedenceOverFile(t *testing.T) {
	opts := newOptions(
		WithConfigFile("/does/not/exist.json"),
		WithEmbeddedConfig([]byte(`{"app_name":"embedded","api":{"enabled":true}}`)),
		WithoutAPI(),
	)
	cfg, err := resolveConfig(opts)
	require.NoError(t, err)
	assert.Equal(t, "embedded", *cfg.AppName)
	assert.False(t, *cfg.API.Enabled)
}
