package event

import (
	"testing"

	"github.com/stretchr/testify/assert"

	configtypes "github.com/weisyn/connector/pkg/types"
)

// TestNew 测试配置创建
func TestNew(t *testing.T) {
	t.Run("创建默认配置", func(t *testing.T) {
		config := New(nil)
		assert.NotNil(t, config)
		assert.True(t, config.IsEnabled())
		assert.Equal(t, defaultHistorySize, config.GetHistorySize())
		assert.Equal(t, defaultQueueWarning, config.GetQueueWarning())
	})

	t.Run("用户配置覆盖默认值", func(t *testing.T) {
		enabled := false
		history := 8
		config := New(&configtypes.UserEventConfig{Enabled: &enabled, HistorySize: &history})
		assert.False(t, config.IsEnabled())
		assert.Equal(t, 8, config.GetHistorySize())
		assert.Equal(t, defaultQueueWarning, config.GetQueueWarning())
	})

	t.Run("非法值被忽略", func(t *testing.T) {
		history := -1
		warn := 0
		config := New(&configtypes.UserEventConfig{HistorySize: &history, QueueWarning: &warn})
		assert.Equal(t, defaultHistorySize, config.GetHistorySize())
		assert.Equal(t, defaultQueueWarning, config.GetQueueWarning())
	})
}
