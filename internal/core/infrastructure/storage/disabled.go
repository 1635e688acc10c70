package storage

import (
	"context"

	interfaces "github.com/weisyn/connector/pkg/interfaces/infrastructure/storage"
)

// disabledStore 隐私模式后端：始终不可用，读取为空，写入返回 ErrUnavailable
type disabledStore struct{}

var _ interfaces.KVStore = disabledStore{}

// NewDisabled 创建禁用的存储
func NewDisabled() interfaces.KVStore { return disabledStore{} }

func (disabledStore) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (disabledStore) Set(context.Context, string, []byte) error         { return interfaces.ErrUnavailable }
func (disabledStore) Delete(context.Context, string) error              { return nil }
func (disabledStore) IsAvailable() bool                                 { return false }
func (disabledStore) Close() error                                      { return nil }
