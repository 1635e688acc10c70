package storage

import (
	"context"

	"go.uber.org/fx"

	storageconfig "github.com/weisyn/connector/internal/config/storage"
	"github.com/weisyn/connector/pkg/interfaces/config"
	"github.com/weisyn/connector/pkg/interfaces/infrastructure/log"
	interfaces "github.com/weisyn/connector/pkg/interfaces/infrastructure/storage"
)

// ModuleParams 定义存储模块的依赖参数
type ModuleParams struct {
	fx.In

	Provider  config.Provider
	Logger    log.Logger `optional:"true"`
	Lifecycle fx.Lifecycle
}

// ModuleOutput 定义存储模块的输出结构
type ModuleOutput struct {
	fx.Out

	Store    interfaces.KVStore
	Keyspace Keyspace
}

// Module 返回存储模块
func Module() fx.Option {
	return fx.Module("storage",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 根据配置创建存储后端，并在应用停止时关闭
func ProvideServices(params ModuleParams) (ModuleOutput, error) {
	options := params.Provider.GetStorage()
	if options == nil {
		options = storageconfig.New(nil, params.Provider.GetDataDir()).GetOptions()
	}

	store, err := NewKVStore(options, params.Logger)
	if err != nil {
		return ModuleOutput{}, err
	}

	params.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			if params.Logger != nil {
				params.Logger.Info("正在关闭存储服务...")
			}
			return store.Close()
		},
	})

	return ModuleOutput{
		Store: store,
		Keyspace: Keyspace{
			Store:  store,
			Prefix: options.KeyPrefix,
			Logger: params.Logger,
		},
	}, nil
}
