package simwallet

import (
	"context"
	"sync"

	"github.com/weisyn/connector/internal/core/connector/authenticity"
	"github.com/weisyn/connector/pkg/wallet"
)

// LegacyShape 旧式 connect 的返回形态
type LegacyShape int

const (
	// ShapeAccounts 返回带 accounts 数组的对象
	ShapeAccounts LegacyShape = iota
	// ShapePublicKeyObject 返回带 publicKey 字段的对象
	ShapePublicKeyObject
	// ShapeWalletPublicKey 不返回值，公钥写在钱包对象上
	ShapeWalletPublicKey
	// ShapeBareKey 直接返回公钥
	ShapeBareKey
)

// legacyEventAccountChanged 旧式账户变更事件名
const legacyEventAccountChanged = "accountChanged"

// LegacyObject 以旧式全局对象形态暴露同一个钱包
//
// 对象带 is<Name> 标志、connect/disconnect/on/off/signMessage 方法，
// connect 的第一个参数可为 {onlyIfTrusted: true} 对象表示静默连接。
func (w *Wallet) LegacyObject(shape LegacyShape) *wallet.Object {
	obj := wallet.NewObject()
	obj.Set(authenticity.IdentityFlag(w.Name()), true)
	obj.Set("publicKey", nil)

	var mu sync.Mutex
	handlers := make(map[int]func(any))
	nextID := 0

	obj.Set("connect", wallet.NewMethod("async connect(opts) { return this._request('connect', opts) }",
		func(ctx context.Context, args ...any) (any, error) {
			silent := false
			if len(args) > 0 {
				if opts, ok := args[0].(*wallet.Object); ok {
					silent = opts.Bool("onlyIfTrusted")
				}
			}
			out, err := w.Connect(ctx, wallet.ConnectInput{Silent: silent})
			if err != nil {
				return nil, err
			}
			if len(out.Accounts) == 0 {
				return nil, nil
			}
			address := out.Accounts[0].Address
			obj.Set("publicKey", address)

			switch shape {
			case ShapeAccounts:
				addresses := make([]any, 0, len(out.Accounts))
				for _, a := range out.Accounts {
					addresses = append(addresses, a.Address)
				}
				return wallet.NewObject().Set("accounts", addresses), nil
			case ShapePublicKeyObject:
				return wallet.NewObject().Set("publicKey", address), nil
			case ShapeWalletPublicKey:
				return nil, nil
			default:
				return address, nil
			}
		}))

	obj.Set("disconnect", wallet.NewMethod("async disconnect() { return this._request('disconnect') }",
		func(ctx context.Context, args ...any) (any, error) {
			obj.Set("publicKey", nil)
			return nil, w.Disconnect(ctx)
		}))

	obj.Set("on", wallet.NewMethod("on(event, handler) { this._emitter.on(event, handler) }",
		func(ctx context.Context, args ...any) (any, error) {
			if len(args) < 2 {
				return nil, nil
			}
			event, _ := args[0].(string)
			handler, ok := args[1].(func(any))
			if event != legacyEventAccountChanged || !ok {
				return nil, nil
			}
			mu.Lock()
			id := nextID
			nextID++
			handlers[id] = handler
			mu.Unlock()
			return id, nil
		}))

	obj.Set("off", wallet.NewMethod("off(event, id) { this._emitter.off(event, id) }",
		func(ctx context.Context, args ...any) (any, error) {
			if len(args) < 2 {
				return nil, nil
			}
			if id, ok := args[1].(int); ok {
				mu.Lock()
				delete(handlers, id)
				mu.Unlock()
			}
			return nil, nil
		}))

	obj.Set("signMessage", wallet.NewMethod("async signMessage(message) { return this._request('signMessage', message) }",
		func(ctx context.Context, args ...any) (any, error) {
			return nil, nil
		}))

	// 扩展内账户切换时转发到旧式 accountChanged 处理器
	if events, ok := wallet.GetEvents(w); ok {
		_, _ = events.On(wallet.EventChange, func(ev wallet.ChangeEvent) {
			if !ev.HasAccounts {
				return
			}
			var payload any
			if len(ev.Accounts) > 0 {
				payload = ev.Accounts[0].Address
				obj.Set("publicKey", payload)
			}
			mu.Lock()
			list := make([]func(any), 0, len(handlers))
			for _, h := range handlers {
				list = append(list, h)
			}
			mu.Unlock()
			for _, h := range list {
				h(payload)
			}
		})
	}

	return obj
}
