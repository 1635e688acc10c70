package wallet

// 能力访问器：从能力映射中取出类型化的能力实现。
// 第三方钱包可能在能力 ID 下放置任意值，类型不符视为不存在。

func feature[T any](w Wallet, id FeatureID) (T, bool) {
	var zero T
	if w == nil {
		return zero, false
	}
	raw, ok := w.Features()[id]
	if !ok || raw == nil {
		return zero, false
	}
	f, ok := raw.(T)
	return f, ok
}

// GetConnect 获取 standard:connect
func GetConnect(w Wallet) (ConnectFeature, bool) {
	return feature[ConnectFeature](w, FeatureConnect)
}

// GetDisconnect 获取 standard:disconnect
func GetDisconnect(w Wallet) (DisconnectFeature, bool) {
	return feature[DisconnectFeature](w, FeatureDisconnect)
}

// GetEvents 获取 standard:events
func GetEvents(w Wallet) (EventsFeature, bool) {
	return feature[EventsFeature](w, FeatureEvents)
}

// GetSignMessage 获取 solana:signMessage
func GetSignMessage(w Wallet) (SignMessageFeature, bool) {
	return feature[SignMessageFeature](w, FeatureSignMessage)
}

// GetSignTransaction 获取 solana:signTransaction
func GetSignTransaction(w Wallet) (SignTransactionFeature, bool) {
	return feature[SignTransactionFeature](w, FeatureSignTransaction)
}

// GetSignAndSendTransaction 获取 solana:signAndSendTransaction
func GetSignAndSendTransaction(w Wallet) (SignAndSendTransactionFeature, bool) {
	return feature[SignAndSendTransactionFeature](w, FeatureSignAndSendTransaction)
}
