package wallet

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
)

// ErrNotCallable 方法没有可调用实现
var ErrNotCallable = errors.New("wallet: method is not callable")

// Method 注入对象上的方法
//
// Source 是方法的源码文本（可能为空），仅用于完整性启发式检查；
// Fn 是实际调用入口。
type Method struct {
	Source string
	Fn     func(ctx context.Context, args ...any) (any, error)
}

// NewMethod 创建方法
func NewMethod(source string, fn func(ctx context.Context, args ...any) (any, error)) *Method {
	return &Method{Source: source, Fn: fn}
}

// Call 调用方法
func (m *Method) Call(ctx context.Context, args ...any) (any, error) {
	if m == nil || m.Fn == nil {
		return nil, ErrNotCallable
	}
	return m.Fn(ctx, args...)
}

// Object 宿主全局命名空间中的动态对象
//
// 对象由第三方扩展持有并随时修改，因此所有访问都加锁，
// 调用方不应假设两次读取结果一致。
type Object struct {
	mu            sync.RWMutex
	props         map[string]any
	order         []string
	protoTampered bool
}

// NewObject 创建空对象
func NewObject() *Object {
	return &Object{props: make(map[string]any)}
}

// Set 设置属性（保留首次插入顺序），返回自身便于链式构建
func (o *Object) Set(key string, value any) *Object {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, exists := o.props[key]; !exists {
		o.order = append(o.order, key)
	}
	o.props[key] = value
	return o
}

// Delete 删除属性
func (o *Object) Delete(key string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, exists := o.props[key]; !exists {
		return
	}
	delete(o.props, key)
	for i, k := range o.order {
		if k == key {
			o.order = append(o.order[:i:i], o.order[i+1:]...)
			break
		}
	}
}

// Get 读取属性
func (o *Object) Get(key string) (any, bool) {
	if o == nil {
		return nil, false
	}
	o.mu.RLock()
	defer o.mu.RUnlock()
	v, ok := o.props[key]
	return v, ok
}

// Keys 自有可枚举属性（插入顺序）
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	o.mu.RLock()
	defer o.mu.RUnlock()
	keys := make([]string, len(o.order))
	copy(keys, o.order)
	return keys
}

// Len 自有属性数量
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.props)
}

// MarkPrototypeTampered 标记原型链被篡改
func (o *Object) MarkPrototypeTampered() *Object {
	o.mu.Lock()
	o.protoTampered = true
	o.mu.Unlock()
	return o
}

// PrototypeTampered 原型链是否被篡改
func (o *Object) PrototypeTampered() bool {
	if o == nil {
		return false
	}
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.protoTampered
}

// String 读取字符串属性
func (o *Object) String(key string) (string, bool) {
	v, ok := o.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Bool 读取布尔属性，缺失或类型不符返回 false
func (o *Object) Bool(key string) bool {
	v, ok := o.Get(key)
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

// Strings 读取字符串数组属性
func (o *Object) Strings(key string) ([]string, bool) {
	v, ok := o.Get(key)
	if !ok {
		return nil, false
	}
	switch list := v.(type) {
	case []string:
		return list, true
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out, true
	}
	return nil, false
}

// Method 读取方法属性
func (o *Object) Method(key string) (*Method, bool) {
	v, ok := o.Get(key)
	if !ok {
		return nil, false
	}
	m, ok := v.(*Method)
	return m, ok && m != nil
}

// Object 读取嵌套对象
func (o *Object) Object(key string) (*Object, bool) {
	v, ok := o.Get(key)
	if !ok {
		return nil, false
	}
	child, ok := v.(*Object)
	return child, ok && child != nil
}

// Features 读取能力映射；支持 Features 值或以能力 ID 为键的嵌套对象
func (o *Object) Features() (Features, bool) {
	v, ok := o.Get("features")
	if !ok {
		return nil, false
	}
	switch f := v.(type) {
	case Features:
		return f, true
	case map[FeatureID]any:
		return Features(f), true
	case *Object:
		out := make(Features)
		for _, k := range f.Keys() {
			if val, ok := f.Get(k); ok {
				out[FeatureID(k)] = val
			}
		}
		return out, true
	}
	return nil, false
}

// Methods 返回所有方法属性名（排序后）
func (o *Object) Methods() []string {
	var names []string
	for _, k := range o.Keys() {
		if _, ok := o.Method(k); ok {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	return names
}

// IdentityFlags 返回值为 true 的 is<Name> 风格标志
func (o *Object) IdentityFlags() []string {
	var flags []string
	for _, k := range o.Keys() {
		if isIdentityFlag(k) && o.Bool(k) {
			flags = append(flags, k)
		}
	}
	return flags
}

func isIdentityFlag(key string) bool {
	if len(key) < 3 || !strings.HasPrefix(key, "is") {
		return false
	}
	c := key[2]
	return c >= 'A' && c <= 'Z'
}

// ObjectFromWallet 把标准钱包展开为属性包视图，供启发式评分使用。
// 钱包若实现 interface{ Properties() *Object }，其额外属性一并合入。
func ObjectFromWallet(w Wallet) *Object {
	obj := NewObject()
	if w == nil {
		return obj
	}
	if p, ok := w.(interface{ Properties() *Object }); ok {
		if extra := p.Properties(); extra != nil {
			for _, k := range extra.Keys() {
				if v, ok := extra.Get(k); ok {
					obj.Set(k, v)
				}
			}
			if extra.PrototypeTampered() {
				obj.MarkPrototypeTampered()
			}
		}
	}
	obj.Set("name", w.Name())
	obj.Set("version", w.Version())
	obj.Set("icon", w.Icon())
	obj.Set("chains", w.Chains())
	obj.Set("features", w.Features())
	obj.Set("accounts", w.Accounts())
	return obj
}
