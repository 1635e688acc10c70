package cluster

import (
	"sync"
	"time"

	"github.com/google/uuid"

	cerrors "github.com/weisyn/connector/internal/core/connector/errors"
	"github.com/weisyn/connector/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/connector/pkg/types"
	"github.com/weisyn/connector/pkg/utils"
)

// DefaultTrackerLimit 默认保留的交易数
const DefaultTrackerLimit = 100

// Tracker 交易跟踪器，超过上限时淘汰最早的记录
type Tracker struct {
	limit   int
	emitter event.Emitter

	mu    sync.Mutex
	order []string // 签名，按跟踪先后
	items map[string]*types.TrackedTransaction
}

// NewTracker 创建交易跟踪器；limit<=0 使用默认值
func NewTracker(limit int, emitter event.Emitter) *Tracker {
	if limit <= 0 {
		limit = DefaultTrackerLimit
	}
	return &Tracker{
		limit:   limit,
		emitter: emitter,
		items:   make(map[string]*types.TrackedTransaction),
	}
}

// Track 开始跟踪交易；重复跟踪返回已有记录
func (t *Tracker) Track(signature, cluster string) (types.TrackedTransaction, error) {
	if !utils.IsPlausibleSignature(signature) {
		return types.TrackedTransaction{}, cerrors.Newf(cerrors.CodeInvalidSignature, "invalid transaction signature %q", signature)
	}

	t.mu.Lock()
	if existing, ok := t.items[signature]; ok {
		tx := *existing
		t.mu.Unlock()
		return tx, nil
	}
	now := time.Now()
	tx := &types.TrackedTransaction{
		ID:        uuid.NewString(),
		Signature: signature,
		Cluster:   cluster,
		Status:    types.TransactionPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	t.items[signature] = tx
	t.order = append(t.order, signature)
	for len(t.order) > t.limit {
		delete(t.items, t.order[0])
		t.order = t.order[1:]
	}
	out := *tx
	t.mu.Unlock()

	t.emit(types.Event{Type: types.EventTransactionTracked, Signature: signature, Cluster: cluster, Status: string(types.TransactionPending)})
	return out, nil
}

// Update 更新交易状态；状态未变化时不发布事件
func (t *Tracker) Update(signature string, status types.TransactionStatus) (types.TrackedTransaction, error) {
	if !status.Valid() {
		return types.TrackedTransaction{}, cerrors.Newf(cerrors.CodeInvalidFormat, "unknown transaction status %q", status)
	}

	t.mu.Lock()
	tx, ok := t.items[signature]
	if !ok {
		t.mu.Unlock()
		return types.TrackedTransaction{}, cerrors.Newf(cerrors.CodeInvalidSignature, "transaction %s is not tracked", signature)
	}
	changed := tx.Status != status
	if changed {
		tx.Status = status
		tx.UpdatedAt = time.Now()
	}
	out := *tx
	t.mu.Unlock()

	if changed {
		t.emit(types.Event{Type: types.EventTransactionUpdated, Signature: signature, Cluster: out.Cluster, Status: string(status)})
	}
	return out, nil
}

// Get 按签名查询
func (t *Tracker) Get(signature string) (types.TrackedTransaction, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	tx, ok := t.items[signature]
	if !ok {
		return types.TrackedTransaction{}, false
	}
	return *tx, true
}

// List 全部记录，最新的在前
func (t *Tracker) List() []types.TrackedTransaction {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]types.TrackedTransaction, 0, len(t.order))
	for i := len(t.order) - 1; i >= 0; i-- {
		out = append(out, *t.items[t.order[i]])
	}
	return out
}

func (t *Tracker) emit(e types.Event) {
	if t.emitter != nil {
		t.emitter.Emit(e)
	}
}
