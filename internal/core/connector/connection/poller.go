package connection

import (
	"sync"
	"time"

	"github.com/weisyn/connector/pkg/wallet"
)

// poller 没有 standard:events 的钱包的账户轮询
//
// 按退避表等待后读取钱包的 accounts 字段，读取次数达到上限后自行停止。
type poller struct {
	wallet      wallet.Wallet
	interval    func(attempt int) time.Duration
	maxAttempts int
	onAccounts  func([]wallet.Account)

	mu       sync.Mutex
	timer    *time.Timer
	attempts int
	stopped  bool
	done     chan struct{}
}

func newPoller(w wallet.Wallet, interval func(int) time.Duration, maxAttempts int, onAccounts func([]wallet.Account)) *poller {
	return &poller{
		wallet:      w,
		interval:    interval,
		maxAttempts: maxAttempts,
		onAccounts:  onAccounts,
		done:        make(chan struct{}),
	}
}

func (p *poller) start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scheduleLocked()
}

func (p *poller) scheduleLocked() {
	if p.stopped {
		return
	}
	if p.attempts >= p.maxAttempts {
		p.stopped = true
		close(p.done)
		return
	}
	p.timer = time.AfterFunc(p.interval(p.attempts), p.tick)
}

func (p *poller) tick() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.attempts++
	p.mu.Unlock()

	p.onAccounts(p.wallet.Accounts())

	p.mu.Lock()
	p.scheduleLocked()
	p.mu.Unlock()
}

// stop 停止轮询，可重复调用
func (p *poller) stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	p.stopped = true
	if p.timer != nil {
		p.timer.Stop()
	}
	close(p.done)
}

// Attempts 已执行的读取次数
func (p *poller) Attempts() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.attempts
}

// Done 轮询结束（达到上限或被停止）时关闭
func (p *poller) Done() <-chan struct{} { return p.done }
