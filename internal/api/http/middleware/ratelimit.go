package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/weisyn/connector/internal/api/http/types"
)

// RateLimit 写操作限流中间件
//
// 连接请求会在钱包侧弹窗，按客户端IP对写操作（非 GET）做令牌桶限流；
// 读操作不受限。
type RateLimit struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewRateLimit 创建限流中间件；perSecond<=0 时不限流
func NewRateLimit(perSecond float64, burst int) *RateLimit {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimit{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(perSecond),
		burst:    burst,
	}
}

// Middleware 返回Gin中间件
func (m *RateLimit) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.limit <= 0 || c.Request.Method == http.MethodGet {
			c.Next()
			return
		}
		if !m.limiter(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, types.NewErrorResponse(
				types.ErrRateLimitExceeded,
				"Too many requests. Please slow down.",
				gin.H{"limit": float64(m.limit), "burst": m.burst},
			).WithRequestID(GetRequestID(c)))
			return
		}
		c.Next()
	}
}

func (m *RateLimit) limiter(client string) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.limiters[client]
	if !ok {
		l = rate.NewLimiter(m.limit, m.burst)
		m.limiters[client] = l
	}
	return l
}
