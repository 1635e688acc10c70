package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/weisyn/connector/internal/api/http/types"
	"github.com/weisyn/connector/internal/app/version"
	connectorIface "github.com/weisyn/connector/pkg/interfaces/connector"
)

// HealthHandler 健康检查处理器
type HealthHandler struct {
	engine  connectorIface.Engine
	started time.Time
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(engine connectorIface.Engine) *HealthHandler {
	return &HealthHandler{engine: engine, started: time.Now()}
}

// Health GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	snap := h.engine.Snapshot()
	c.JSON(http.StatusOK, types.HealthResponse{
		Status:     "healthy",
		Version:    version.GetVersion(),
		APIVersion: version.APIVersion,
		Uptime:     time.Since(h.started).Truncate(time.Second).String(),
		Timestamp:  now(),
		Connected:  snap.Connected,
		Wallets:    len(snap.Wallets),
	})
}
