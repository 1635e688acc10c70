// Package http 提供连接器的 HTTP 控制面
//
// 🌐 **控制面 (Control Plane)**
//
// 把连接器引擎暴露为本地 HTTP 接口，供非浏览器宿主驱动会话：
// - /v1/*：状态查询、连接/断开、切换账户与网络、签名、交易跟踪
// - /v1/events：WebSocket 事件流
// - /health、/metrics：健康检查与 Prometheus 指标
package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/weisyn/connector/internal/api/http/handlers"
	"github.com/weisyn/connector/internal/api/http/middleware"
	"github.com/weisyn/connector/internal/app/version"
	"github.com/weisyn/connector/internal/api/websocket"
	apiconfig "github.com/weisyn/connector/internal/config/api"
	logutil "github.com/weisyn/connector/internal/core/infrastructure/log"
	connectorIface "github.com/weisyn/connector/pkg/interfaces/connector"
	"github.com/weisyn/connector/pkg/interfaces/infrastructure/log"
)

// Server HTTP服务器
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	options    *apiconfig.APIOptions
	logger     log.Logger
	engine     connectorIface.Engine
	registry   *prometheus.Registry
	ws         *websocket.Server

	mu   sync.Mutex
	addr string
	done chan struct{}
}

// NewServer 创建HTTP服务器并注册路由
//
// registry 为 nil 时不注册请求指标，也不暴露 /metrics。
func NewServer(options *apiconfig.APIOptions, logger log.Logger, engine connectorIface.Engine, registry *prometheus.Registry) *Server {
	gin.SetMode(gin.ReleaseMode)
	logger = logutil.OrNop(logger)

	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		router:   router,
		options:  options,
		logger:   logger,
		engine:   engine,
		registry: registry,
	}
	if options.WebSocket.Enabled {
		s.ws = websocket.NewServer(logger.GetZapLogger(), engine, options.WebSocket)
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.NewRequestID().Middleware())
	s.router.Use(middleware.NewLogger(s.logger).Middleware())
	if s.registry != nil {
		s.router.Use(middleware.NewMetrics(s.registry).Middleware())
	}

	health := handlers.NewHealthHandler(s.engine)
	s.router.GET("/health", health.Health)
	if s.registry != nil {
		s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	}

	v1 := s.router.Group("/" + version.APIVersion)
	if s.ws != nil {
		// 事件流为长连接，不经过限流
		s.ws.RegisterRoutes(v1)
	}

	limited := v1.Group("")
	limited.Use(middleware.NewRateLimit(s.options.RateLimit.PerSecond, s.options.RateLimit.Burst).Middleware())
	handlers.NewConnectorHandler(s.engine).Register(limited)
}

// Handler 返回路由（测试使用）
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr 实际监听地址；未启动时为空
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Start 启动HTTP服务器
//
// 监听在当前协程内完成，端口被占用时直接返回错误；服务循环在后台运行。
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.options.ListenAddr)
	if err != nil {
		return fmt.Errorf("监听 %s 失败: %w", s.options.ListenAddr, err)
	}

	s.mu.Lock()
	s.addr = listener.Addr().String()
	s.done = make(chan struct{})
	s.httpServer = &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.options.ReadTimeout,
		WriteTimeout: s.options.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}
	srv, done, addr := s.httpServer, s.done, s.addr
	s.mu.Unlock()

	go func() {
		defer close(done)
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Errorf("❌ HTTP服务器运行失败: %v", err)
		}
	}()

	s.logger.Infof("✅ HTTP服务器启动成功，监听地址: %s", addr)
	s.logger.Infof("📡 API端点: http://%s/v1/", addr)
	if s.ws != nil {
		s.logger.Infof("🔌 事件流: ws://%s/v1/events", addr)
	}
	return nil
}

// Stop 停止HTTP服务器，等待进行中的请求完成
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv, done := s.httpServer, s.done
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	s.logger.Info("正在关闭HTTP服务器")
	if s.ws != nil {
		// Shutdown 不会等待被劫持的 WebSocket 连接
		s.ws.Close()
	}

	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(stopCtx); err != nil {
		s.logger.Errorf("HTTP服务器关闭出错: %v", err)
		return err
	}
	<-done

	s.logger.Info("HTTP服务器已关闭")
	return nil
}
