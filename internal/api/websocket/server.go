// Package websocket 提供连接器事件流的 WebSocket 推送
//
// 每个连接对应一个事件订阅：事件经有界队列由独立写协程发送，
// 队列满时丢弃事件并记录告警，慢客户端不会阻塞事件总线。
package websocket

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	wstypes "github.com/weisyn/connector/internal/api/websocket/types"
	apiconfig "github.com/weisyn/connector/internal/config/api"
	connectorIface "github.com/weisyn/connector/pkg/interfaces/connector"
	"github.com/weisyn/connector/pkg/types"
)

const writeWait = 10 * time.Second

// Server WebSocket服务器
type Server struct {
	logger    *zap.Logger
	engine    connectorIface.Engine
	upgrader  websocket.Upgrader
	sendQueue int

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// NewServer 创建WebSocket服务器
func NewServer(logger *zap.Logger, engine connectorIface.Engine, cfg apiconfig.WebSocketConfig) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SendQueue <= 0 {
		cfg.SendQueue = 64
	}
	return &Server{
		logger: logger,
		engine: engine,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// 控制面默认只监听本机
				return true
			},
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
		},
		sendQueue: cfg.SendQueue,
		conns:     make(map[*websocket.Conn]struct{}),
	}
}

// RegisterRoutes 注册WebSocket路由到Gin
func (s *Server) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/events", s.HandleWebSocket)
	s.logger.Info("WebSocket server registered", zap.String("path", group.BasePath()+"/events"))
}

// HandleWebSocket 处理WebSocket连接（Gin Handler）
//
// 查询参数 types 为逗号分隔的事件类型过滤。
func (s *Server) HandleWebSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade WebSocket connection", zap.Error(err))
		return
	}
	sub := newSubscription(s.sendQueue, parseTypes(c.Query("types")))
	sub.id = s.engine.On(sub.deliver)
	s.track(conn)
	defer func() {
		s.engine.Off(sub.id)
		sub.close()
		s.untrack(conn)
		if err := conn.Close(); err != nil {
			s.logger.Debug("关闭WebSocket连接失败", zap.Error(err))
		}
	}()

	s.logger.Info("WebSocket connection established",
		zap.String("remote_addr", conn.RemoteAddr().String()),
		zap.String("subscription", string(sub.id)))

	go s.writeLoop(conn, sub)

	for {
		messageType, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("WebSocket connection closed unexpectedly", zap.Error(err))
			}
			break
		}
		if messageType != websocket.TextMessage {
			continue
		}
		var ctrl wstypes.ControlMessage
		if err := json.Unmarshal(message, &ctrl); err != nil {
			s.logger.Debug("忽略无法解析的控制消息", zap.Error(err))
			continue
		}
		if ctrl.Action == wstypes.ControlActionFilter {
			sub.setFilter(ctrl.Types)
		}
	}

	s.logger.Info("WebSocket connection closed",
		zap.String("remote_addr", conn.RemoteAddr().String()),
		zap.Int("dropped", sub.droppedCount()))
}

func (s *Server) writeLoop(conn *websocket.Conn, sub *subscription) {
	for ev := range sub.queue {
		data, err := json.Marshal(wstypes.EventMessage{Subscription: string(sub.id), Result: ev})
		if err != nil {
			s.logger.Error("Failed to marshal event", zap.Error(err))
			continue
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			s.logger.Debug("Failed to send event", zap.Error(err))
			_ = conn.Close()
			return
		}
	}
}

// Connections 当前活跃连接数
func (s *Server) Connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// Close 关闭全部连接
func (s *Server) Close() {
	s.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(s.conns))
	for conn := range s.conns {
		conns = append(conns, conn)
	}
	s.mu.Unlock()

	deadline := time.Now().Add(time.Second)
	for _, conn := range conns {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"), deadline)
		_ = conn.Close()
	}
}

func (s *Server) track(conn *websocket.Conn) {
	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) untrack(conn *websocket.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
}

func parseTypes(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// subscription 单个连接的事件订阅
type subscription struct {
	id    types.SubscriptionID
	queue chan types.Event

	mu      sync.RWMutex
	filter  map[types.EventType]struct{}
	closed  bool
	dropped int
}

func newSubscription(size int, filter []string) *subscription {
	s := &subscription{queue: make(chan types.Event, size)}
	s.setFilter(filter)
	return s
}

func (s *subscription) setFilter(kinds []string) {
	var filter map[types.EventType]struct{}
	if len(kinds) > 0 {
		filter = make(map[types.EventType]struct{}, len(kinds))
		for _, k := range kinds {
			filter[types.EventType(k)] = struct{}{}
		}
	}
	s.mu.Lock()
	s.filter = filter
	s.mu.Unlock()
}

func (s *subscription) deliver(ev types.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.filter != nil {
		if _, ok := s.filter[ev.Type]; !ok {
			return
		}
	}
	select {
	case s.queue <- ev:
	default:
		s.dropped++
	}
}

func (s *subscription) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
}

func (s *subscription) droppedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dropped
}
