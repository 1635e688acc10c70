package handlers

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/weisyn/connector/internal/api/http/middleware"
	"github.com/weisyn/connector/internal/api/http/types"
	connectorIface "github.com/weisyn/connector/pkg/interfaces/connector"
	coretypes "github.com/weisyn/connector/pkg/types"
	"github.com/weisyn/connector/pkg/utils"
	"github.com/weisyn/connector/pkg/wallet"
)

// ConnectorHandler 连接器控制处理器
type ConnectorHandler struct {
	engine connectorIface.Engine
}

// NewConnectorHandler 创建连接器处理器
func NewConnectorHandler(engine connectorIface.Engine) *ConnectorHandler {
	return &ConnectorHandler{engine: engine}
}

// Register 注册路由
func (h *ConnectorHandler) Register(group *gin.RouterGroup) {
	group.GET("/state", h.GetState)
	group.GET("/wallets", h.ListWallets)
	group.GET("/wallets/:name/verification", h.VerifyWallet)

	group.POST("/connect", h.Connect)
	group.POST("/disconnect", h.Disconnect)
	group.POST("/account", h.SelectAccount)
	group.POST("/cluster", h.SetCluster)
	group.POST("/sign", h.SignMessage)

	group.GET("/transactions", h.ListTransactions)
	group.POST("/transactions", h.TrackTransaction)
	group.PUT("/transactions/:signature", h.UpdateTransaction)
}

// GetState GET /v1/state
func (h *ConnectorHandler) GetState(c *gin.Context) {
	respondOK(c, http.StatusOK, NewStateView(h.engine.Snapshot()))
}

// ListWallets GET /v1/wallets
func (h *ConnectorHandler) ListWallets(c *gin.Context) {
	respondOK(c, http.StatusOK, walletViews(h.engine.Wallets()))
}

// VerifyWallet GET /v1/wallets/:name/verification
func (h *ConnectorHandler) VerifyWallet(c *gin.Context) {
	name := c.Param("name")
	result, ok := h.engine.Verify(name)
	if !ok {
		c.JSON(http.StatusNotFound, types.NewErrorResponse(types.ErrNotFound, "wallet not found", gin.H{"wallet": name}).
			WithRequestID(middleware.GetRequestID(c)).
			WithTimestamp(now()))
		return
	}
	respondOK(c, http.StatusOK, result)
}

// Connect POST /v1/connect
//
// 请求在钱包确认（或拒绝）后才返回；客户端断开会取消等待中的连接。
func (h *ConnectorHandler) Connect(c *gin.Context) {
	var req types.ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "wallet is required", err.Error())
		return
	}
	if err := h.engine.Connect(c.Request.Context(), req.Wallet); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, NewStateView(h.engine.Snapshot()))
}

// Disconnect POST /v1/disconnect
func (h *ConnectorHandler) Disconnect(c *gin.Context) {
	if err := h.engine.Disconnect(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, NewStateView(h.engine.Snapshot()))
}

// SelectAccount POST /v1/account
func (h *ConnectorHandler) SelectAccount(c *gin.Context) {
	var req types.AccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "address is required", err.Error())
		return
	}
	if err := h.engine.SelectAccount(c.Request.Context(), req.Address); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, NewStateView(h.engine.Snapshot()))
}

// SetCluster POST /v1/cluster
func (h *ConnectorHandler) SetCluster(c *gin.Context) {
	var req types.ClusterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "cluster is required", err.Error())
		return
	}
	if err := h.engine.SetCluster(req.Cluster); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, NewStateView(h.engine.Snapshot()))
}

// SignMessage POST /v1/sign
func (h *ConnectorHandler) SignMessage(c *gin.Context) {
	var req types.SignMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "message is required", err.Error())
		return
	}
	signature, err := h.engine.SignMessage(c.Request.Context(), []byte(req.Message))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, types.SignMessageResponse{
		Account:   h.engine.Snapshot().SelectedAccount,
		Signature: utils.EncodeSignature(signature),
	})
}

// ListTransactions GET /v1/transactions
func (h *ConnectorHandler) ListTransactions(c *gin.Context) {
	respondOK(c, http.StatusOK, h.engine.Transactions())
}

// TrackTransaction POST /v1/transactions
func (h *ConnectorHandler) TrackTransaction(c *gin.Context) {
	var req types.TrackTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "signature is required", err.Error())
		return
	}
	tx, err := h.engine.TrackTransaction(req.Signature)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, tx)
}

// UpdateTransaction PUT /v1/transactions/:signature
func (h *ConnectorHandler) UpdateTransaction(c *gin.Context) {
	var req types.UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "status is required", err.Error())
		return
	}
	status := coretypes.TransactionStatus(req.Status)
	if !status.Valid() {
		respondBadRequest(c, "unknown transaction status", gin.H{"status": req.Status})
		return
	}
	tx, err := h.engine.UpdateTransaction(c.Param("signature"), status)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, tx)
}

// NewStateView 把状态根转换为可序列化视图
func NewStateView(s *coretypes.ConnectorState) types.StateView {
	view := types.StateView{
		Connected:       s.Connected,
		Connecting:      s.Connecting,
		Accounts:        s.Accounts,
		SelectedAccount: s.SelectedAccount,
		Cluster:         s.Cluster,
		Clusters:        s.Clusters,
		Wallets:         walletViews(s.Wallets),
	}
	if s.SelectedWallet != nil {
		view.Wallet = s.SelectedWallet.Name()
	}
	if view.Accounts == nil {
		view.Accounts = []coretypes.AccountInfo{}
	}
	if view.Clusters == nil {
		view.Clusters = []coretypes.Cluster{}
	}
	return view
}

func walletViews(infos []coretypes.WalletInfo) []types.WalletView {
	views := make([]types.WalletView, 0, len(infos))
	for _, info := range infos {
		if info.Wallet == nil {
			continue
		}
		views = append(views, types.WalletView{
			Name:        info.Wallet.Name(),
			Version:     info.Wallet.Version(),
			Icon:        info.Wallet.Icon(),
			Chains:      append([]string{}, info.Wallet.Chains()...),
			Features:    featureNames(info.Wallet.Features()),
			Installed:   info.Installed,
			Connectable: info.Connectable,
		})
	}
	return views
}

func featureNames(features wallet.Features) []string {
	ids := features.IDs()
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, string(id))
	}
	sort.Strings(names)
	return names
}
