package api

import (
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/quantumauth-io/wallet-store/internal/networks"
	"github.com/quantumauth-io/wallet-store/internal/store"
	"github.com/quantumauth-io/wallet-store/internal/units"
)

type Handler struct {
	store *store.WalletStore
}

func NewHandler(s *store.WalletStore) *Handler {
	return &Handler{store: s}
}

// -------- DTOs --------

type statusRes struct {
	store.State
	Address       string `json:"address,omitempty"`
	Connected     bool   `json:"connected"`
	HasProvider   bool   `json:"hasProvider"`
	LedgerNetwork string `json:"ledgerNetwork"`
}

type networkDetailsRes struct {
	Address    string `json:"address"`
	ChainID    string `json:"chainId"`
	Network    string `json:"network"`
	ChainIDErr string `json:"chainIdError,omitempty"`
}

type balanceRes struct {
	Address string `json:"address"`
	Wei     string `json:"wei"`
	Ether   string `json:"ether"`
}

type setDefaultNetworkReq struct {
	Name string `json:"name" binding:"required"`
}

type networkRes struct {
	ChainID    string `json:"chainId"`
	ChainIDHex string `json:"chainIdHex,omitempty"`
	Name       string `json:"name"`
}

type errorRes struct {
	Error string `json:"error"`
}

// -------- handlers --------

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.status())
}

func (h *Handler) Initialize(c *gin.Context) {
	details, err := h.store.InitializeWeb3(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toDetailsRes(details))
}

func (h *Handler) RefreshAccounts(c *gin.Context) {
	if _, err := h.store.RefreshAccounts(c.Request.Context()); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.status())
}

func (h *Handler) RefreshChainID(c *gin.Context) {
	if err := h.store.RefreshChainID(c.Request.Context()); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.status())
}

func (h *Handler) Reset(c *gin.Context) {
	h.store.ResetUser()
	c.JSON(http.StatusOK, h.status())
}

func (h *Handler) Balance(c *gin.Context) {
	bal, err := h.store.RefreshAccountBalance(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, balanceRes{
		Address: bal.Address,
		Wei:     bal.Wei.String(),
		Ether:   bal.Ether,
	})
}

func (h *Handler) SetDefaultNetwork(c *gin.Context) {
	var req setDefaultNetworkReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorRes{Error: "invalid body: " + err.Error()})
		return
	}
	name := strings.ToLower(strings.TrimSpace(req.Name))
	if name == "" {
		c.JSON(http.StatusBadRequest, errorRes{Error: "name is required"})
		return
	}
	h.store.SetDefaultNetwork(name)
	c.JSON(http.StatusOK, h.status())
}

func (h *Handler) ToWei(c *gin.Context) {
	amount := strings.TrimSpace(c.Query("amount"))
	wei, err := h.store.ConvertEthToWEI(amount)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ether": amount, "wei": wei.String()})
}

func (h *Handler) ToEther(c *gin.Context) {
	amount := strings.TrimSpace(c.Query("amount"))
	ether, err := h.store.ConvertWEIToETH(amount)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wei": amount, "ether": ether})
}

func (h *Handler) NetworkName(c *gin.Context) {
	raw := c.Param("chainId")
	id, ok := networks.NormalizeChainID(raw)
	if !ok {
		c.JSON(http.StatusBadRequest, errorRes{Error: "invalid chain id"})
		return
	}
	c.JSON(http.StatusOK, networkRes{
		ChainID:    id,
		ChainIDHex: networks.ToHex(id),
		Name:       networks.Name(id),
	})
}

// -------- helpers --------

func (h *Handler) status() statusRes {
	return statusRes{
		State:         h.store.Snapshot(),
		Address:       h.store.GetAddress(),
		Connected:     h.store.IsConnected(),
		HasProvider:   h.store.HasProvider(),
		LedgerNetwork: h.store.LedgerNetwork(),
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error("wallet request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, errorRes{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, units.ErrInvalidDecimal),
		errors.Is(err, units.ErrTooManyDecimals),
		errors.Is(err, units.ErrInvalidInteger):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotConnected),
		errors.Is(err, store.ErrNoProvider):
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

func toDetailsRes(d store.NetworkDetails) networkDetailsRes {
	out := networkDetailsRes{
		Address: d.Address,
		ChainID: d.ChainID,
		Network: d.Network,
	}
	if d.ChainIDErr != nil {
		out.ChainIDErr = d.ChainIDErr.Error()
	}
	return out
}
