package http

import (
	"github.com/gin-gonic/gin"

	"github.com/hxuan190/route-aggregator/internal/aggregator"
	"github.com/hxuan190/route-aggregator/internal/common"
	"github.com/hxuan190/route-aggregator/internal/domain"
	"github.com/hxuan190/route-aggregator/internal/http/httputil"
)

type BalanceHandler struct {
	aggregatorSvc *aggregator.Service
}

func NewBalanceHandler(aggregatorSvc *aggregator.Service) *BalanceHandler {
	return &BalanceHandler{aggregatorSvc: aggregatorSvc}
}

func (h *BalanceHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.GET("/:owner/:token", h.getBalance)
	admin.POST("/fund", h.fund)
}

func (h *BalanceHandler) Root() string {
	return "/balances"
}

type BalanceResponse struct {
	Owner   string `json:"owner" example:"9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"`
	Token   string `json:"token" example:"native"`
	Balance string `json:"balance" example:"1000000000"`
}

// @Summary Get ledger balance
// @Tags balances
// @Produce json
// @Param owner path string true "Account address"
// @Param token path string true "Token mint, or native"
// @Success 200 {object} BalanceResponse
// @Failure 400 {object} httputil.Response "Malformed address"
// @Router /api/v1/balances/{owner}/{token} [get]
func (h *BalanceHandler) getBalance(c *gin.Context) {
	owner, err := parseAccount("owner", c.Param("owner"))
	if err != nil {
		writeError(c, err)
		return
	}
	token, err := domain.ParseToken(c.Param("token"))
	if err != nil {
		httputil.BadRequest(c, "invalid token")
		return
	}

	bal, err := h.aggregatorSvc.BalanceOf(c.Request.Context(), token, owner)
	if err != nil {
		writeError(c, err)
		return
	}
	httputil.Success(c, BalanceResponse{
		Owner:   owner.String(),
		Token:   domain.FormatToken(token),
		Balance: bal.Dec(),
	})
}

type FundRequest struct {
	Owner  string `json:"owner" binding:"required"`
	Token  string `json:"token" binding:"required"`
	Amount string `json:"amount" binding:"required"`
}

// @Summary Credit a ledger balance
// @Tags admin
// @Accept json
// @Produce json
// @Param request body FundRequest true "Account, token and amount to credit"
// @Success 200 {object} BalanceResponse
// @Failure 400 {object} httputil.Response "Malformed request"
// @Router /api/v1/admin/balances/fund [post]
func (h *BalanceHandler) fund(c *gin.Context) {
	var req FundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	owner, err := parseAccount("owner", req.Owner)
	if err != nil {
		writeError(c, err)
		return
	}
	token, err := domain.ParseToken(req.Token)
	if err != nil {
		writeError(c, common.HTTPErrorBadRequest("invalid token"))
		return
	}
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		writeError(c, err)
		return
	}

	ctx := c.Request.Context()
	if err := h.aggregatorSvc.Fund(ctx, token, owner, amount); err != nil {
		writeError(c, err)
		return
	}
	bal, err := h.aggregatorSvc.BalanceOf(ctx, token, owner)
	if err != nil {
		writeError(c, err)
		return
	}
	httputil.Success(c, BalanceResponse{
		Owner:   owner.String(),
		Token:   domain.FormatToken(token),
		Balance: bal.Dec(),
	})
}
