package http

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
	"github.com/holiman/uint256"

	"github.com/hxuan190/route-aggregator/internal/aggregator"
	"github.com/hxuan190/route-aggregator/internal/common"
	"github.com/hxuan190/route-aggregator/internal/domain"
	"github.com/hxuan190/route-aggregator/internal/http/httputil"
)

type SwapHandler struct {
	aggregatorSvc *aggregator.Service
}

func NewSwapHandler(aggregatorSvc *aggregator.Service) *SwapHandler {
	return &SwapHandler{aggregatorSvc: aggregatorSvc}
}

func (h *SwapHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.POST("/execute", h.execute)
}

func (h *SwapHandler) Root() string {
	return "/swap"
}

// ExecuteRequest runs a plan against the engine's pools and ledger.
type ExecuteRequest struct {
	// Input and output tokens. "native" stands for the chain's native token.
	TokenIn  string `json:"tokenIn" binding:"required" example:"So11111111111111111111111111111111111111112"`
	TokenOut string `json:"tokenOut" binding:"required" example:"uSd2czE61Evaf76RNbq4KPpXnkiL3irdzgLFUMe3NoG"`

	// Exact input in smallest token units.
	AmountIn string `json:"amountIn" binding:"required" example:"1000000000"`

	// Account debited for the input. Must hold AmountIn of TokenIn.
	Payer string `json:"payer" binding:"required" example:"9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"`

	// Account credited with the output. Defaults to Payer.
	Recipient string `json:"recipient" example:"9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"`

	Plan domain.PlanSpec `json:"plan" binding:"required"`

	// Unix seconds. Zero means now plus the configured default.
	Deadline int64 `json:"deadline" example:"1700000000"`

	// Minimum acceptable output. Empty or "0" disables the check.
	MinAmountOut string `json:"minAmountOut" example:"144593400"`
}

func parseAccount(field, s string) (solana.PublicKey, error) {
	k, err := solana.PublicKeyFromBase58(s)
	if err != nil {
		return solana.PublicKey{}, common.HTTPErrorBadRequest(fmt.Sprintf("invalid %s address", field))
	}
	return k, nil
}

func (req *ExecuteRequest) toDomain() (domain.ExecuteRequest, error) {
	var out domain.ExecuteRequest
	var err error

	if out.TokenIn, err = domain.ParseToken(req.TokenIn); err != nil {
		return out, common.HTTPErrorBadRequest("invalid tokenIn")
	}
	if out.TokenOut, err = domain.ParseToken(req.TokenOut); err != nil {
		return out, common.HTTPErrorBadRequest("invalid tokenOut")
	}
	if out.AmountIn, err = parseAmount("amountIn", req.AmountIn); err != nil {
		return out, err
	}
	if out.Payer, err = parseAccount("payer", req.Payer); err != nil {
		return out, err
	}
	out.Recipient = out.Payer
	if req.Recipient != "" {
		if out.Recipient, err = parseAccount("recipient", req.Recipient); err != nil {
			return out, err
		}
	}
	if req.MinAmountOut != "" {
		if out.MinAmountOut, err = uint256.FromDecimal(req.MinAmountOut); err != nil {
			return out, common.HTTPErrorBadRequest("invalid minAmountOut: must be a decimal integer")
		}
	}
	if out.Plan, err = req.Plan.Build(); err != nil {
		return out, err
	}
	out.Deadline = req.Deadline
	return out, nil
}

// @Summary Execute a plan
// @Description Executes a split-route plan for an exact input. The payer's input is taken into custody,
// @Description every hop is executed in order, and the final output is released to the recipient.
// @Description A failed execution leaves pools and balances unchanged.
// @Tags swap
// @Accept json
// @Produce json
// @Param request body ExecuteRequest true "Execution parameters"
// @Success 200 {object} domain.ExecuteResponse "Amounts, plan hash and receipt id"
// @Failure 400 {object} httputil.Response "Malformed request or plan"
// @Failure 404 {object} httputil.Response "Unknown venue, token or pool"
// @Failure 409 {object} httputil.Response "Deadline passed or slippage tolerance exceeded"
// @Failure 422 {object} httputil.Response "Insufficient balance or liquidity"
// @Router /api/v1/swap/execute [post]
func (h *SwapHandler) execute(c *gin.Context) {
	var req ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	execReq, err := req.toDomain()
	if err != nil {
		writeError(c, err)
		return
	}

	result, err := h.aggregatorSvc.Execute(c.Request.Context(), execReq)
	if err != nil {
		writeError(c, err)
		return
	}
	httputil.Success(c, result.View())
}
