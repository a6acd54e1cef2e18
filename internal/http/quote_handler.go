package http

import (
	"github.com/gin-gonic/gin"
	"github.com/holiman/uint256"

	"github.com/hxuan190/route-aggregator/internal/aggregator"
	"github.com/hxuan190/route-aggregator/internal/common"
	"github.com/hxuan190/route-aggregator/internal/domain"
	"github.com/hxuan190/route-aggregator/internal/http/httputil"
)

const (
	defaultSlippageBps = 50
	maxSlippageBps     = 10_000
)

type QuoteHandler struct {
	aggregatorSvc *aggregator.Service
}

func NewQuoteHandler(aggregatorSvc *aggregator.Service) *QuoteHandler {
	return &QuoteHandler{aggregatorSvc: aggregatorSvc}
}

func (h *QuoteHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.POST("/forward", h.quoteForward)
	pub.POST("/reverse", h.quoteReverse)
}

func (h *QuoteHandler) Root() string {
	return "/quote"
}

// QuoteRequest asks for a quote over a caller-supplied plan.
type QuoteRequest struct {
	// Plan to quote. Exactly one of path, route or megaRoutes is set.
	Plan domain.PlanSpec `json:"plan" binding:"required"`

	// Amount in smallest token units. For forward quotes this is the input,
	// for reverse quotes the desired output.
	Amount string `json:"amount" binding:"required" example:"1000000000"`

	// Slippage tolerance in basis points (1 bps = 0.01%). Default: 50.
	SlippageBps uint16 `json:"slippageBps" example:"50"`
}

// QuoteResponse is the per-path breakdown of a quote plus a slippage bound.
type QuoteResponse struct {
	domain.QuoteView

	// Minimum output (forward) or maximum input (reverse) after slippage.
	OtherAmountThreshold string `json:"otherAmountThreshold" example:"144593400"`
	SlippageBps          uint16 `json:"slippageBps" example:"50"`
}

type parsedQuoteRequest struct {
	plan        domain.Plan
	amount      *uint256.Int
	slippageBps uint16
}

func (h *QuoteHandler) parseQuoteRequest(c *gin.Context) (*parsedQuoteRequest, bool) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BadRequest(c, "invalid request body: "+err.Error())
		return nil, false
	}

	plan, err := req.Plan.Build()
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		writeError(c, err)
		return nil, false
	}

	slippageBps := req.SlippageBps
	if slippageBps == 0 {
		slippageBps = defaultSlippageBps
	}
	if slippageBps > maxSlippageBps {
		httputil.BadRequest(c, "invalid slippageBps: must be at most 10000")
		return nil, false
	}
	return &parsedQuoteRequest{plan: plan, amount: amount, slippageBps: slippageBps}, true
}

// @Summary Quote a plan forward
// @Description Computes the output of a split-route plan for an exact input.
// @Description Each hop splits its input across paths by share, and every hop's output feeds the next hop.
// @Description
// @Description **Amount Format:**
// @Description - Use smallest token units (lamports for SOL, base units for SPL tokens)
// @Description - The string "native" stands for the chain's native token in plan token fields
// @Tags quote
// @Accept json
// @Produce json
// @Param request body QuoteRequest true "Plan and exact input amount"
// @Success 200 {object} QuoteResponse "Quote with per-path breakdown"
// @Failure 400 {object} httputil.Response "Malformed plan or amount"
// @Failure 404 {object} httputil.Response "Unknown venue, token or pool"
// @Failure 422 {object} httputil.Response "Insufficient liquidity or arithmetic overflow"
// @Router /api/v1/quote/forward [post]
func (h *QuoteHandler) quoteForward(c *gin.Context) {
	req, ok := h.parseQuoteRequest(c)
	if !ok {
		return
	}

	quote, err := h.aggregatorSvc.QuoteForward(c.Request.Context(), req.plan, req.amount)
	if err != nil {
		writeError(c, err)
		return
	}

	threshold, err := minOutAfterSlippage(quote.AmountOut, req.slippageBps)
	if err != nil {
		writeError(c, err)
		return
	}
	httputil.Success(c, QuoteResponse{
		QuoteView:            quote.View(),
		OtherAmountThreshold: threshold.Dec(),
		SlippageBps:          req.slippageBps,
	})
}

// @Summary Quote a plan in reverse
// @Description Computes the input a split-route plan needs to produce an exact output.
// @Description Hops are resolved last to first. Split hops divide the target evenly by share, so the result is an estimate that covers the requested output per path.
// @Tags quote
// @Accept json
// @Produce json
// @Param request body QuoteRequest true "Plan and desired output amount"
// @Success 200 {object} QuoteResponse "Quote with per-path breakdown"
// @Failure 400 {object} httputil.Response "Malformed plan, amount, or a venue without reverse quoting"
// @Failure 404 {object} httputil.Response "Unknown venue, token or pool"
// @Failure 422 {object} httputil.Response "Insufficient liquidity or arithmetic overflow"
// @Router /api/v1/quote/reverse [post]
func (h *QuoteHandler) quoteReverse(c *gin.Context) {
	req, ok := h.parseQuoteRequest(c)
	if !ok {
		return
	}

	quote, err := h.aggregatorSvc.QuoteReverse(c.Request.Context(), req.plan, req.amount)
	if err != nil {
		writeError(c, err)
		return
	}

	threshold, err := maxInAfterSlippage(quote.AmountIn, req.slippageBps)
	if err != nil {
		writeError(c, err)
		return
	}
	httputil.Success(c, QuoteResponse{
		QuoteView:            quote.View(),
		OtherAmountThreshold: threshold.Dec(),
		SlippageBps:          req.slippageBps,
	})
}

// minOutAfterSlippage returns floor(amount * (10000 - bps) / 10000).
func minOutAfterSlippage(amount *uint256.Int, bps uint16) (*uint256.Int, error) {
	keep := uint256.NewInt(uint64(maxSlippageBps - bps))
	out, overflow := new(uint256.Int).MulDivOverflow(amount, keep, uint256.NewInt(maxSlippageBps))
	if overflow {
		return nil, common.HTTPErrorUnprocessable(domain.ErrArithmeticOverflow.Error())
	}
	return out, nil
}

// maxInAfterSlippage returns ceil(amount * (10000 + bps) / 10000).
func maxInAfterSlippage(amount *uint256.Int, bps uint16) (*uint256.Int, error) {
	scale := uint256.NewInt(maxSlippageBps)
	num, overflow := new(uint256.Int).MulOverflow(amount, uint256.NewInt(uint64(maxSlippageBps+uint64(bps))))
	if overflow {
		return nil, common.HTTPErrorUnprocessable(domain.ErrArithmeticOverflow.Error())
	}
	q, r := new(uint256.Int).DivMod(num, scale, new(uint256.Int))
	if !r.IsZero() {
		q.AddUint64(q, 1)
	}
	return q, nil
}
