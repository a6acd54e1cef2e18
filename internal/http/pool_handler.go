package http

import (
	"errors"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"

	"github.com/hxuan190/route-aggregator/internal/aggregator"
	"github.com/hxuan190/route-aggregator/internal/domain"
	"github.com/hxuan190/route-aggregator/internal/http/httputil"
)

type PoolHandler struct {
	aggregatorSvc *aggregator.Service
}

func NewPoolHandler(aggregatorSvc *aggregator.Service) *PoolHandler {
	return &PoolHandler{aggregatorSvc: aggregatorSvc}
}

func (h *PoolHandler) SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup) {
	pub.GET("", h.listPools)
	pub.GET("/venues", h.listVenues)
	pub.GET("/:address", h.getPool)
	admin.PUT("", h.upsertPool)
}

func (h *PoolHandler) Root() string {
	return "/pools"
}

// PoolListResponse contains a page of in-process pools.
type PoolListResponse struct {
	Pools []domain.PoolSpec `json:"pools"`

	// Total number of pools across all pages
	Total int `json:"total" example:"12"`

	// Current page number (1-indexed)
	Page int `json:"page" example:"1"`

	// Number of pools per page (max 500)
	Limit int `json:"limit" example:"100"`

	// Total number of pages available
	Pages int `json:"pages" example:"1"`
}

// @Summary List pools
// @Description Lists the in-process pools the constant-product, stable and weighted venues trade against.
// @Tags pools
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Pools per page (max 500)" default(100)
// @Success 200 {object} PoolListResponse
// @Router /api/v1/pools [get]
func (h *PoolHandler) listPools(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 100
	}
	if limit > 500 {
		limit = 500
	}

	allPools := h.aggregatorSvc.Pools()
	total := len(allPools)

	pages := (total + limit - 1) / limit
	offset := (page - 1) * limit
	end := offset + limit
	if offset > total {
		offset = total
	}
	if end > total {
		end = total
	}

	pools := make([]domain.PoolSpec, 0, end-offset)
	for _, pool := range allPools[offset:end] {
		pools = append(pools, domain.SpecFromState(pool))
	}

	httputil.Success(c, PoolListResponse{
		Pools: pools,
		Total: total,
		Page:  page,
		Limit: limit,
		Pages: pages,
	})
}

// @Summary Get pool
// @Tags pools
// @Produce json
// @Param address path string true "Pool address"
// @Success 200 {object} domain.PoolSpec
// @Failure 400 {object} httputil.Response "Malformed address"
// @Failure 404 {object} httputil.Response "Pool not found"
// @Router /api/v1/pools/{address} [get]
func (h *PoolHandler) getPool(c *gin.Context) {
	address, err := solana.PublicKeyFromBase58(c.Param("address"))
	if err != nil {
		httputil.BadRequest(c, "invalid pool address")
		return
	}

	pool, err := h.aggregatorSvc.GetPool(c.Request.Context(), address)
	if err != nil {
		httputil.NotFound(c, "pool not found")
		return
	}
	httputil.Success(c, domain.SpecFromState(pool))
}

// VenueInfo describes one registered venue.
type VenueInfo struct {
	ID     uint32 `json:"id" example:"1"`
	Name   string `json:"name" example:"cp-main"`
	Family string `json:"family" example:"constant-product"`
}

// @Summary List venues
// @Tags pools
// @Produce json
// @Success 200 {array} VenueInfo
// @Router /api/v1/pools/venues [get]
func (h *PoolHandler) listVenues(c *gin.Context) {
	venues := h.aggregatorSvc.Venues()
	out := make([]VenueInfo, 0, len(venues))
	for _, v := range venues {
		out = append(out, VenueInfo{ID: uint32(v.ID), Name: v.Name, Family: v.Family.String()})
	}
	httputil.Success(c, out)
}

// @Summary Create or replace a pool
// @Description Stores a pool for the in-process venues. Balances are decimal strings in smallest units.
// @Tags admin
// @Accept json
// @Produce json
// @Param request body domain.PoolSpec true "Pool state"
// @Success 200 {object} domain.PoolSpec
// @Failure 400 {object} httputil.Response "Invalid pool"
// @Router /api/v1/admin/pools [put]
func (h *PoolHandler) upsertPool(c *gin.Context) {
	var spec domain.PoolSpec
	if err := c.ShouldBindJSON(&spec); err != nil {
		httputil.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	pool, err := spec.ToState()
	if err == nil {
		err = h.aggregatorSvc.UpsertPool(pool)
	}
	if err != nil {
		if errors.Is(err, domain.ErrInvalidPool) {
			httputil.BadRequest(c, err.Error())
			return
		}
		writeError(c, err)
		return
	}
	httputil.Success(c, domain.SpecFromState(pool))
}
