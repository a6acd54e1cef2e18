package http

import (
	"context"
	"errors"
	"fmt"
	gohttp "net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/hxuan190/route-aggregator/internal/adapters/ledger"
	"github.com/hxuan190/route-aggregator/internal/aggregator"
	"github.com/hxuan190/route-aggregator/internal/common"
	"github.com/hxuan190/route-aggregator/internal/config"
	"github.com/hxuan190/route-aggregator/internal/http/httputil"
	"github.com/hxuan190/route-aggregator/internal/http/middlewares"
)

const (
	API_VERSION  = "v1"
	HTTP_SERVICE = "http-service"
)

type HTTPService struct {
	container.BaseDIInstance

	aggregatorSvc *aggregator.Service
	rateLimiter   *middlewares.RateLimiter
	server        *gohttp.Server
	conf          *config.GeneralConfig
	stopJanitor   context.CancelFunc

	handlers []httputil.IHttpHandler
}

func (svc *HTTPService) ID() string {
	return HTTP_SERVICE
}

func (svc *HTTPService) Start() error {
	r := gin.Default()
	r.Use(gin.Recovery())

	corsConf := cors.DefaultConfig()
	corsConf.AllowAllOrigins = true
	corsConf.AllowCredentials = true
	corsConf.AddAllowHeaders("Authorization")
	r.Use(cors.New(corsConf))

	r.Use(middlewares.MetricsMiddleware())
	r.Use(svc.rateLimiter.RateLimitMiddleware())

	janitorCtx, cancel := context.WithCancel(context.Background())
	svc.stopJanitor = cancel
	go svc.rateLimiter.RunJanitor(janitorCtx, time.Minute)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	svc.mountRoutes(r)

	svc.server = &gohttp.Server{
		Addr:    svc.conf.HTTPHost + ":" + svc.conf.HTTPPort,
		Handler: r,
	}
	log.Info().Str("host", svc.conf.HTTPHost).Str("port", svc.conf.HTTPPort).Msg("[httpService] http server started")

	if err := svc.server.ListenAndServe(); err != nil && err != gohttp.ErrServerClosed {
		return err
	}

	return nil
}

func (svc *HTTPService) Configure(c container.IContainer) error {
	svc.conf = c.GetConfig(config.GENERAL_CONFIG_KEY).(*config.GeneralConfig)
	if svc.conf == nil {
		return errors.New("invalid server config")
	}

	svc.aggregatorSvc = c.Instance(aggregator.AGGREGATOR_SERVICE).(*aggregator.Service)
	svc.rateLimiter = middlewares.NewRateLimiter(svc.conf.RateLimitRPS, svc.conf.RateLimitBurst)
	svc.handlers = newHandlers(svc.aggregatorSvc)
	return nil
}

func newHandlers(aggregatorSvc *aggregator.Service) []httputil.IHttpHandler {
	return []httputil.IHttpHandler{
		NewPoolHandler(aggregatorSvc),
		NewQuoteHandler(aggregatorSvc),
		NewSwapHandler(aggregatorSvc),
		NewBalanceHandler(aggregatorSvc),
	}
}

// mountRoutes registers health, metrics and the versioned API on r.
func (svc *HTTPService) mountRoutes(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(gohttp.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("api")
	pub := api.Group(API_VERSION)
	priv := api.Group(API_VERSION)
	admin := api.Group(fmt.Sprintf("%s/admin", API_VERSION))

	svc.setupHandlers(pub, priv, admin)
}

func (svc *HTTPService) Stop() error {
	if svc.stopJanitor != nil {
		svc.stopJanitor()
	}
	if svc.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(svc.conf.ShutdownTimeoutSecs)*time.Second)
	defer cancel()

	if err := svc.server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("[httpService] failed to stop http server")
		return err
	}
	log.Info().Msg("[httpService] http server stopped gracefully")
	return nil
}

func (svc *HTTPService) setupHandlers(
	rootPub *gin.RouterGroup,
	rootPriv *gin.RouterGroup,
	rootAdmin *gin.RouterGroup,
) {
	for _, h := range svc.handlers {
		pub := rootPub.Group(h.Root())
		priv := rootPriv.Group(h.Root())
		admin := rootAdmin.Group(h.Root())
		h.SetRoutes(pub, priv, admin)
	}
}

// writeError maps err onto an HTTP status and writes the error body.
func writeError(c *gin.Context, err error) {
	if errors.Is(err, ledger.ErrInsufficientBalance) {
		err = common.HTTPErrorUnprocessable(err.Error())
	}
	if status := common.HTTPErrorFor(err).StatusCode; status >= gohttp.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("[httpService] request failed")
	}
	httputil.HandleError(c, err)
}

func parseAmount(field, s string) (*uint256.Int, error) {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, common.HTTPErrorBadRequest(fmt.Sprintf("invalid %s: must be a decimal integer", field))
	}
	if v.IsZero() {
		return nil, common.HTTPErrorBadRequest(fmt.Sprintf("invalid %s: must be positive", field))
	}
	return v, nil
}
