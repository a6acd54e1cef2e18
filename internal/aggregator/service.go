package aggregator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/google/uuid"
	"github.com/holiman/uint256"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/hxuan190/route-aggregator/internal/adapters/dispatch"
	"github.com/hxuan190/route-aggregator/internal/adapters/ledger"
	"github.com/hxuan190/route-aggregator/internal/adapters/persistence"
	"github.com/hxuan190/route-aggregator/internal/adapters/receipts"
	"github.com/hxuan190/route-aggregator/internal/common"
	"github.com/hxuan190/route-aggregator/internal/config"
	"github.com/hxuan190/route-aggregator/internal/domain"
	"github.com/hxuan190/route-aggregator/internal/services/exchange"
	"github.com/hxuan190/route-aggregator/internal/services/market"
	"github.com/hxuan190/route-aggregator/internal/services/router"
)

const AGGREGATOR_SERVICE = "aggregator-service"

// Snapshotter is state that can be restored after a failed execution.
type Snapshotter interface {
	Snapshot() func()
}

// Components are the collaborators a Service runs on.
type Components struct {
	Pools    *persistence.MemoryPools
	Ledger   *ledger.Ledger
	Venues   *market.VenueRegistry
	Tokens   *market.TokenRegistry
	Receipts receipts.Sink
	Clock    router.Clock

	// Storage is optional; when set, pools are loaded on Start and changed
	// pools are saved every PersistInterval.
	Storage         *persistence.Storage
	PersistInterval time.Duration
	DefaultDeadline time.Duration
}

// Service is the aggregation facade: quoting, execution and pool
// administration. Executions are serialised and all-or-nothing.
type Service struct {
	container.BaseDIInstance
	logger *common.ServiceLogger

	// mu is held for reading by quotes and for writing by executions.
	mu sync.RWMutex

	pools    *persistence.MemoryPools
	ledger   *ledger.Ledger
	venues   *market.VenueRegistry
	tokens   *market.TokenRegistry
	receipts receipts.Sink
	clock    router.Clock

	engine       *router.AmountEngine
	routes       *router.RouteAggregator
	mega         *router.MegaRouteAggregator
	executor     *router.SwapExecutor
	snapshotters []Snapshotter

	storage         *persistence.Storage
	postgres        *receipts.Postgres
	persistInterval time.Duration
	defaultDeadline time.Duration
	stopCh          chan struct{}
	wg              sync.WaitGroup
}

func NewService(c Components) *Service {
	svc := &Service{}
	svc.init(c)
	return svc
}

func (svc *Service) init(c Components) {
	svc.logger = common.NewServiceLogger(svc)
	if c.Pools == nil {
		c.Pools = persistence.NewMemoryPools()
	}
	if c.Ledger == nil {
		c.Ledger = ledger.NewLedger(common.DefaultCustodyAccount)
	}
	if c.Venues == nil {
		c.Venues = market.NewVenueRegistry()
	}
	if c.Tokens == nil {
		c.Tokens = market.NewTokenRegistry(common.DefaultTokenCacheSize, nil)
	}
	if c.Clock == nil {
		c.Clock = router.SystemClock{}
	}
	if c.PersistInterval <= 0 {
		c.PersistInterval = 30 * time.Second
	}
	if c.DefaultDeadline <= 0 {
		c.DefaultDeadline = common.DefaultDeadlineSecs * time.Second
	}

	svc.pools = c.Pools
	svc.ledger = c.Ledger
	svc.venues = c.Venues
	svc.tokens = c.Tokens
	svc.clock = c.Clock
	svc.receipts = receipts.NewObserved(c.Receipts)
	svc.storage = c.Storage
	svc.persistInterval = c.PersistInterval
	svc.defaultDeadline = c.DefaultDeadline
	svc.stopCh = make(chan struct{})

	svc.engine = router.NewAmountEngine(svc.venues, svc.tokens)
	svc.routes = router.NewRouteAggregator(svc.engine)
	svc.mega = router.NewMegaRouteAggregator(svc.routes)
	svc.executor = router.NewSwapExecutor(svc.engine, svc.clock, svc.ledger, svc.ledger, svc.ledger.Custody())
	svc.snapshotters = []Snapshotter{svc.pools, svc.ledger}
}

func (svc *Service) ID() string {
	return AGGREGATOR_SERVICE
}

func (svc *Service) Configure(c container.IContainer) error {
	aggConf := c.GetConfig(config.AGGREGATOR_CONFIG_KEY).(*config.AggregatorConfig)
	rpcConf := c.GetConfig(config.RPC_CONFIG_KEY).(*config.RPCConfig)
	venueConf := c.GetConfig(config.VENUE_CONFIG_KEY).(*config.VenueConfig)

	var rpcClient *rpc.Client
	if rpcConf.Enabled() {
		rpcClient = rpc.New(rpcConf.Endpoint())
	} else if venueConf.HasFamily(domain.FamilyConcentratedLiquidity) {
		return errors.New("RPC_URL is required when a concentrated venue is configured")
	}

	var fetcher market.DecimalsFetcher
	if rpcClient != nil {
		fetcher = market.NewRPCDecimalsFetcher(rpcClient)
	}
	tokens := market.NewTokenRegistry(common.DefaultTokenCacheSize, fetcher)
	for mint, decimals := range venueConf.TokenDecimals {
		tokens.SetDecimals(mint, decimals)
	}

	pools := persistence.NewMemoryPools()
	led := ledger.NewLedger(aggConf.CustodyAccount)
	venues := market.NewVenueRegistry()

	var quoter exchange.Quoter
	var dispatcher exchange.Dispatcher
	if rpcClient != nil {
		vortex := exchange.NewVortexQuoter(exchange.NewRPCVortexLoader(rpcClient, rpcConf.VortexProgram))
		quoter = vortex
		dispatcher = dispatch.NewPaper(vortex, led)
	}
	deps := AdapterDeps{Pools: pools, Settlement: led, Balances: led, Quoters: venues, Dispatcher: dispatcher}
	if err := RegisterVenues(venues, venueConf.Venues, deps, quoter); err != nil {
		return err
	}

	var storage *persistence.Storage
	if aggConf.PersistenceEnabled {
		var err error
		storage, err = persistence.NewStorage(aggConf.DBPath)
		if err != nil {
			return err
		}
	}

	// Receipts go to Postgres when configured, else next to the pools in bolt.
	var sink receipts.Sink = receipts.NewMemory()
	switch {
	case aggConf.ReceiptsDSN != "":
		pg, err := receipts.NewPostgres(context.Background(), aggConf.ReceiptsDSN)
		if err != nil {
			return err
		}
		svc.postgres = pg
		sink = pg
	case storage != nil:
		sink = storage
	}

	svc.init(Components{
		Pools:           pools,
		Ledger:          led,
		Venues:          venues,
		Tokens:          tokens,
		Receipts:        sink,
		Storage:         storage,
		PersistInterval: time.Duration(aggConf.PersistInterval) * time.Second,
		DefaultDeadline: time.Duration(aggConf.DefaultDeadlineSecs) * time.Second,
	})
	return nil
}

func (svc *Service) Start() error {
	if svc.storage == nil {
		return nil
	}
	svc.loadPoolsFromStorage()
	svc.wg.Add(1)
	go svc.processPersistence()
	return nil
}

func (svc *Service) Stop() error {
	if svc.storage != nil {
		close(svc.stopCh)
		svc.wg.Wait()
		svc.persistPendingPools()
		if err := svc.storage.Close(); err != nil {
			svc.logger.Error().Err(err).Msg("[aggregatorService] failed to close storage")
		}
	}
	if svc.postgres != nil {
		svc.postgres.Close()
	}
	return nil
}

func (svc *Service) QuoteForward(ctx context.Context, plan domain.Plan, amountIn *uint256.Int) (*domain.Quote, error) {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	return svc.mega.QuoteForward(ctx, plan, amountIn)
}

func (svc *Service) QuoteReverse(ctx context.Context, plan domain.Plan, amountOut *uint256.Int) (*domain.Quote, error) {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	return svc.mega.QuoteReverse(ctx, plan, amountOut)
}

// Execute runs req against the engine's state. A failed execution leaves no
// observable change in pools or balances. A zero deadline means now plus the
// configured default.
func (svc *Service) Execute(ctx context.Context, req domain.ExecuteRequest) (*domain.ExecutionResult, error) {
	if req.Deadline == 0 {
		req.Deadline = svc.clock.Now().Add(svc.defaultDeadline).Unix()
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()

	restores := make([]func(), len(svc.snapshotters))
	for i, s := range svc.snapshotters {
		restores[i] = s.Snapshot()
	}
	out, err := svc.executor.ExecutePaths(ctx, req)
	if err != nil {
		for i := len(restores) - 1; i >= 0; i-- {
			restores[i]()
		}
		return nil, err
	}

	hash, err := req.Plan.FingerprintHex()
	if err != nil {
		svc.logger.Warn().Err(err).Msg("[aggregatorService] failed to fingerprint executed plan")
	}
	result := &domain.ExecutionResult{AmountIn: req.AmountIn, AmountOut: out, PlanHash: hash}

	minOut := req.MinAmountOut
	if minOut == nil {
		minOut = new(uint256.Int)
	}
	receipt := domain.ExecutionReceipt{
		ID:           uuid.NewString(),
		PlanHash:     hash,
		TokenIn:      domain.FormatToken(req.TokenIn),
		TokenOut:     domain.FormatToken(req.TokenOut),
		AmountIn:     req.AmountIn.Dec(),
		AmountOut:    out.Dec(),
		MinAmountOut: minOut.Dec(),
		Payer:        req.Payer.String(),
		Recipient:    req.Recipient.String(),
		ExecutedAt:   svc.clock.Now().UTC(),
	}
	// The swap has happened; a lost receipt is logged by the sink, not rolled back.
	if err := svc.receipts.Record(ctx, receipt); err == nil {
		result.ReceiptID = receipt.ID
	}
	return result, nil
}

func (svc *Service) UpsertPool(p *domain.PoolState) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	if p.UpdatedAt == 0 {
		p.UpdatedAt = svc.clock.Now().Unix()
	}
	return svc.pools.Upsert(p)
}

func (svc *Service) GetPool(ctx context.Context, address solana.PublicKey) (*domain.PoolState, error) {
	return svc.pools.Pool(ctx, address)
}

func (svc *Service) Pools() []*domain.PoolState {
	return svc.pools.All()
}

func (svc *Service) Venues() []market.Venue {
	return svc.venues.Venues()
}

// Fund credits amount of token to owner on the engine's ledger.
func (svc *Service) Fund(ctx context.Context, token, owner solana.PublicKey, amount *uint256.Int) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return svc.ledger.Credit(ctx, token, owner, amount)
}

func (svc *Service) BalanceOf(ctx context.Context, token, owner solana.PublicKey) (*uint256.Int, error) {
	return svc.ledger.BalanceOf(ctx, token, owner)
}

func (svc *Service) Custody() solana.PublicKey {
	return svc.executor.Custody()
}
