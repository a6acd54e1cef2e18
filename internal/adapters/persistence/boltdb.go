package persistence

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	boltdb "github.com/andrew-solarstorm/bolt-db"
	"github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"

	"github.com/hxuan190/route-aggregator/internal/domain"
	"github.com/hxuan190/route-aggregator/internal/metrics"
)

const (
	PoolsBucket    = "pools"
	ReceiptsBucket = "receipts"

	DefaultDBPath = "./data/route-aggregator.db"
)

// Storage keeps pool states and execution receipts in bolt. Values are the
// JSON forms (domain.PoolSpec, domain.ExecutionReceipt).
type Storage struct {
	db     *boltdb.BoltDatabase
	dbPath string
}

func NewStorage(dbPath string) (*Storage, error) {
	if dbPath == "" {
		dbPath = DefaultDBPath
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db := boltdb.NewBoltDatabase(dbPath)
	if db == nil {
		return nil, fmt.Errorf("failed to open database at %s", dbPath)
	}

	log.Info().Str("path", dbPath).Msg("[aggregatorStorage] opened database")

	return &Storage{
		db:     db,
		dbPath: dbPath,
	}, nil
}

func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Storage) SavePool(pool *domain.PoolState) error {
	data, err := sonic.Marshal(domain.SpecFromState(pool))
	if err != nil {
		return fmt.Errorf("failed to marshal pool: %w", err)
	}
	if err := s.db.Set(PoolsBucket, []byte(pool.Address.String()), data); err != nil {
		return err
	}
	metrics.PoolsPersisted.Inc()
	return nil
}

func (s *Storage) SavePoolBatch(pools []*domain.PoolState) error {
	if len(pools) == 0 {
		return nil
	}

	batch := s.db.NewBatch()
	for _, pool := range pools {
		data, err := sonic.Marshal(domain.SpecFromState(pool))
		if err != nil {
			return fmt.Errorf("failed to marshal pool %s: %w", pool.Address.String(), err)
		}

		value := data
		op := &boltdb.WriteOperation{
			Bucket: []byte(PoolsBucket),
			Key:    []byte(pool.Address.String()),
			Value:  &value,
			Op:     boltdb.OpSet,
		}
		if err := batch.Add(op); err != nil {
			return fmt.Errorf("failed to add pool %s to batch: %w", pool.Address.String(), err)
		}
	}

	if err := batch.Execute(); err != nil {
		log.Error().Err(err).Int("count", len(pools)).Msg("[aggregatorStorage] FAILED to execute batch")
		return err
	}

	metrics.PoolsPersisted.Add(float64(len(pools)))
	log.Debug().Int("count", len(pools)).Msg("[aggregatorStorage] saved pool batch")
	return nil
}

// LoadAllPools returns every stored pool that decodes and validates. Broken
// entries are logged and skipped.
func (s *Storage) LoadAllPools() ([]*domain.PoolState, error) {
	data, err := s.db.List(PoolsBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to list pools: %w", err)
	}

	pools := make([]*domain.PoolState, 0, len(data))
	unmarshalFailed := 0
	conversionFailed := 0

	for address, value := range data {
		var spec domain.PoolSpec
		if err := sonic.Unmarshal(value, &spec); err != nil {
			log.Error().Str("address", address).Err(err).Msg("[aggregatorStorage] failed to unmarshal pool, skipping")
			unmarshalFailed++
			continue
		}

		pool, err := spec.ToState()
		if err != nil {
			log.Error().Str("address", address).Err(err).Msg("[aggregatorStorage] failed to convert stored pool, skipping")
			conversionFailed++
			continue
		}

		pools = append(pools, pool)
	}

	if unmarshalFailed > 0 || conversionFailed > 0 {
		log.Error().
			Int("total_in_db", len(data)).
			Int("loaded", len(pools)).
			Int("unmarshal_failed", unmarshalFailed).
			Int("conversion_failed", conversionFailed).
			Msg("[aggregatorStorage] pool loading completed with errors")
	} else {
		log.Info().
			Int("total_in_db", len(data)).
			Int("loaded", len(pools)).
			Msg("[aggregatorStorage] pool loading completed successfully")
	}

	return pools, nil
}

func (s *Storage) GetPoolCount() (int, error) {
	data, err := s.db.List(PoolsBucket)
	if err != nil {
		return 0, err
	}
	return len(data), nil
}

func (s *Storage) Name() string {
	return "bolt"
}

// Record stores an execution receipt keyed by its id.
func (s *Storage) Record(_ context.Context, receipt domain.ExecutionReceipt) error {
	data, err := sonic.Marshal(receipt)
	if err != nil {
		return fmt.Errorf("failed to marshal receipt: %w", err)
	}
	return s.db.Set(ReceiptsBucket, []byte(receipt.ID), data)
}

// ListReceipts returns stored receipts, oldest first.
func (s *Storage) ListReceipts() ([]domain.ExecutionReceipt, error) {
	data, err := s.db.List(ReceiptsBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}
	out := make([]domain.ExecutionReceipt, 0, len(data))
	for id, value := range data {
		var r domain.ExecutionReceipt
		if err := sonic.Unmarshal(value, &r); err != nil {
			log.Warn().Str("id", id).Err(err).Msg("[aggregatorStorage] failed to unmarshal receipt, skipping")
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExecutedAt.Before(out[j].ExecutedAt) })
	return out, nil
}
