package aggregator

import (
	"time"
)

func (svc *Service) loadPoolsFromStorage() {
	pools, err := svc.storage.LoadAllPools()
	if err != nil {
		svc.logger.Error().Err(err).Msg("[aggregatorService] failed to load pools from storage")
		return
	}

	loaded := 0
	for _, p := range pools {
		if err := svc.pools.Upsert(p); err != nil {
			svc.logger.Warn().Err(err).Str("pool", p.Address.String()).Msg("[aggregatorService] skipping stored pool")
			continue
		}
		loaded++
	}
	// Freshly loaded pools match storage already.
	svc.pools.TakeDirty()

	svc.logger.Info().Int("count", loaded).Msg("[aggregatorService] loaded pools from storage")
}

func (svc *Service) processPersistence() {
	defer svc.wg.Done()
	ticker := time.NewTicker(svc.persistInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			svc.persistPendingPools()
		case <-svc.stopCh:
			return
		}
	}
}

func (svc *Service) persistPendingPools() {
	pools := svc.pools.TakeDirty()
	if len(pools) == 0 {
		return
	}

	if err := svc.storage.SavePoolBatch(pools); err != nil {
		svc.logger.Error().Err(err).Int("count", len(pools)).Msg("[aggregatorService] failed to persist pools")
		svc.pools.Requeue(pools)
		return
	}

	svc.logger.Debug().Int("count", len(pools)).Msg("[aggregatorService] persisted pools to storage")
}
