package receipts

import (
	"context"

	"github.com/hxuan190/route-aggregator/internal/common"
	"github.com/hxuan190/route-aggregator/internal/domain"
	"github.com/hxuan190/route-aggregator/internal/metrics"
)

// Observed counts writes to the wrapped sink by outcome.
type Observed struct {
	sink Sink
	log  *common.ServiceLogger
}

func NewObserved(sink Sink) *Observed {
	if sink == nil {
		sink = Noop{}
	}
	return &Observed{sink: sink, log: common.NewComponentLogger("receipts")}
}

func (o *Observed) Name() string { return o.sink.Name() }

func (o *Observed) Record(ctx context.Context, r domain.ExecutionReceipt) error {
	err := o.sink.Record(ctx, r)
	status := "ok"
	if err != nil {
		status = "error"
		o.log.Error().Err(err).Str("sink", o.sink.Name()).Str("receipt", r.ID).Msg("[Receipts] failed to record receipt")
	}
	metrics.ReceiptsWritten.WithLabelValues(o.sink.Name(), status).Inc()
	return err
}
