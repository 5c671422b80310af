package usecase

import (
	"context"
	"sync"
	"time"

	"RiskDesk/internal/domain/models"
	"RiskDesk/internal/domain/repository"
	"RiskDesk/pkg/logger"
)

const (
	defaultBatchSize    = 50
	defaultBatchTimeout = 2 * time.Second
	submitQueueDepth    = 1024
	flushTimeout        = 5 * time.Second
)

// DecisionProcessor drains decision events to the configured sink in
// batches. Delivery is best-effort: a full queue drops the event and a sink
// failure is logged and counted, never surfaced to the request path.
type DecisionProcessor struct {
	sink    repository.DecisionSink
	metrics repository.Metrics
	backend string
	batchSz int
	batchTO time.Duration
	log     *logger.Logger

	events chan *models.DecisionEvent
	wg     sync.WaitGroup

	closeOnce sync.Once
}

// NewDecisionProcessor starts the background drain loop.
func NewDecisionProcessor(
	sink repository.DecisionSink,
	metrics repository.Metrics,
	backend string,
	batchSz int,
	batchTO time.Duration,
	log *logger.Logger,
) *DecisionProcessor {
	if batchSz <= 0 {
		batchSz = defaultBatchSize
	}
	if batchTO <= 0 {
		batchTO = defaultBatchTimeout
	}

	p := &DecisionProcessor{
		sink:    sink,
		metrics: metrics,
		backend: backend,
		batchSz: batchSz,
		batchTO: batchTO,
		log:     log,
		events:  make(chan *models.DecisionEvent, submitQueueDepth),
	}

	p.wg.Add(1)
	go p.run()
	return p
}

// Submit enqueues an event without blocking. Events are dropped when the
// queue is full.
func (p *DecisionProcessor) Submit(event *models.DecisionEvent) {
	if event == nil {
		return
	}
	select {
	case p.events <- event:
	default:
		p.metrics.RecordError("decision_queue_full")
	}
}

// Close flushes pending events and stops the drain loop.
func (p *DecisionProcessor) Close() {
	p.closeOnce.Do(func() {
		close(p.events)
		p.wg.Wait()
		_ = p.sink.Close()
	})
}

func (p *DecisionProcessor) run() {
	defer p.wg.Done()

	batch := make([]*models.DecisionEvent, 0, p.batchSz)
	ticker := time.NewTicker(p.batchTO)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-p.events:
			if !ok {
				p.flush(batch)
				return
			}
			batch = append(batch, event)
			if len(batch) >= p.batchSz {
				p.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				p.flush(batch)
				batch = batch[:0]
			}
		}
	}
}

func (p *DecisionProcessor) flush(batch []*models.DecisionEvent) {
	if len(batch) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()

	start := time.Now()
	if err := p.sink.SendBatch(ctx, batch); err != nil {
		p.metrics.RecordError("decision_sink")
		p.log.Error("decision batch dropped",
			logger.String("backend", p.backend),
			logger.Int("events", len(batch)),
			logger.Error(err),
		)
		return
	}

	for range batch {
		p.metrics.RecordEventSent(p.backend)
	}
	p.metrics.RecordLatency("decision_flush", time.Since(start).Seconds())
}
