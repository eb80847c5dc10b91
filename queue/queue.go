// Package queue implements the ordered delivery channel between webhook
// ingestion and event processing: a FIFO queue partitioned by ordering key
// with content-based deduplication, bounded redelivery and a dead-letter
// sink for envelopes that exhaust their delivery budget.
package queue

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gammazero/workerpool"

	"threadlink/models"
)

// Consumer processes one delivered envelope. A nil return acknowledges the
// delivery; an error makes it eligible for redelivery within the envelope's
// receive budget.
type Consumer func(ctx context.Context, envelope *models.DeliveryEnvelope) error

// DeadLetterSink receives envelopes that exhausted their redelivery budget
type DeadLetterSink interface {
	HandleDeadLetter(envelope *models.DeliveryEnvelope, reason error)
}

type Config struct {
	DedupWindow     time.Duration
	MaxReceiveCount int
	ConsumerTimeout time.Duration
}

// DeliveryQueue delivers envelopes to the consumer with per-partition FIFO
// ordering: each ordering key owns a single-worker pool, so envelopes
// sharing a key are processed strictly in enqueue order while different
// keys run concurrently. This single-flight property is what serializes
// conflicting commands on the same thread without any store-level locking.
//
// Partitions are created lazily and reaped once their last envelope settles,
// so the partition map tracks only threads with work in flight rather than
// every thread ever seen.
type DeliveryQueue struct {
	config      Config
	consumer    Consumer
	deadLetters DeadLetterSink

	mu         sync.Mutex
	partitions map[string]*partition
	seenTokens map[string]time.Time
	stopped    bool
}

// partition is one ordering key's single-worker pool plus the number of
// envelopes accepted for it that have not yet settled
type partition struct {
	pool    *workerpool.WorkerPool
	pending int
}

func New(config Config, consumer Consumer, deadLetters DeadLetterSink) *DeliveryQueue {
	if config.MaxReceiveCount < 1 {
		config.MaxReceiveCount = 1
	}
	return &DeliveryQueue{
		config:      config,
		consumer:    consumer,
		deadLetters: deadLetters,
		partitions:  make(map[string]*partition),
		seenTokens:  make(map[string]time.Time),
	}
}

// Enqueue submits an envelope for delivery. Two envelopes carrying the same
// dedup token within the dedup window collapse into a single delivery.
// Returns an error only when the queue is shut down; the webhook boundary
// surfaces that as retryable so the chat platform redelivers.
func (q *DeliveryQueue) Enqueue(envelope models.DeliveryEnvelope) error {
	q.mu.Lock()

	if q.stopped {
		q.mu.Unlock()
		return fmt.Errorf("delivery queue is shut down")
	}

	q.pruneSeenTokensLocked()
	if enqueuedAt, seen := q.seenTokens[envelope.DedupToken]; seen {
		q.mu.Unlock()
		log.Printf("📋 Collapsed duplicate envelope for group %s (first enqueued at %s)",
			envelope.GroupID, enqueuedAt.Format(time.RFC3339))
		return nil
	}
	q.seenTokens[envelope.DedupToken] = time.Now()

	part := q.partitionLocked(envelope.GroupID)
	part.pending++
	q.mu.Unlock()

	part.pool.Submit(func() {
		q.deliver(envelope)
		q.releasePartition(envelope.GroupID)
	})

	return nil
}

// deliver runs on a partition's single worker. Redelivery happens inline so
// a failing envelope stays ahead of younger envelopes in its partition
// until it is acknowledged or dead-lettered.
func (q *DeliveryQueue) deliver(envelope models.DeliveryEnvelope) {
	for {
		envelope.ReceiveCount++

		err := q.deliverOnce(&envelope)
		if err == nil {
			return
		}

		log.Printf("❌ Delivery attempt %d/%d failed for group %s: %v",
			envelope.ReceiveCount, q.config.MaxReceiveCount, envelope.GroupID, err)

		if envelope.ReceiveCount >= q.config.MaxReceiveCount {
			log.Printf("💀 Envelope for group %s exhausted its delivery budget, dead-lettering", envelope.GroupID)
			q.deadLetters.HandleDeadLetter(&envelope, err)
			return
		}
	}
}

func (q *DeliveryQueue) deliverOnce(envelope *models.DeliveryEnvelope) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("consumer panicked: %v", r)
		}
	}()

	ctx := context.Background()
	if q.config.ConsumerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.config.ConsumerTimeout)
		defer cancel()
	}

	return q.consumer(ctx, envelope)
}

func (q *DeliveryQueue) partitionLocked(groupID string) *partition {
	part, ok := q.partitions[groupID]
	if !ok {
		// One worker per partition: FIFO within the group, free concurrency
		// across groups.
		part = &partition{pool: workerpool.New(1)}
		q.partitions[groupID] = part
	}
	return part
}

// releasePartition settles one envelope for the group and reaps the
// partition once nothing is pending, so idle threads don't keep a worker
// goroutine alive. It runs on the partition's own worker, so the pool is
// stopped from the side.
func (q *DeliveryQueue) releasePartition(groupID string) {
	q.mu.Lock()
	part, ok := q.partitions[groupID]
	if !ok {
		q.mu.Unlock()
		return
	}
	part.pending--
	if part.pending > 0 || q.stopped {
		q.mu.Unlock()
		return
	}
	delete(q.partitions, groupID)
	q.mu.Unlock()

	go part.pool.StopWait()
}

func (q *DeliveryQueue) pruneSeenTokensLocked() {
	if q.config.DedupWindow <= 0 {
		return
	}
	cutoff := time.Now().Add(-q.config.DedupWindow)
	for token, enqueuedAt := range q.seenTokens {
		if enqueuedAt.Before(cutoff) {
			delete(q.seenTokens, token)
		}
	}
}

// Stop drains all partitions and blocks until in-flight deliveries finish
func (q *DeliveryQueue) Stop() {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return
	}
	q.stopped = true
	pools := make([]*workerpool.WorkerPool, 0, len(q.partitions))
	for _, part := range q.partitions {
		pools = append(pools, part.pool)
	}
	q.mu.Unlock()

	for _, pool := range pools {
		pool.StopWait()
	}
	log.Printf("✅ Delivery queue stopped (%d partitions drained)", len(pools))
}
