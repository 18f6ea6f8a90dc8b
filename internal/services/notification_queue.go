package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yashpatel08/railsathi/internal/platform/ctxutil"
	"github.com/yashpatel08/railsathi/internal/platform/logger"
)

var ErrQueueClosed = errors.New("notification queue closed")

// NotificationQueue hands complaint snapshots to background delivery. Enqueue
// never waits for delivery.
type NotificationQueue interface {
	Enqueue(ctx context.Context, snap ComplaintSnapshot) error
	Close(ctx context.Context) error
}

// runNotify executes one delivery with its own timeout. Panics are logged and
// swallowed.
func runNotify(ctx context.Context, log *logger.Logger, d NotificationDispatcher, timeout time.Duration, snap ComplaintSnapshot) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("notification panic", "complain_id", snap.ComplainID, "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
		}
	}()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	res, err := d.Notify(ctx, snap)
	if err != nil {
		log.Error("complaint notification failed", "complain_id", snap.ComplainID, "error", err)
		return
	}
	log.Debug("complaint notification done", "complain_id", snap.ComplainID, "sent", res.Sent, "failed", res.Failed)
}

type memoryNotificationQueue struct {
	log        *logger.Logger
	dispatcher NotificationDispatcher
	timeout    time.Duration
	sem        chan struct{}

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewMemoryNotificationQueue runs deliveries on at most workers goroutines at
// a time. Work still queued when the process exits is lost.
func NewMemoryNotificationQueue(log *logger.Logger, dispatcher NotificationDispatcher, workers int, timeout time.Duration) NotificationQueue {
	if workers <= 0 {
		workers = 4
	}
	return &memoryNotificationQueue{
		log:        log.With("service", "MemoryNotificationQueue"),
		dispatcher: dispatcher,
		timeout:    timeout,
		sem:        make(chan struct{}, workers),
	}
}

func (q *memoryNotificationQueue) Enqueue(ctx context.Context, snap ComplaintSnapshot) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	q.wg.Add(1)
	q.mu.Unlock()

	bg := ctxutil.Detach(ctx)
	go func() {
		defer q.wg.Done()
		q.sem <- struct{}{}
		defer func() { <-q.sem }()
		runNotify(bg, q.log, q.dispatcher, q.timeout, snap)
	}()
	return nil
}

// Close stops accepting work and waits for in-flight deliveries or ctx.
func (q *memoryNotificationQueue) Close(ctx context.Context) error {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctxutil.Default(ctx).Done():
		return ctx.Err()
	}
}

type RedisQueueConfig struct {
	Key         string
	PollTimeout time.Duration
	Timeout     time.Duration
}

// RedisNotificationQueue is a NotificationQueue with a consumer loop.
type RedisNotificationQueue interface {
	NotificationQueue
	Start(ctx context.Context)
}

type redisNotificationQueue struct {
	log        *logger.Logger
	rdb        goredis.UniversalClient
	dispatcher NotificationDispatcher
	key        string
	poll       time.Duration
	timeout    time.Duration

	mu      sync.Mutex
	started bool
	closed  bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewRedisNotificationQueue pushes snapshots onto a Redis list. Deliveries run
// in the consumer loop started by Start, in this or another process.
func NewRedisNotificationQueue(log *logger.Logger, rdb goredis.UniversalClient, dispatcher NotificationDispatcher, cfg RedisQueueConfig) (RedisNotificationQueue, error) {
	if rdb == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if cfg.Key == "" {
		cfg.Key = "railsathi:notify:complaints"
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 5 * time.Second
	}
	return &redisNotificationQueue{
		log:        log.With("service", "RedisNotificationQueue"),
		rdb:        rdb,
		dispatcher: dispatcher,
		key:        cfg.Key,
		poll:       cfg.PollTimeout,
		timeout:    cfg.Timeout,
		done:       make(chan struct{}),
	}, nil
}

func (q *redisNotificationQueue) Enqueue(ctx context.Context, snap ComplaintSnapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return q.rdb.LPush(ctx, q.key, raw).Err()
}

// Start launches the consumer loop. Calls after the first, or after Close,
// do nothing.
func (q *redisNotificationQueue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started || q.closed {
		return
	}
	q.started = true
	ctx, q.cancel = context.WithCancel(ctxutil.Detach(ctx))
	go q.consume(ctx)
}

func (q *redisNotificationQueue) consume(ctx context.Context) {
	defer close(q.done)
	q.log.Info("notification consumer started", "key", q.key)
	for {
		if ctx.Err() != nil {
			return
		}
		vals, err := q.rdb.BRPop(ctx, q.poll, q.key).Result()
		if err != nil {
			if errors.Is(err, goredis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			q.log.Warn("notification queue pop failed", "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		if len(vals) != 2 {
			continue
		}
		q.handle(ctx, []byte(vals[1]))
	}
}

func (q *redisNotificationQueue) handle(ctx context.Context, payload []byte) {
	var snap ComplaintSnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		q.log.Warn("dropping undecodable notification payload", "error", err, "bytes", len(payload))
		return
	}
	runNotify(ctxutil.Detach(ctx), q.log, q.dispatcher, q.timeout, snap)
}

// Close stops the consumer (finishing the delivery in progress) and waits
// for it up to ctx.
func (q *redisNotificationQueue) Close(ctx context.Context) error {
	q.mu.Lock()
	q.closed = true
	started, cancel := q.started, q.cancel
	q.mu.Unlock()
	if !started {
		return nil
	}
	cancel()
	select {
	case <-q.done:
		return nil
	case <-ctxutil.Default(ctx).Done():
		return ctx.Err()
	}
}
