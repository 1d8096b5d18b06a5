package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/hibiken/asynq"
	"github.com/teachmate/backend/internal/config"
	"github.com/teachmate/backend/pkg/logger"
)

const (
	TaskTypePromotion = "matching:promote"
)

// PromotionTask asks for one match to be checked for promotion at RunAt,
// which is the linked booking's end time. The periodic sweep remains the
// catch-all; this path only makes promotion prompt.
type PromotionTask struct {
	MatchingID uint      `json:"matching_id"`
	RunAt      time.Time `json:"run_at"`
}

// TaskQueue defines the interface for deferred promotion processing
type TaskQueue interface {
	// Schedule queues the task for execution at task.RunAt
	Schedule(task *PromotionTask) error
	// IsAsync returns true if the queue survives process restarts
	IsAsync() bool
	// Close gracefully shuts down the queue
	Close() error
}

// Global task queue instance
var (
	globalTaskQueue TaskQueue
	taskQueueOnce   sync.Once
)

// InitTaskQueue initializes the global task queue based on config
func InitTaskQueue(cfg *config.Config) TaskQueue {
	taskQueueOnce.Do(func() {
		if cfg.Redis.Enabled {
			queue, err := NewAsyncQueue(&cfg.Redis)
			if err != nil {
				logger.Infof("[TaskQueue] Redis unavailable, falling back to in-process timers: %v", err)
				globalTaskQueue = NewTimerQueue()
			} else {
				logger.Infof("[TaskQueue] Async queue initialized with Redis at %s", cfg.Redis.Addr)
				globalTaskQueue = queue
			}
		} else {
			logger.Infof("[TaskQueue] In-process timer queue initialized (Redis disabled)")
			globalTaskQueue = NewTimerQueue()
		}
	})
	return globalTaskQueue
}

// GetTaskQueue returns the global task queue instance
func GetTaskQueue() TaskQueue {
	return globalTaskQueue
}

// AsyncQueue implements TaskQueue using asynq (Redis-based)
type AsyncQueue struct {
	client *asynq.Client
}

// NewAsyncQueue creates a new Redis-based async queue
func NewAsyncQueue(cfg *config.RedisConfig) (*AsyncQueue, error) {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	client := asynq.NewClient(redisOpt)

	// Test connection by pinging Redis
	inspector := asynq.NewInspector(redisOpt)
	defer inspector.Close()

	_, err := inspector.Queues()
	if err != nil {
		client.Close()
		return nil, err
	}

	return &AsyncQueue{client: client}, nil
}

// Schedule enqueues the promotion check to run at the task's RunAt time.
func (q *AsyncQueue) Schedule(task *PromotionTask) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}

	t := asynq.NewTask(TaskTypePromotion, payload)
	info, err := q.client.Enqueue(t,
		asynq.Queue("default"),
		asynq.ProcessAt(task.RunAt),
		asynq.MaxRetry(3),
	)
	if err != nil {
		return err
	}

	logger.Infof("[AsyncQueue] Promotion task enqueued: id=%s, matching_id=%d, run_at=%s",
		info.ID, task.MatchingID, task.RunAt.Format(time.RFC3339))
	return nil
}

// IsAsync returns true for async queue
func (q *AsyncQueue) IsAsync() bool {
	return true
}

// Close closes the async queue client
func (q *AsyncQueue) Close() error {
	return q.client.Close()
}

// TimerQueue implements TaskQueue with in-process timers (no Redis). Timers
// do not survive restarts; the periodic sweep covers anything lost.
type TimerQueue struct {
	processor func(context.Context, *PromotionTask) error
	mu        sync.Mutex
	timers    []*time.Timer
	closed    bool
}

// NewTimerQueue creates a new in-process timer queue
func NewTimerQueue() *TimerQueue {
	return &TimerQueue{}
}

// SetProcessor sets the function invoked when a timer fires
func (q *TimerQueue) SetProcessor(processor func(context.Context, *PromotionTask) error) {
	q.processor = processor
}

// Schedule arms a timer for the task's RunAt time. Times already in the
// past fire immediately.
func (q *TimerQueue) Schedule(task *PromotionTask) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	if q.processor == nil {
		logger.Infof("[TimerQueue] Warning: no processor set, task will be dropped")
		return nil
	}

	delay := time.Until(task.RunAt)
	if delay < 0 {
		delay = 0
	}

	timer := time.AfterFunc(delay, func() {
		if err := q.processor(context.Background(), task); err != nil {
			logger.Infof("[TimerQueue] Promotion task failed: %v", err)
		}
	})
	q.timers = append(q.timers, timer)
	return nil
}

// IsAsync returns false for the in-process queue
func (q *TimerQueue) IsAsync() bool {
	return false
}

// Close stops all pending timers
func (q *TimerQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	for _, t := range q.timers {
		t.Stop()
	}
	q.timers = nil
	return nil
}
