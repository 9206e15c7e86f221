package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mautops/ledger-bridge/internal/logger"
	"github.com/mautops/ledger-bridge/internal/metrics"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var (
	// ErrClosed 队列已关闭,不再接受新任务
	ErrClosed = errors.New("submission queue is closed")
	// ErrJobTimeout 任务超过执行时限被放弃
	ErrJobTimeout = errors.New("submission job timed out")
)

// abandonGrace 超时后等待任务响应取消的时间,超过后队列继续前进
const abandonGrace = 5 * time.Second

var tracer = otel.Tracer("github.com/mautops/ledger-bridge/internal/queue")

// Options 串行队列配置
type Options struct {
	JobTimeout time.Duration // 0 表示不限制
	Logger     *logrus.Logger
}

type job struct {
	ctx        context.Context
	run        func(ctx context.Context) error
	done       chan error
	enqueuedAt time.Time
}

// Serializer 单工作者 FIFO 队列
// 同一时刻只有一个任务在执行; 任务失败或 panic 不影响后续任务
type Serializer struct {
	mu       sync.Mutex
	pending  []*job
	draining bool
	closed   bool
	wg       sync.WaitGroup

	jobTimeout time.Duration
	logger     *logrus.Logger
}

// NewSerializer 创建串行队列
func NewSerializer(opts Options) *Serializer {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	return &Serializer{
		jobTimeout: opts.JobTimeout,
		logger:     log,
	}
}

// Enqueue 将任务加入队列并等待其结果
// 任务一旦入队就会执行,调用方的 ctx 结束只会停止等待,不会取消任务
func Enqueue[T any](ctx context.Context, s *Serializer, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var result T

	done, err := s.submit(ctx, func(jobCtx context.Context) error {
		v, err := fn(jobCtx)
		if err != nil {
			return err
		}
		result = v
		return nil
	})
	if err != nil {
		return zero, err
	}

	select {
	case err := <-done:
		if err != nil {
			return zero, err
		}
		return result, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Pending 返回等待执行的任务数（不含正在执行的任务）
func (s *Serializer) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Close 停止接受新任务,并等待已入队任务执行完毕
func (s *Serializer) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *Serializer) submit(ctx context.Context, run func(context.Context) error) (<-chan error, error) {
	j := &job{
		ctx:        context.WithoutCancel(ctx),
		run:        run,
		done:       make(chan error, 1),
		enqueuedAt: time.Now(),
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	s.pending = append(s.pending, j)
	depth := len(s.pending)
	start := !s.draining
	if start {
		s.draining = true
		s.wg.Add(1)
	}
	s.mu.Unlock()

	metrics.SetQueueDepth(depth)
	if start {
		go s.drain()
	}
	return j.done, nil
}

// drain 依次执行队列中的任务,队列为空时退出
func (s *Serializer) drain() {
	defer s.wg.Done()

	for {
		s.mu.Lock()
		if len(s.pending) == 0 {
			s.draining = false
			s.mu.Unlock()
			metrics.SetQueueDepth(0)
			return
		}
		j := s.pending[0]
		s.pending[0] = nil
		s.pending = s.pending[1:]
		depth := len(s.pending)
		s.mu.Unlock()

		metrics.SetQueueDepth(depth)
		j.done <- s.execute(j)
	}
}

// execute 执行单个任务,处理 panic 与超时
func (s *Serializer) execute(j *job) error {
	ctx, span := tracer.Start(j.ctx, "queue.job")
	defer span.End()

	wait := time.Since(j.enqueuedAt)
	span.SetAttributes(attribute.Int64("queue.wait_ms", wait.Milliseconds()))

	var cancel context.CancelFunc
	if s.jobTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, s.jobTimeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	entry := logger.FromContext(j.ctx, s.logger)
	start := time.Now()

	result := make(chan error, 1)
	go func() {
		result <- runSafely(ctx, j.run)
	}()

	var err error
	outcome := "ok"
	select {
	case err = <-result:
	case <-ctx.Done():
		// 只有超时会走到这里: 任务上下文已与调用方的取消解耦
		select {
		case err = <-result:
			if err != nil {
				err = fmt.Errorf("%w after %s: %v", ErrJobTimeout, s.jobTimeout, err)
			}
		case <-time.After(abandonGrace):
			err = fmt.Errorf("%w after %s", ErrJobTimeout, s.jobTimeout)
			entry.Warn("submission job ignored cancellation, abandoning it")
		}
		if err != nil {
			outcome = "timeout"
		}
	}

	if err != nil {
		if outcome == "ok" {
			outcome = "error"
			var p *panicError
			if errors.As(err, &p) {
				outcome = "panic"
			}
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		entry.WithError(err).WithFields(logrus.Fields{
			"outcome":  outcome,
			"duration": time.Since(start).String(),
		}).Warn("submission job failed")
	} else {
		entry.WithFields(logrus.Fields{
			"wait":     wait.String(),
			"duration": time.Since(start).String(),
		}).Debug("submission job finished")
	}

	metrics.RecordJob(outcome, time.Since(start).Seconds())
	return err
}

// panicError 任务 panic 转换成的错误
type panicError struct {
	value interface{}
}

func (e *panicError) Error() string {
	return fmt.Sprintf("submission job panicked: %v", e.value)
}

func runSafely(ctx context.Context, run func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r}
		}
	}()
	return run(ctx)
}
