package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSerializer_FIFO 测试任务按入队顺序执行
func TestSerializer_FIFO(t *testing.T) {
	s := NewSerializer(Options{})
	defer s.Close()

	var mu sync.Mutex
	var order []string
	started := make(chan struct{})
	gate := make(chan struct{})

	record := func(name string) func(context.Context) (string, error) {
		return func(context.Context) (string, error) {
			if name == "A" {
				close(started)
				<-gate
			}
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return name, nil
		}
	}

	var wg sync.WaitGroup
	results := make([]string, 3)
	enqueue := func(i int, name string) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := Enqueue(context.Background(), s, record(name))
			assert.NoError(t, err)
			results[i] = v
		}()
	}

	// A 占用队列后再依次入队 B、C
	enqueue(0, "A")
	<-started
	enqueue(1, "B")
	require.Eventually(t, func() bool { return s.Pending() == 1 }, time.Second, time.Millisecond)
	enqueue(2, "C")
	require.Eventually(t, func() bool { return s.Pending() == 2 }, time.Second, time.Millisecond)

	close(gate)
	wg.Wait()

	assert.Equal(t, []string{"A", "B", "C"}, order)
	assert.Equal(t, []string{"A", "B", "C"}, results)
}

// TestSerializer_FaultIsolation 测试失败任务不影响后续任务
func TestSerializer_FaultIsolation(t *testing.T) {
	s := NewSerializer(Options{})
	defer s.Close()

	boom := errors.New("ledger write failed")
	_, err := Enqueue(context.Background(), s, func(context.Context) (int, error) {
		return 0, boom
	})
	assert.ErrorIs(t, err, boom)

	v, err := Enqueue(context.Background(), s, func(context.Context) (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

// TestSerializer_Panic 测试 panic 转换为错误且队列继续
func TestSerializer_Panic(t *testing.T) {
	s := NewSerializer(Options{})
	defer s.Close()

	_, err := Enqueue(context.Background(), s, func(context.Context) (int, error) {
		panic("unexpected nil sheet")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected nil sheet")

	v, err := Enqueue(context.Background(), s, func(context.Context) (string, error) {
		return "next", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "next", v)
}

// TestSerializer_SingleFlight 测试同一时刻只有一个任务执行
func TestSerializer_SingleFlight(t *testing.T) {
	s := NewSerializer(Options{})
	defer s.Close()

	var running, maxRunning int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = Enqueue(context.Background(), s, func(context.Context) (struct{}, error) {
				n := atomic.AddInt32(&running, 1)
				for {
					m := atomic.LoadInt32(&maxRunning)
					if n <= m || atomic.CompareAndSwapInt32(&maxRunning, m, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&running, -1)
				return struct{}{}, nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&maxRunning))
}

// TestSerializer_Timeout 测试超时任务被放弃,队列继续前进
func TestSerializer_Timeout(t *testing.T) {
	s := NewSerializer(Options{JobTimeout: 20 * time.Millisecond})
	defer s.Close()

	_, err := Enqueue(context.Background(), s, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	assert.ErrorIs(t, err, ErrJobTimeout)

	v, err := Enqueue(context.Background(), s, func(context.Context) (int, error) {
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

// TestSerializer_CallerCancelDoesNotCancelJob 测试调用方取消不影响已入队任务
func TestSerializer_CallerCancelDoesNotCancelJob(t *testing.T) {
	s := NewSerializer(Options{})

	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	finished := make(chan error, 1)

	go func() {
		_, err := Enqueue(ctx, s, func(jobCtx context.Context) (int, error) {
			close(started)
			time.Sleep(20 * time.Millisecond)
			finished <- jobCtx.Err()
			return 1, nil
		})
		assert.ErrorIs(t, err, context.Canceled)
	}()

	<-started
	cancel()

	select {
	case err := <-finished:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("job did not finish")
	}
	s.Close()
}

// TestSerializer_Close 测试关闭后拒绝新任务
func TestSerializer_Close(t *testing.T) {
	s := NewSerializer(Options{})

	v, err := Enqueue(context.Background(), s, func(context.Context) (int, error) { return 1, nil })
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	s.Close()

	_, err = Enqueue(context.Background(), s, func(context.Context) (int, error) { return 2, nil })
	assert.ErrorIs(t, err, ErrClosed)
}
