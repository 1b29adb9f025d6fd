// Файл: internal/workers/pool.go
// Пул фоновых задач с повторами. Доставка at-least-once: задача
// повторяется с экспоненциальной паузой, пока не исчерпает попытки.
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

type Job func(ctx context.Context) error

type queuedJob struct {
	name string
	run  Job
}

type Pool struct {
	queue      chan queuedJob
	maxRetries uint64
	logger     *zap.Logger
	wg         sync.WaitGroup
}

func NewPool(queueSize int, maxRetries uint64, logger *zap.Logger) *Pool {
	return &Pool{
		queue:      make(chan queuedJob, queueSize),
		maxRetries: maxRetries,
		logger:     logger,
	}
}

// Start запускает workers горутин-исполнителей. Останавливается по
// отмене ctx после опустошения очереди текущими исполнителями.
func (p *Pool) Start(ctx context.Context, workers int) {
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case job := <-p.queue:
					p.execute(ctx, job)
				}
			}
		}()
	}
}

func (p *Pool) execute(ctx context.Context, job queuedJob) {
	backoff := retry.WithMaxRetries(p.maxRetries,
		retry.NewExponential(500*time.Millisecond))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := job.run(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		p.logger.Error("фоновая задача не выполнена, попытки исчерпаны",
			zap.String("job", job.name), zap.Error(err))
	}
}

// Submit ставит задачу в очередь. Переполненная очередь не блокирует
// вызывающего: задача отбрасывается с ошибкой в лог, страховочный
// обход подберёт работу позже.
func (p *Pool) Submit(name string, job Job) {
	select {
	case p.queue <- queuedJob{name: name, run: job}:
	default:
		p.logger.Warn("очередь фоновых задач переполнена, задача отброшена",
			zap.String("job", name))
	}
}

func (p *Pool) Wait() {
	p.wg.Wait()
}
