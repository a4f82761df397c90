package queue

import (
	"sync"

	"go.uber.org/zap"
)

// MemoryQueue implements the MessageQueue interface in-process. Used for
// single-node deploys where running a broker is not worth it; events are
// delivered asynchronously to every subscriber, mirroring a fanout exchange.
type MemoryQueue struct {
	mu       sync.RWMutex
	handlers map[string][]func(data []byte) error
	wg       sync.WaitGroup
	log      *zap.Logger
}

// NewMemoryQueue creates a new in-process message queue.
func NewMemoryQueue(log *zap.Logger) MessageQueue {
	log.Info("In-process message queue initialized")
	return &MemoryQueue{
		handlers: make(map[string][]func(data []byte) error),
		log:      log,
	}
}

func (q *MemoryQueue) Publish(subject string, data []byte) error {
	q.mu.RLock()
	handlers := q.handlers[subject]
	q.mu.RUnlock()

	for _, handler := range handlers {
		handler := handler
		// Copy so a handler cannot observe later mutations of the caller's
		// buffer.
		payload := make([]byte, len(data))
		copy(payload, data)

		q.wg.Add(1)
		go func() {
			defer q.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					q.log.Error("Queue handler panicked",
						zap.String("subject", subject),
						zap.Any("panic", r),
					)
				}
			}()
			if err := handler(payload); err != nil {
				q.log.Error("Error processing message",
					zap.String("subject", subject),
					zap.Error(err),
				)
			}
		}()
	}
	return nil
}

func (q *MemoryQueue) Subscribe(subject string, handler func(data []byte) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers[subject] = append(q.handlers[subject], handler)
	return nil
}

// Close waits for in-flight deliveries to finish.
func (q *MemoryQueue) Close() error {
	q.wg.Wait()
	return nil
}
