package voicelive

import (
	"sync"

	"github.com/r4hulp/call-center-voice-agent-accelerator/shared"
)

// sendQueue is the per-session outbound buffer: unbounded, strict FIFO,
// consumed by exactly one sender. Close unblocks a pending Pop so cleanup can
// cancel the sender loop.
type sendQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  [][]byte
	closed bool
}

func newSendQueue() *sendQueue {
	q := &sendQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *sendQueue) Push(msgs ...[]byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return shared.ErrQueueClosed
	}
	q.items = append(q.items, msgs...)
	q.cond.Signal()
	return nil
}

func (q *sendQueue) Pop() ([]byte, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if q.closed {
		return nil, shared.ErrQueueClosed
	}
	msg := q.items[0]
	q.items = q.items[1:]
	return msg, nil
}

func (q *sendQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *sendQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
}
