package export

import "sync"

// CancelToken is the cooperative cancellation signal passed into a job
// and polled at phase and chunk boundaries.
type CancelToken struct {
	once sync.Once
	done chan struct{}
}

func NewCancelToken() *CancelToken {
	return &CancelToken{done: make(chan struct{})}
}

func (t *CancelToken) Cancel() {
	t.once.Do(func() { close(t.done) })
}

func (t *CancelToken) Cancelled() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// Err returns ErrCancelled once the token has been cancelled.
func (t *CancelToken) Err() error {
	if t.Cancelled() {
		return ErrCancelled
	}
	return nil
}
