// File: client/outqueue.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package client

import (
	"fmt"

	"github.com/eapache/queue"

	"github.com/momentics/hioload-irc/api"
)

// outQueue holds messages of one session that the socket could not take yet.
type outQueue struct {
	q *queue.Queue
}

func newOutQueue() *outQueue {
	return &outQueue{q: queue.New()}
}

func (o *outQueue) push(msg api.Message) { o.q.Add(msg) }

func (o *outQueue) len() int { return o.q.Length() }

func (o *outQueue) at(i int) api.Message { return o.q.Get(i).(api.Message) }

// discardFront drops the first k messages.
func (o *outQueue) discardFront(k int) error {
	if k < 0 || k > o.q.Length() {
		return fmt.Errorf("%w: discard %d of %d", ErrDiscardExceedsLen, k, o.q.Length())
	}
	for ; k > 0; k-- {
		o.q.Remove()
	}
	return nil
}
