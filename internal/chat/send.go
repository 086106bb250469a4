package chat

import (
	"context"
	"time"
)

// Send runs a whole turn without a UI event loop: submit, ask, then the typing
// animation on real timers. onUpdate, when set, sees the bot message after
// every change. Cancelling ctx while typing freezes the answer at its current
// prefix. The returned error is the turn failure, if any.
func (e *Engine) Send(ctx context.Context, text string, onUpdate func(Message)) error {
	req, err := e.submit(text)
	if err != nil {
		return err
	}
	res := e.Fetch(ctx, req)
	tick, typing, _ := e.Resolve(res)
	e.emitLast(onUpdate)
	if res.Err != nil {
		return res.Err
	}

	for typing {
		timer := time.NewTimer(tick.Delay)
		select {
		case <-ctx.Done():
		case <-timer.C:
		}
		if err := ctx.Err(); err != nil {
			timer.Stop()
			e.Stop()
			e.emitLast(onUpdate)
			return err
		}
		tick, typing = e.Advance(tick)
		e.emitLast(onUpdate)
	}
	return nil
}

func (e *Engine) emitLast(onUpdate func(Message)) {
	if onUpdate == nil {
		return
	}
	e.mu.Lock()
	last, ok := e.conv.Last()
	e.mu.Unlock()
	if ok {
		onUpdate(last)
	}
}
