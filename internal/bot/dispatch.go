package bot

import (
	"context"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	queueSize      = 32
	workerIdleTime = time.Minute
)

// updateQueue feeds the updates of one chat to its worker
type updateQueue struct {
	updates chan tgbotapi.Update
	pending int // guarded by dispatcher.mu
}

// dispatcher runs one worker per active chat so that the updates of a chat
// are handled one at a time and in arrival order. Workers exit once idle.
type dispatcher struct {
	mu     sync.Mutex
	queues map[int64]*updateQueue
	idle   time.Duration
	handle func(ctx context.Context, update tgbotapi.Update)
	wg     sync.WaitGroup
}

func newDispatcher(idle time.Duration, handle func(ctx context.Context, update tgbotapi.Update)) *dispatcher {
	return &dispatcher{
		queues: make(map[int64]*updateQueue),
		idle:   idle,
		handle: handle,
	}
}

// dispatch queues update behind the earlier updates of the same chat.
// Updates without a chat are handled concurrently.
func (d *dispatcher) dispatch(ctx context.Context, update tgbotapi.Update) {
	chatID, ok := updateChatID(update)
	if !ok {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.handle(ctx, update)
		}()
		return
	}

	d.mu.Lock()
	q, ok := d.queues[chatID]
	if !ok {
		q = &updateQueue{updates: make(chan tgbotapi.Update, queueSize)}
		d.queues[chatID] = q
		d.wg.Add(1)
		go d.work(ctx, chatID, q)
	}
	q.pending++
	d.mu.Unlock()

	select {
	case q.updates <- update:
	case <-ctx.Done():
	}
}

func (d *dispatcher) work(ctx context.Context, chatID int64, q *updateQueue) {
	defer d.wg.Done()

	timer := time.NewTimer(d.idle)
	defer timer.Stop()

	for {
		select {
		case update := <-q.updates:
			d.handle(ctx, update)
			d.mu.Lock()
			q.pending--
			d.mu.Unlock()
			timer.Reset(d.idle)
		case <-timer.C:
			d.mu.Lock()
			if q.pending == 0 {
				delete(d.queues, chatID)
				d.mu.Unlock()
				return
			}
			d.mu.Unlock()
			timer.Reset(d.idle)
		case <-ctx.Done():
			d.mu.Lock()
			delete(d.queues, chatID)
			d.mu.Unlock()
			return
		}
	}
}

// wait blocks until every worker has exited
func (d *dispatcher) wait() {
	d.wg.Wait()
}

func (d *dispatcher) active() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queues)
}

func updateChatID(update tgbotapi.Update) (int64, bool) {
	switch {
	case update.Message != nil && update.Message.Chat != nil:
		return update.Message.Chat.ID, true
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil && update.CallbackQuery.Message.Chat != nil:
		return update.CallbackQuery.Message.Chat.ID, true
	}
	return 0, false
}
