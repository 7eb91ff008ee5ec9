package looper

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Token identifies a posted task so it can be removed before it runs.
type Token uint64

// Handler posts tasks onto a single dispatch thread.
type Handler interface {
	Post(fn func()) Token
	// PostAtFront queues fn ahead of every pending task.
	PostAtFront(fn func()) Token
	PostDelayed(fn func(), delay time.Duration) Token
	Remove(tok Token)
	Now() time.Time
}

type task struct {
	tok  Token
	when time.Time
	fn   func()
}

// queue keeps tasks ordered by due time, FIFO for equal times.
type queue struct {
	next  Token
	tasks []task
}

func (q *queue) insert(when time.Time, fn func()) Token {
	q.next++
	t := task{tok: q.next, when: when, fn: fn}
	i := len(q.tasks)
	for i > 0 && q.tasks[i-1].when.After(when) {
		i--
	}
	q.tasks = append(q.tasks, task{})
	copy(q.tasks[i+1:], q.tasks[i:])
	q.tasks[i] = t
	return t.tok
}

func (q *queue) insertFront(fn func()) Token {
	q.next++
	t := task{tok: q.next, fn: fn}
	q.tasks = append([]task{t}, q.tasks...)
	return t.tok
}

func (q *queue) remove(tok Token) {
	for i, t := range q.tasks {
		if t.tok == tok {
			q.tasks = append(q.tasks[:i], q.tasks[i+1:]...)
			return
		}
	}
}

// pop returns the first task due at now, or the wait until the next one.
func (q *queue) pop(now time.Time) (func(), time.Duration, bool) {
	if len(q.tasks) == 0 {
		return nil, 0, false
	}
	head := q.tasks[0]
	if head.when.After(now) {
		return nil, head.when.Sub(now), true
	}
	q.tasks = q.tasks[1:]
	return head.fn, 0, true
}

// Looper runs posted tasks one at a time on the goroutine calling Run.
type Looper struct {
	mu     sync.Mutex
	q      queue
	wake   chan struct{}
	logger zerolog.Logger
}

func New(logger zerolog.Logger) *Looper {
	return &Looper{
		wake:   make(chan struct{}, 1),
		logger: logger.With().Str("component", "looper").Logger(),
	}
}

func (l *Looper) Post(fn func()) Token {
	return l.PostDelayed(fn, 0)
}

func (l *Looper) PostAtFront(fn func()) Token {
	l.mu.Lock()
	tok := l.q.insertFront(fn)
	l.mu.Unlock()
	l.signal()
	return tok
}

func (l *Looper) PostDelayed(fn func(), delay time.Duration) Token {
	l.mu.Lock()
	tok := l.q.insert(time.Now().Add(delay), fn)
	l.mu.Unlock()
	l.signal()
	return tok
}

func (l *Looper) Remove(tok Token) {
	l.mu.Lock()
	l.q.remove(tok)
	l.mu.Unlock()
}

func (l *Looper) Now() time.Time {
	return time.Now()
}

func (l *Looper) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Run dispatches tasks until ctx is done.
func (l *Looper) Run(ctx context.Context) error {
	timer := time.NewTimer(time.Hour)
	defer timer.Stop()
	for {
		l.mu.Lock()
		fn, wait, ok := l.q.pop(time.Now())
		l.mu.Unlock()
		if fn != nil {
			l.dispatch(fn)
			continue
		}
		if !ok {
			wait = time.Hour
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		case <-timer.C:
		}
	}
}

func (l *Looper) dispatch(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error().Interface("panic", r).Msg("task panicked")
		}
	}()
	fn()
}
