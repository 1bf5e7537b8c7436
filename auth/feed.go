package auth

import (
	"sync"
)

// Feed is a replay-latest broadcast: every subscriber first receives the
// value current at subscribe time, then every subsequent published value in
// publish order. Publishing never blocks, each subscriber drains its own
// queue at its own pace.
type Feed[T any] struct {
	mu      sync.Mutex
	current T
	subs    map[*subscriber[T]]struct{}
}

type subscriber[T any] struct {
	mu    sync.Mutex
	cond  *sync.Cond
	queue []T
	done  chan struct{}
	ch    chan T
}

func newFeed[T any](initial T) *Feed[T] {
	return &Feed[T]{
		current: initial,
		subs:    make(map[*subscriber[T]]struct{}),
	}
}

// Latest returns the value most recently published on the feed.
func (f *Feed[T]) Latest() T {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

// Subscribe registers a new consumer. The first value received on the
// channel is the feed's value at subscribe time. The returned function
// cancels the subscription and closes the channel.
func (f *Feed[T]) Subscribe() (<-chan T, func()) {
	sub := &subscriber[T]{
		ch:   make(chan T),
		done: make(chan struct{}),
	}
	sub.cond = sync.NewCond(&sub.mu)

	f.mu.Lock()
	sub.queue = append(sub.queue, f.current)
	f.subs[sub] = struct{}{}
	f.mu.Unlock()

	go sub.pump()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, sub)
			f.mu.Unlock()

			sub.mu.Lock()
			close(sub.done)
			sub.cond.Signal()
			sub.mu.Unlock()
		})
	}

	return sub.ch, cancel
}

func (f *Feed[T]) publish(v T) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.current = v
	for sub := range f.subs {
		sub.push(v)
	}
}

func (s *subscriber[T]) push(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	select {
	case <-s.done:
		return
	default:
	}
	s.queue = append(s.queue, v)
	s.cond.Signal()
}

func (s *subscriber[T]) pump() {
	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.cancelled() {
			s.cond.Wait()
		}
		if s.cancelled() {
			s.mu.Unlock()
			close(s.ch)
			return
		}
		v := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.ch <- v:
		case <-s.done:
			close(s.ch)
			return
		}
	}
}

// cancelled must be called with s.mu held.
func (s *subscriber[T]) cancelled() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}
