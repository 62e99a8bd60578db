package identity

import "sync"

// subscriber delivers events to fn on its own goroutine. push never blocks,
// so the provider can fan out while holding its lock.
type subscriber struct {
	fn func(Event)

	mu    sync.Mutex
	queue []Event

	wake chan struct{}
	stop chan struct{}
	once sync.Once
}

func newSubscriber(fn func(Event)) *subscriber {
	s := &subscriber{
		fn:   fn,
		wake: make(chan struct{}, 1),
		stop: make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *subscriber) push(e Event) {
	s.mu.Lock()
	s.queue = append(s.queue, e)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *subscriber) next() (Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return Event{}, false
	}
	e := s.queue[0]
	s.queue = s.queue[1:]
	return e, true
}

func (s *subscriber) run() {
	for {
		select {
		case <-s.stop:
			return
		case <-s.wake:
		}
		for {
			select {
			case <-s.stop:
				return
			default:
			}
			e, ok := s.next()
			if !ok {
				break
			}
			s.fn(e)
		}
	}
}

func (s *subscriber) close() {
	s.once.Do(func() { close(s.stop) })
}
