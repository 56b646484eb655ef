package board

// Subscription receives published snapshots. Only the latest unread snapshot
// is kept; a slow reader skips intermediate versions.
type Subscription struct {
	board *Board
	ch    chan Snapshot
}

// Subscribe registers a new subscriber. Callers must Close it when done.
func (b *Board) Subscribe() *Subscription {
	sub := &Subscription{board: b, ch: make(chan Snapshot, 1)}
	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()
	return sub
}

// C delivers snapshots. It is closed by Close.
func (s *Subscription) C() <-chan Snapshot { return s.ch }

// Close unregisters the subscriber and closes its channel.
func (s *Subscription) Close() {
	s.board.mu.Lock()
	defer s.board.mu.Unlock()
	if _, ok := s.board.subs[s]; !ok {
		return
	}
	delete(s.board.subs, s)
	close(s.ch)
}

// offer must be called with the board lock held.
func (s *Subscription) offer(snap Snapshot) {
	select {
	case s.ch <- snap:
		return
	default:
	}
	select {
	case <-s.ch:
	default:
	}
	s.ch <- snap
}
