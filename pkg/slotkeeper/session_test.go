package slotkeeper_test

import (
	"context"
	"image"
	"image/color"
	"sync"

	"github.com/bft-labs/slotkeeper/pkg/slotkeeper"
)

// memSession is an in-memory slotkeeper.Session. Its state is a byte slice.
type memSession struct {
	mu       sync.Mutex
	state    []byte
	restores int
	subs     []*memSub
}

func newMemSession(state string) *memSession {
	return &memSession{state: []byte(state)}
}

func (s *memSession) Serialize() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.state...), nil
}

func (s *memSession) Restore(blob []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restores++
	s.state = append([]byte(nil), blob...)
	return true
}

func (s *memSession) CaptureFrame(done func(image.Image)) {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			img.SetNRGBA(x, y, color.NRGBA{G: 0xFF, A: 0xFF})
		}
	}
	go done(img)
}

func (s *memSession) NativeSize() image.Point { return image.Pt(8, 6) }

func (s *memSession) Subscribe(ctx context.Context) (slotkeeper.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub := &memSub{ch: make(chan slotkeeper.SessionEvent), done: make(chan struct{})}
	s.subs = append(s.subs, sub)
	return sub, nil
}

func (s *memSession) set(state string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = []byte(state)
}

func (s *memSession) current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.state)
}

func (s *memSession) restoreCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restores
}

// renderFrame delivers a FrameRendered event to live subscribers and
// returns how many received it.
func (s *memSession) renderFrame() int {
	s.mu.Lock()
	subs := append([]*memSub(nil), s.subs...)
	s.mu.Unlock()

	n := 0
	for _, sub := range subs {
		if sub.send(slotkeeper.SessionEvent{Kind: slotkeeper.EventFrameRendered}) {
			n++
		}
	}
	return n
}

type memSub struct {
	ch   chan slotkeeper.SessionEvent
	done chan struct{}
	once sync.Once
}

func (m *memSub) Events() <-chan slotkeeper.SessionEvent { return m.ch }

func (m *memSub) Cancel() { m.once.Do(func() { close(m.done) }) }

func (m *memSub) send(ev slotkeeper.SessionEvent) bool {
	select {
	case <-m.done:
		return false
	default:
	}
	select {
	case m.ch <- ev:
		return true
	case <-m.done:
		return false
	}
}
