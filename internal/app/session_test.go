package app

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/bft-labs/slotkeeper/internal/adapters/fs"
	logAdapter "github.com/bft-labs/slotkeeper/internal/adapters/log"
	"github.com/bft-labs/slotkeeper/internal/domain"
	"github.com/bft-labs/slotkeeper/internal/ports"
)

// fakeSession is an in-memory ports.Session.
type fakeSession struct {
	mu sync.Mutex

	blob         []byte
	serializeErr error
	reject       bool
	restored     [][]byte

	frame      image.Image
	noCallback bool
	native     image.Point

	subscribeErr error
	subs         []*fakeSub

	inSerialize    atomic.Int32
	maxConcurrency atomic.Int32
}

func newFakeSession(blob []byte) *fakeSession {
	return &fakeSession{
		blob:   blob,
		frame:  solidFrame(16, 12),
		native: image.Pt(16, 12),
	}
}

func (s *fakeSession) Serialize() ([]byte, error) {
	n := s.inSerialize.Add(1)
	defer s.inSerialize.Add(-1)
	for {
		cur := s.maxConcurrency.Load()
		if n <= cur || s.maxConcurrency.CompareAndSwap(cur, n) {
			break
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.serializeErr != nil {
		return nil, s.serializeErr
	}
	return append([]byte(nil), s.blob...), nil
}

func (s *fakeSession) Restore(blob []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restored = append(s.restored, append([]byte(nil), blob...))
	return !s.reject
}

func (s *fakeSession) CaptureFrame(done func(frame image.Image)) {
	s.mu.Lock()
	frame, skip := s.frame, s.noCallback
	s.mu.Unlock()
	if skip {
		return
	}
	go done(frame)
}

func (s *fakeSession) NativeSize() image.Point { return s.native }

func (s *fakeSession) Subscribe(ctx context.Context) (ports.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subscribeErr != nil {
		return nil, s.subscribeErr
	}
	sub := &fakeSub{ch: make(chan domain.Event), done: make(chan struct{})}
	s.subs = append(s.subs, sub)
	return sub, nil
}

// emit delivers ev to every live subscription and reports how many took it.
func (s *fakeSession) emit(ev domain.Event) int {
	s.mu.Lock()
	subs := append([]*fakeSub(nil), s.subs...)
	s.mu.Unlock()

	delivered := 0
	for _, sub := range subs {
		if sub.send(ev) {
			delivered++
		}
	}
	return delivered
}

func (s *fakeSession) frameRendered(n uint64) int {
	return s.emit(domain.Event{Kind: domain.EventFrameRendered, Frame: n})
}

func (s *fakeSession) closeStreams() {
	s.mu.Lock()
	subs := append([]*fakeSub(nil), s.subs...)
	s.mu.Unlock()
	for _, sub := range subs {
		sub.closeStream()
	}
}

func (s *fakeSession) restoreCalls() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.restored...)
}

func (s *fakeSession) subscriptions() []*fakeSub {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*fakeSub(nil), s.subs...)
}

type fakeSub struct {
	mu       sync.Mutex
	ch       chan domain.Event
	done     chan struct{}
	once     sync.Once
	closed   bool
	canceled atomic.Bool
}

func (f *fakeSub) Events() <-chan domain.Event { return f.ch }

func (f *fakeSub) Cancel() {
	f.canceled.Store(true)
	f.once.Do(func() { close(f.done) })
}

func (f *fakeSub) send(ev domain.Event) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return false
	}
	select {
	case <-f.done:
		return false
	default:
	}
	select {
	case f.ch <- ev:
		return true
	case <-f.done:
		return false
	}
}

func (f *fakeSub) closeStream() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.ch)
	}
}

// solidFrame returns an opaque w x h frame.
func solidFrame(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 10), G: uint8(y * 10), B: 0x80, A: 0xFF})
		}
	}
	return img
}

// letterboxed returns a transparent w x h frame with an opaque content rect.
func letterboxed(w, h int, content image.Rectangle) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := content.Min.Y; y < content.Max.Y; y++ {
		for x := content.Min.X; x < content.Max.X; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 0xFF, A: 0xFF})
		}
	}
	return img
}

type testEnv struct {
	session *fakeSession
	store   *fs.SlotStore
	coord   *Coordinator
}

func newTestEnv(t *testing.T, blob []byte) *testEnv {
	t.Helper()
	logger := logAdapter.NewNoopLogger()
	session := newFakeSession(blob)
	store := fs.NewSlotStore(t.TempDir(), domain.DefaultManualSlots, logger)
	coord := NewCoordinator(CoordinatorConfig{}, session, store, store, logger)
	return &testEnv{session: session, store: store, coord: coord}
}

var errSerialize = errors.New("core not loaded")
