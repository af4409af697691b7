package app

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	logAdapter "github.com/bft-labs/slotkeeper/internal/adapters/log"
	"github.com/bft-labs/slotkeeper/internal/domain"
)

type recordingHandler struct {
	mu       sync.Mutex
	outcomes []domain.LoadOutcome
	menus    [][]domain.Slot
}

func (h *recordingHandler) OnLoadOutcome(outcome domain.LoadOutcome) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.outcomes = append(h.outcomes, outcome)
}

func (h *recordingHandler) OnOpenLoadMenu(slots []domain.Slot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.menus = append(h.menus, slots)
}

func (h *recordingHandler) Outcomes() []domain.LoadOutcome {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]domain.LoadOutcome(nil), h.outcomes...)
}

func newLoader(env *testEnv) (*DeferredLoader, *recordingHandler) {
	h := &recordingHandler{}
	return NewDeferredLoader(env.session, env.coord, h, logAdapter.NewNoopLogger()), h
}

func TestDeferredLoader_FiresOnce(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	require.NoError(t, env.store.WriteBlob(ctx, 2, []byte("two")))
	loader, h := newLoader(env)

	require.NoError(t, loader.Begin(ctx, domain.PendingLoadRequest{
		Kind:       domain.SourceMostRecentSlot,
		Candidates: domain.ManualSlots(domain.DefaultManualSlots),
	}))
	require.Equal(t, LoadAwaitingFirstFrame, loader.State())

	require.Equal(t, 1, env.session.frameRendered(1))
	require.Equal(t, 0, env.session.frameRendered(2), "second frame must not be observed")
	loader.Wait()

	require.Len(t, env.session.restoreCalls(), 1)
	require.Equal(t, LoadIdle, loader.State())

	outcomes := h.Outcomes()
	require.Len(t, outcomes, 1)
	require.True(t, outcomes[0].OK())
	require.Equal(t, domain.SlotID(2), outcomes[0].Slot)
	require.True(t, env.session.subscriptions()[0].canceled.Load())
}

func TestDeferredLoader_IgnoresOtherEvents(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, []byte("auto"))
	require.NoError(t, env.coord.SaveAuto(ctx))
	loader, h := newLoader(env)

	require.NoError(t, loader.Begin(ctx, domain.PendingLoadRequest{Kind: domain.SourceAutoSave}))

	for _, kind := range []domain.EventKind{
		domain.EventSurfaceCreated,
		domain.EventResumed,
		domain.EventPaused,
	} {
		require.Equal(t, 1, env.session.emit(domain.Event{Kind: kind}))
	}
	require.Empty(t, env.session.restoreCalls())
	require.Equal(t, LoadAwaitingFirstFrame, loader.State())

	env.session.frameRendered(1)
	loader.Wait()

	require.Equal(t, [][]byte{[]byte("auto")}, env.session.restoreCalls())
	require.Len(t, h.Outcomes(), 1)
}

func TestDeferredLoader_CancelBeforeFrame(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	require.NoError(t, env.store.WriteBlob(ctx, 1, []byte("one")))
	loader, h := newLoader(env)

	require.NoError(t, loader.Begin(ctx, domain.PendingLoadRequest{
		Kind:       domain.SourceMostRecentSlot,
		Candidates: []domain.SlotID{1},
	}))
	loader.Cancel()
	loader.Cancel()

	require.Equal(t, 0, env.session.frameRendered(1))
	loader.Wait()

	require.Empty(t, env.session.restoreCalls())
	require.Empty(t, h.Outcomes())
	require.Equal(t, LoadIdle, loader.State())
}

func TestDeferredLoader_ParentContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	env := newTestEnv(t, []byte("auto"))
	require.NoError(t, env.coord.SaveAuto(context.Background()))
	loader, h := newLoader(env)

	require.NoError(t, loader.Begin(ctx, domain.PendingLoadRequest{Kind: domain.SourceAutoSave}))
	cancel()
	loader.Wait()

	require.Equal(t, LoadIdle, loader.State())
	require.Empty(t, env.session.restoreCalls())
	require.Empty(t, h.Outcomes())
}

func TestDeferredLoader_SecondBeginIsPending(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, []byte("auto"))
	require.NoError(t, env.coord.SaveAuto(ctx))
	loader, _ := newLoader(env)

	req := domain.PendingLoadRequest{Kind: domain.SourceAutoSave}
	require.NoError(t, loader.Begin(ctx, req))
	require.ErrorIs(t, loader.Begin(ctx, req), domain.ErrLoadPending)

	env.session.frameRendered(1)
	loader.Wait()

	// Idle again, so a new request may be armed.
	require.NoError(t, loader.Begin(ctx, req))
	loader.Cancel()
	loader.Wait()
}

func TestDeferredLoader_StreamClosed(t *testing.T) {
	env := newTestEnv(t, nil)
	loader, h := newLoader(env)

	require.NoError(t, loader.Begin(context.Background(), domain.PendingLoadRequest{Kind: domain.SourceAutoSave}))
	env.session.closeStreams()
	loader.Wait()

	require.Equal(t, LoadIdle, loader.State())
	require.Empty(t, h.Outcomes())
}

func TestDeferredLoader_Outcomes(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(t *testing.T, env *testEnv)
		req      domain.PendingLoadRequest
		wantErr  error
		wantSlot domain.SlotID
		restores int
	}{
		{
			name: "explicit file",
			setup: func(t *testing.T, env *testEnv) {
				require.NoError(t, env.store.WriteBlob(context.Background(), 3, []byte("three")))
			},
			req:      domain.PendingLoadRequest{Kind: domain.SourceExplicitFile, File: "save_slot_3.sav"},
			restores: 1,
		},
		{
			name:    "missing file",
			req:     domain.PendingLoadRequest{Kind: domain.SourceExplicitFile, File: "gone.sav"},
			wantErr: domain.ErrNotFound,
		},
		{
			name:    "no auto-save",
			req:     domain.PendingLoadRequest{Kind: domain.SourceAutoSave},
			wantErr: domain.ErrNotFound,
		},
		{
			name:    "no slot saved",
			req:     domain.PendingLoadRequest{Kind: domain.SourceMostRecentSlot, Candidates: []domain.SlotID{1, 2}},
			wantErr: domain.ErrNotFound,
		},
		{
			name:     "instance state",
			req:      domain.PendingLoadRequest{Kind: domain.SourceInstanceState, Blob: []byte("mem")},
			restores: 1,
		},
		{
			name: "chosen slot",
			setup: func(t *testing.T, env *testEnv) {
				require.NoError(t, env.store.WriteBlob(context.Background(), 4, []byte("four")))
			},
			req:      domain.PendingLoadRequest{Kind: domain.SourceSlot, Slot: 4},
			wantSlot: 4,
			restores: 1,
		},
		{
			name:     "chosen slot empty",
			req:      domain.PendingLoadRequest{Kind: domain.SourceSlot, Slot: 2},
			wantErr:  domain.ErrNotFound,
			wantSlot: 2,
		},
		{
			name: "rejected blob",
			setup: func(t *testing.T, env *testEnv) {
				env.session.reject = true
			},
			req:      domain.PendingLoadRequest{Kind: domain.SourceInstanceState, Blob: []byte("bad")},
			wantErr:  domain.ErrCorruptState,
			restores: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)
			if tt.setup != nil {
				tt.setup(t, env)
			}
			loader, h := newLoader(env)

			require.NoError(t, loader.Begin(context.Background(), tt.req))
			env.session.frameRendered(1)
			loader.Wait()

			outcomes := h.Outcomes()
			require.Len(t, outcomes, 1)
			require.Equal(t, tt.req.Kind, outcomes[0].Kind)
			if tt.wantErr != nil {
				require.ErrorIs(t, outcomes[0].Err, tt.wantErr)
			} else {
				require.NoError(t, outcomes[0].Err)
			}
			require.Equal(t, tt.wantSlot, outcomes[0].Slot)
			require.Len(t, env.session.restoreCalls(), tt.restores)
		})
	}
}

func TestDeferredLoader_LoadMenu(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	require.NoError(t, env.store.WriteBlob(ctx, 1, []byte("one")))
	require.NoError(t, env.store.WriteBlob(ctx, 3, []byte("three")))
	loader, h := newLoader(env)

	require.NoError(t, loader.Begin(ctx, domain.PendingLoadRequest{
		Kind:       domain.SourceLoadMenu,
		Candidates: domain.AllSlots(domain.DefaultManualSlots),
	}))
	env.session.frameRendered(1)
	loader.Wait()

	require.Empty(t, env.session.restoreCalls())
	require.Len(t, h.menus, 1)
	menu := h.menus[0]
	require.Len(t, menu, domain.DefaultManualSlots+1)
	require.False(t, menu[0].HasBlob)
	require.True(t, menu[1].HasBlob)
	require.True(t, menu[3].HasBlob)
	require.True(t, h.Outcomes()[0].OK())
}

func TestDeferredLoader_BeginErrors(t *testing.T) {
	env := newTestEnv(t, nil)
	loader, _ := newLoader(env)

	err := loader.Begin(context.Background(), domain.PendingLoadRequest{Kind: domain.SourceExplicitFile, File: "../escape.sav"})
	require.ErrorIs(t, err, domain.ErrInvalidConfig)

	err = loader.Begin(context.Background(), domain.PendingLoadRequest{Kind: domain.SourceSlot, Slot: -1})
	require.ErrorIs(t, err, domain.ErrInvalidConfig)

	subErr := errors.New("session torn down")
	env.session.subscribeErr = subErr
	err = loader.Begin(context.Background(), domain.PendingLoadRequest{Kind: domain.SourceAutoSave})
	require.ErrorIs(t, err, subErr)
	require.Equal(t, LoadIdle, loader.State())
}

func TestLoadState_String(t *testing.T) {
	tests := []struct {
		state LoadState
		want  string
	}{
		{LoadIdle, "Idle"},
		{LoadAwaitingFirstFrame, "AwaitingFirstFrame"},
		{LoadFiring, "Firing"},
		{LoadState(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("LoadState(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
