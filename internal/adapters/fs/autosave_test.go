package fs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bft-labs/slotkeeper/internal/domain"
)

func TestAutoSave_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	rec, err := s.AutoStat()
	require.NoError(t, err)
	require.False(t, rec.HasBlob)

	_, err = s.LoadAuto(ctx)
	require.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, s.SaveAuto(ctx, []byte("first")))
	require.NoError(t, s.SaveAuto(ctx, []byte("second")))

	got, err := s.LoadAuto(ctx)
	require.NoError(t, err)
	require.Equal(t, []byte("second"), got)

	rec, err = s.AutoStat()
	require.NoError(t, err)
	require.True(t, rec.HasBlob)
	require.EqualValues(t, len("second"), rec.BlobSize)
}

func TestAutoSave_OutsideSlotNamespace(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.SaveAuto(ctx, []byte("auto")))

	slots, err := s.List(domain.AllSlots(s.ManualSlots()))
	require.NoError(t, err)
	for _, slot := range slots {
		require.False(t, slot.HasBlob, "%s", slot.ID)
	}
}

func TestAutoSave_ClearIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.SaveAuto(ctx, []byte("auto")))
	require.NoError(t, s.ClearAuto(ctx))
	require.NoError(t, s.ClearAuto(ctx))

	_, err := s.LoadAuto(ctx)
	require.ErrorIs(t, err, domain.ErrNotFound)
}
