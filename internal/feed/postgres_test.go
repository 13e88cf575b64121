package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	mock_feed "github.com/Adrien7782/BankVocabulary/internal/feed/mock"
	"github.com/Adrien7782/BankVocabulary/internal/models"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func expectList(db *mock_feed.MockQueryI, scope string, cards []models.Card) *gomock.Call {
	return db.EXPECT().
		SelectContext(gomock.Any(), gomock.Any(), gomock.Any(), scope).
		DoAndReturn(func(_ context.Context, dest interface{}, _ string, _ ...interface{}) error {
			*dest.(*[]models.Card) = append([]models.Card(nil), cards...)
			return nil
		})
}

func TestCardStore_SubscribeDeliversInitialSnapshot(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	db := mock_feed.NewMockQueryI(ctrl)
	cards := []models.Card{{ID: "a", Front: "Banque", Back: "Bank", CreatedAt: time.Now()}}
	expectList(db, "u1", cards)

	store := NewCardStore(db, zap.NewNop())

	var snapshots []Snapshot
	sub, err := store.Subscribe("u1", func(s Snapshot) { snapshots = append(snapshots, s) })
	require.NoError(t, err)
	require.NotNil(t, sub)
	defer sub.Cancel()

	require.Len(t, snapshots, 1)
	assert.Equal(t, "u1", snapshots[0].Scope)
	require.Len(t, snapshots[0].Cards, 1)
	assert.Equal(t, "Banque", snapshots[0].Cards[0].Front)
}

func TestCardStore_SubscribeListFailure(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	db := mock_feed.NewMockQueryI(ctrl)
	db.EXPECT().
		SelectContext(gomock.Any(), gomock.Any(), gomock.Any(), "u1").
		Return(errors.New("connection refused"))

	store := NewCardStore(db, zap.NewNop())

	sub, err := store.Subscribe("u1", func(Snapshot) {})
	require.Error(t, err)
	assert.Nil(t, sub)

	// the failed subscriber is gone: a later mutation queries nothing
	db.EXPECT().
		ExecContext(gomock.Any(), gomock.Any(), "c1", "u1").
		Return(nil, nil)
	require.NoError(t, store.DeleteCard(context.Background(), "u1", "c1"))
}

func TestCardStore_CreateCardEmitsToSubscribers(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	db := mock_feed.NewMockQueryI(ctrl)
	store := NewCardStore(db, zap.NewNop())

	expectList(db, "u1", nil)

	var snapshots []Snapshot
	sub, err := store.Subscribe("u1", func(s Snapshot) { snapshots = append(snapshots, s) })
	require.NoError(t, err)
	defer sub.Cancel()

	created := []models.Card{{ID: "a", Front: "Banque", Back: "Bank", CreatedAt: time.Now()}}
	gomock.InOrder(
		db.EXPECT().
			ExecContext(gomock.Any(), gomock.Any(), gomock.Any(), "u1", "Banque", "Bank").
			Return(nil, nil),
		expectList(db, "u1", created),
	)

	require.NoError(t, store.CreateCard(context.Background(), "u1", "Banque", "Bank"))

	require.Len(t, snapshots, 2)
	require.Len(t, snapshots[1].Cards, 1)
	assert.Equal(t, "Banque", snapshots[1].Cards[0].Front)
}

func TestCardStore_SetFlipped(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	db := mock_feed.NewMockQueryI(ctrl)
	db.EXPECT().
		ExecContext(gomock.Any(), gomock.Any(), true, "c1", "u1").
		Return(nil, nil)

	store := NewCardStore(db, zap.NewNop())
	require.NoError(t, store.SetFlipped(context.Background(), "u1", "c1", true))
}

func TestCardStore_CancelStopsSnapshots(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	db := mock_feed.NewMockQueryI(ctrl)
	store := NewCardStore(db, zap.NewNop())

	expectList(db, "u1", nil)

	snapshots := 0
	sub, err := store.Subscribe("u1", func(Snapshot) { snapshots++ })
	require.NoError(t, err)
	sub.Cancel()

	// no subscriber left, so the mutation must not trigger a list query
	db.EXPECT().
		ExecContext(gomock.Any(), gomock.Any(), gomock.Any(), "u1", "Merci", "Thank you").
		Return(nil, nil)
	require.NoError(t, store.CreateCard(context.Background(), "u1", "Merci", "Thank you"))

	assert.Equal(t, 1, snapshots)
}

func TestCardStore_ScopesAreIsolated(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	db := mock_feed.NewMockQueryI(ctrl)
	store := NewCardStore(db, zap.NewNop())

	expectList(db, "u1", nil)
	u1Snapshots := 0
	sub, err := store.Subscribe("u1", func(Snapshot) { u1Snapshots++ })
	require.NoError(t, err)
	defer sub.Cancel()

	// a mutation in u2's collection never reaches u1's subscriber
	db.EXPECT().
		ExecContext(gomock.Any(), gomock.Any(), "c9", "u2").
		Return(nil, nil)
	require.NoError(t, store.DeleteCard(context.Background(), "u2", "c9"))

	assert.Equal(t, 1, u1Snapshots)
}

func TestCardStore_CreateCardFailure(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	db := mock_feed.NewMockQueryI(ctrl)
	db.EXPECT().
		ExecContext(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("constraint violation"))

	store := NewCardStore(db, zap.NewNop())
	err := store.CreateCard(context.Background(), "u1", "Banque", "Bank")
	assert.ErrorContains(t, err, "failed to create card")
}
