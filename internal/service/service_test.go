package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"checkai/internal/bus"
	"checkai/internal/core"
	"checkai/internal/game"
	"checkai/internal/service"
)

func newTestService(t *testing.T) (*service.Service, *bus.Bus) {
	t.Helper()
	b := bus.New(zap.NewNop())
	svc := service.New(b, nil, zap.NewNop())
	t.Cleanup(func() {
		_ = svc.Close()
		b.Close()
	})
	return svc, b
}

func sq(t *testing.T, name string) core.Square {
	t.Helper()
	s, err := core.ParseSquare(name)
	require.NoError(t, err)
	return s
}

func TestCreateAndGetGame(t *testing.T) {
	svc, _ := newTestService(t)

	view := svc.CreateGame()
	require.NotEmpty(t, view.GameID)
	assert.Equal(t, core.White, view.State.Turn)
	assert.Equal(t, 20, view.LegalMoveCount)

	got, err := svc.GetGame(view.GameID)
	require.NoError(t, err)
	assert.Equal(t, view.GameID, got.GameID)
}

func TestGetUnknownGame(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetGame("no-such-game")
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, _, err = svc.LegalMoves("no-such-game")
	assert.ErrorIs(t, err, core.ErrNotFound)

	err = svc.DeleteGame("no-such-game")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestListGames(t *testing.T) {
	svc, _ := newTestService(t)

	assert.Empty(t, svc.ListGames())

	a := svc.CreateGame()
	b := svc.CreateGame()

	summaries := svc.ListGames()
	require.Len(t, summaries, 2)
	ids := map[string]bool{summaries[0].GameID: true, summaries[1].GameID: true}
	assert.True(t, ids[a.GameID])
	assert.True(t, ids[b.GameID])
	for _, s := range summaries {
		assert.False(t, s.CreatedAt.IsZero())
	}
}

func TestSubmitMove(t *testing.T) {
	svc, _ := newTestService(t)
	view := svc.CreateGame()

	outcome, err := svc.SubmitMove(view.GameID, sq(t, "e2"), sq(t, "e4"), core.NoPiece)
	require.NoError(t, err)
	assert.True(t, outcome.Success)
	assert.Equal(t, "e4", outcome.Notation)
	assert.Equal(t, core.Black, outcome.State.Turn)
}

func TestSubmitIllegalMove(t *testing.T) {
	svc, _ := newTestService(t)
	view := svc.CreateGame()

	_, err := svc.SubmitMove(view.GameID, sq(t, "e2"), sq(t, "e5"), core.NoPiece)
	var illegal *core.IllegalMoveError
	require.ErrorAs(t, err, &illegal)
	assert.Equal(t, "wrong pattern", illegal.Reason)
}

func TestSubmitActionResign(t *testing.T) {
	svc, _ := newTestService(t)
	view := svc.CreateGame()

	outcome, err := svc.SubmitAction(view.GameID, game.Action{Type: game.ActionResign})
	require.NoError(t, err)
	assert.True(t, outcome.IsOver)
	require.NotNil(t, outcome.Result)
	assert.Equal(t, core.BlackWins, *outcome.Result)

	_, err = svc.SubmitMove(view.GameID, sq(t, "e2"), sq(t, "e4"), core.NoPiece)
	assert.ErrorIs(t, err, core.ErrGameOver)
}

func TestDeleteGame(t *testing.T) {
	svc, _ := newTestService(t)
	view := svc.CreateGame()

	require.NoError(t, svc.DeleteGame(view.GameID))
	_, err := svc.GetGame(view.GameID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestEventsPublishedInMutationOrder(t *testing.T) {
	svc, b := newTestService(t)

	sub := b.Subscribe(bus.TopicGlobal)
	defer b.Unsubscribe(sub)

	view := svc.CreateGame()
	_, err := svc.SubmitMove(view.GameID, sq(t, "e2"), sq(t, "e4"), core.NoPiece)
	require.NoError(t, err)
	_, err = svc.SubmitMove(view.GameID, sq(t, "e7"), sq(t, "e5"), core.NoPiece)
	require.NoError(t, err)
	require.NoError(t, svc.DeleteGame(view.GameID))

	expect := []bus.EventKind{
		bus.EventGameCreated,
		bus.EventGameUpdated,
		bus.EventGameUpdated,
		bus.EventGameDeleted,
	}
	for _, kind := range expect {
		ev := <-sub.C
		assert.Equal(t, kind, ev.Event)
		assert.Equal(t, view.GameID, ev.GameID)
	}
}

func TestRejectedMovePublishesNothing(t *testing.T) {
	svc, b := newTestService(t)
	view := svc.CreateGame()

	sub := b.Subscribe(view.GameID)
	defer b.Unsubscribe(sub)

	_, err := svc.SubmitMove(view.GameID, sq(t, "e2"), sq(t, "e5"), core.NoPiece)
	require.Error(t, err)
	assert.Len(t, sub.C, 0)
}

func TestASCIIBoard(t *testing.T) {
	svc, _ := newTestService(t)
	view := svc.CreateGame()

	board, err := svc.ASCIIBoard(view.GameID)
	require.NoError(t, err)
	assert.Contains(t, board, "a b c d e f g h")
}

func TestStorageHealthDisabled(t *testing.T) {
	svc, _ := newTestService(t)
	assert.Equal(t, "disabled", svc.StorageHealth())
	assert.Nil(t, svc.Archive())
}
