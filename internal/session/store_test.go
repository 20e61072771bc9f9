package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/kiranshivaraju/partscout/internal/ai"
	"github.com/kiranshivaraju/partscout/internal/ai/mock"
	"github.com/kiranshivaraju/partscout/internal/selector"
	"github.com/kiranshivaraju/partscout/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_GetOrCreate(t *testing.T) {
	st, err := session.NewStore(4, testCatalog(t))
	require.NoError(t, err)

	s, created := st.GetOrCreate("")
	require.True(t, created)
	assert.NotEmpty(t, s.ID())

	again, created := st.GetOrCreate(s.ID())
	assert.False(t, created)
	assert.Same(t, s, again)

	other, created := st.GetOrCreate("unknown-id")
	assert.True(t, created)
	assert.NotEqual(t, "unknown-id", other.ID())
	assert.Equal(t, 2, st.Len())
}

func TestStore_EvictionClosesSession(t *testing.T) {
	cat := testCatalog(t)
	st, err := session.NewStore(1, cat)
	require.NoError(t, err)

	first, _ := st.GetOrCreate("")
	require.NoError(t, first.Apply(selector.Action{Kind: selector.ActionCommit, Level: selector.LevelBrand, Value: "Toyota"}))
	require.NoError(t, first.Apply(selector.Action{Kind: selector.ActionCommit, Level: selector.LevelModel, Value: "Corolla"}))
	require.NoError(t, first.Apply(selector.Action{Kind: selector.ActionCommit, Level: selector.LevelYear, Value: "2012"}))
	first.SetProblem("engine stalls")

	started := make(chan struct{}, 1)
	d := ai.NewDiagnosisService(cat, mock.NewBlockingProvider(started, nil), ai.Options{Timeout: 5 * time.Second})

	done := make(chan error, 1)
	go func() { done <- first.Submit(context.Background(), d, 0) }()
	<-started

	// Creating a second session evicts the first.
	_, _ = st.GetOrCreate("")

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ai.ErrCanceled)
	case <-time.After(2 * time.Second):
		t.Fatal("evicted session was not closed")
	}
	_, ok := st.Get(first.ID())
	assert.False(t, ok)
}

func TestStore_RemoveAndClose(t *testing.T) {
	st, err := session.NewStore(4, testCatalog(t))
	require.NoError(t, err)

	a, _ := st.GetOrCreate("")
	b, _ := st.GetOrCreate("")

	st.Remove(a.ID())
	assert.False(t, a.Snapshot().SubmitEnabled)
	assert.Equal(t, 1, st.Len())

	st.Close()
	assert.False(t, b.Snapshot().SubmitEnabled)
	assert.Equal(t, 0, st.Len())
}

func TestNewStore_InvalidCapacity(t *testing.T) {
	_, err := session.NewStore(0, testCatalog(t))
	require.Error(t, err)
}
