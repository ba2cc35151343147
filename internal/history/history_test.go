package history

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equipeadalove/aduana/internal/api"
	"github.com/equipeadalove/aduana/internal/common"
	"github.com/equipeadalove/aduana/internal/model"
	"github.com/equipeadalove/aduana/internal/notify"
)

type mockBackend struct {
	listErr     error
	renameErr   error
	deleteErr   error
	renamed     *model.TransactionSummary
	items       []model.TransactionSummary
	renameCalls []string
	deleteCalls []int64
}

func (b *mockBackend) Transactions(context.Context) ([]model.TransactionSummary, error) {
	if b.listErr != nil {
		return nil, b.listErr
	}
	return append([]model.TransactionSummary(nil), b.items...), nil
}

func (b *mockBackend) RenameTransaction(_ context.Context, id int64, name string) (*model.TransactionSummary, error) {
	b.renameCalls = append(b.renameCalls, fmt.Sprintf("%d:%s", id, name))
	return b.renamed, b.renameErr
}

func (b *mockBackend) DeleteTransaction(_ context.Context, id int64) error {
	b.deleteCalls = append(b.deleteCalls, id)
	return b.deleteErr
}

func summary(id int64, name string, created string) model.TransactionSummary {
	ts, err := time.Parse(time.DateOnly, created)
	if err != nil {
		panic(err)
	}
	s := model.TransactionSummary{ID: id, CreatedAt: model.Timestamp{Time: ts}}
	if name != "" {
		s.Name = &name
	}
	return s
}

func fixtureItems() []model.TransactionSummary {
	return []model.TransactionSummary{
		summary(1, "old", "2023-03-10"),
		summary(2, "", "2024-03-01"),
		summary(3, "march late", "2024-03-31"),
		summary(4, "april", "2024-04-01"),
		summary(5, "feb", "2024-02-29"),
	}
}

func loaded(t *testing.T, b *mockBackend) (*List, *notify.Queue) {
	t.Helper()
	q := &notify.Queue{}
	l := New(b, q)
	require.NoError(t, l.Load(context.Background()))
	return l, q
}

func ids(items []model.TransactionSummary) []int64 {
	out := make([]int64, len(items))
	for i, t := range items {
		out[i] = t.ID
	}
	return out
}

func TestLoad_SortsNewestFirst(t *testing.T) {
	l, _ := loaded(t, &mockBackend{items: fixtureItems()})
	assert.Equal(t, []int64{4, 3, 2, 5, 1}, ids(l.Items()))
	assert.Equal(t, []int{2024, 2023}, l.Years())
	assert.False(t, l.Loading())
}

func TestLoad_FailureNotifies(t *testing.T) {
	q := &notify.Queue{}
	l := New(&mockBackend{listErr: &api.APIError{Status: 500}}, q)

	require.Error(t, l.Load(context.Background()))
	last, ok := q.Last()
	require.True(t, ok)
	assert.Equal(t, "Could not load history.", last.Message)
}

func TestLoad_UnauthorizedIsSilent(t *testing.T) {
	q := &notify.Queue{}
	l := New(&mockBackend{listErr: api.ErrUnauthorized}, q)

	err := l.Load(context.Background())
	assert.ErrorIs(t, err, api.ErrUnauthorized)
	assert.Zero(t, q.Len())
}

func TestFilter(t *testing.T) {
	l, _ := loaded(t, &mockBackend{items: fixtureItems()})
	full := l.Visible()

	tests := []struct {
		name   string
		filter Filter
		want   []int64
	}{
		{name: "march 2024", filter: Filter{Month: time.March, Year: 2024}, want: []int64{3, 2}},
		{name: "march any year", filter: Filter{Month: time.March}, want: []int64{3, 2, 1}},
		{name: "2024 any month", filter: Filter{Year: 2024}, want: []int64{4, 3, 2, 5}},
		{name: "no match", filter: Filter{Month: time.December, Year: 2024}, want: []int64{}},
		{name: "cleared", filter: Filter{}, want: ids(full)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l.SetFilter(tt.filter)
			assert.Equal(t, tt.want, ids(l.Visible()))
			assert.Equal(t, tt.filter.IsZero(), l.Filter().IsZero())
		})
	}

	l.SetFilter(Filter{})
	assert.Equal(t, full, l.Visible())
}

func TestRename_EmptyNameNeverCallsServer(t *testing.T) {
	for _, draft := range []string{"", "   ", "\t\n"} {
		b := &mockBackend{items: fixtureItems()}
		l, q := loaded(t, b)

		require.NoError(t, l.BeginRename(3))
		assert.Equal(t, "march late", l.Draft())
		l.SetDraft(draft)

		err := l.CommitRename(context.Background())
		assert.ErrorIs(t, err, common.ErrValidation)
		assert.Empty(t, b.renameCalls)
		assert.Equal(t, int64(3), l.Renaming())

		last, ok := q.Last()
		require.True(t, ok)
		assert.Equal(t, notify.LevelError, last.Level)
	}
}

func TestRename_AppliesResponseBody(t *testing.T) {
	fromServer := summary(3, "server name", "2024-03-31")
	b := &mockBackend{items: fixtureItems(), renamed: &fromServer}
	l, q := loaded(t, b)

	require.NoError(t, l.BeginRename(3))
	l.SetDraft("  typed name ")
	require.NoError(t, l.CommitRename(context.Background()))

	assert.Equal(t, []string{"3:typed name"}, b.renameCalls)
	assert.Equal(t, "server name", l.Items()[1].Title())
	assert.Zero(t, l.Renaming())
	last, _ := q.Last()
	assert.Equal(t, notify.LevelSuccess, last.Level)
}

func TestRename_LocalNameWhenBodyEmpty(t *testing.T) {
	b := &mockBackend{items: fixtureItems()}
	l, _ := loaded(t, b)

	require.NoError(t, l.BeginRename(2))
	assert.Empty(t, l.Draft())
	l.SetDraft("Named")
	require.NoError(t, l.CommitRename(context.Background()))

	for _, item := range l.Items() {
		if item.ID == 2 {
			assert.Equal(t, "Named", item.Title())
		}
	}
}

func TestRename_FailureKeepsListAndEditMode(t *testing.T) {
	b := &mockBackend{items: fixtureItems(), renameErr: &api.APIError{Status: 400, Detail: "name taken"}}
	l, q := loaded(t, b)

	require.NoError(t, l.BeginRename(4))
	l.SetDraft("dup")
	require.Error(t, l.CommitRename(context.Background()))

	assert.Equal(t, "april", l.Items()[0].Title())
	assert.Equal(t, int64(4), l.Renaming())
	last, _ := q.Last()
	assert.Equal(t, "name taken", last.Message)
}

func TestRename_Errors(t *testing.T) {
	l, _ := loaded(t, &mockBackend{items: fixtureItems()})
	assert.ErrorIs(t, l.BeginRename(99), ErrNotFound)
	assert.ErrorIs(t, l.CommitRename(context.Background()), ErrNoRename)

	require.NoError(t, l.BeginRename(1))
	l.CancelRename()
	assert.Zero(t, l.Renaming())
	assert.Empty(t, l.Draft())
}

func TestDelete_RequiresConfirmation(t *testing.T) {
	b := &mockBackend{items: fixtureItems()}
	l, _ := loaded(t, b)

	require.NoError(t, l.RequestDelete(2))
	assert.Equal(t, int64(2), l.PendingDelete())
	assert.Empty(t, b.deleteCalls)

	l.CancelDelete()
	assert.Zero(t, l.PendingDelete())
	assert.ErrorIs(t, l.ConfirmDelete(context.Background()), ErrNoDeletion)
	assert.Empty(t, b.deleteCalls)

	require.NoError(t, l.RequestDelete(2))
	require.NoError(t, l.ConfirmDelete(context.Background()))
	assert.Equal(t, []int64{2}, b.deleteCalls)
	assert.Equal(t, []int64{4, 3, 5, 1}, ids(l.Items()))
}

func TestDelete_FailureKeepsItem(t *testing.T) {
	b := &mockBackend{items: fixtureItems(), deleteErr: errors.New("connection reset")}
	l, q := loaded(t, b)

	require.NoError(t, l.RequestDelete(2))
	require.Error(t, l.ConfirmDelete(context.Background()))
	assert.Len(t, l.Items(), 5)
	last, _ := q.Last()
	assert.Equal(t, "Could not delete the process.", last.Message)
}

func TestMenus(t *testing.T) {
	l, _ := loaded(t, &mockBackend{items: fixtureItems()})

	l.ToggleMenu(3)
	assert.Equal(t, int64(3), l.OpenMenu())

	l.HandleClick(3)
	assert.Equal(t, int64(3), l.OpenMenu(), "click inside keeps the menu open")

	l.ToggleMenu(4)
	assert.Equal(t, int64(4), l.OpenMenu())

	l.HandleClick(0)
	assert.Zero(t, l.OpenMenu())

	l.ToggleMenu(1)
	l.ToggleMenu(1)
	assert.Zero(t, l.OpenMenu())

	l.ToggleMenu(1)
	require.NoError(t, l.BeginRename(1))
	assert.Zero(t, l.OpenMenu(), "starting a rename closes the menu")
}
