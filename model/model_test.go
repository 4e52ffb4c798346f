package model

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satishbabariya/chorm/query/builder"
	"github.com/satishbabariya/chorm/runtime/connection"
)

type fakeExecutor struct {
	queries []string
	rows    []connection.Row
	err     error
}

func (f *fakeExecutor) Query(ctx context.Context, sql string, opts ...connection.QueryOption) (*connection.Result, error) {
	f.queries = append(f.queries, sql)
	if f.err != nil {
		return nil, f.err
	}
	return &connection.Result{Data: f.rows}, nil
}

type Audit struct {
	CreatedAt time.Time
}

type UserProfile struct {
	ID       uint64   `ch:"id,primary"`
	Email    string   `ch:"email"`
	Score    float64  `ch:"score"`
	Nickname *string  `ch:"nickname"`
	Tags     []string `ch:"tags"`
	Secret   string   `ch:"-"`
	internal int
	Audit
}

type Event struct {
	TenantID uint32 `ch:"tenant_id,primary"`
	EventID  string `ch:"event_id,primary"`
	Kind     string
}

func (Event) TableName() string { return "raw_events" }

type Keyless struct {
	Name string
}

func TestNewResolvesTableAndColumns(t *testing.T) {
	users, err := New[UserProfile](&fakeExecutor{})
	require.NoError(t, err)
	assert.Equal(t, "user_profiles", users.Table())
	assert.Equal(t, []string{"id", "email", "score", "nickname", "tags", "created_at"}, users.Columns())
	assert.Equal(t, []string{"id"}, users.PrimaryKeys())

	events, err := New[Event](&fakeExecutor{})
	require.NoError(t, err)
	assert.Equal(t, "raw_events", events.Table())
	assert.Equal(t, []string{"tenant_id", "event_id"}, events.PrimaryKeys())
	assert.Equal(t, []string{"tenant_id", "event_id", "kind"}, events.Columns())

	custom, err := New[Event](&fakeExecutor{}, WithTable("events_v2"))
	require.NoError(t, err)
	assert.Equal(t, "events_v2", custom.Table())

	_, err = New[int](&fakeExecutor{})
	assert.ErrorIs(t, err, ErrNotStruct)
}

func TestAllHydratesRows(t *testing.T) {
	exec := &fakeExecutor{rows: []connection.Row{
		{"id": json.Number("42"), "email": "a@example.com", "score": json.Number("9.5"), "nickname": "al", "tags": []any{"x", "y"}, "created_at": "2024-03-01 12:30:00"},
		{"id": "2", "email": "b@example.com", "score": 3, "nickname": nil, "created_at": "2024-03-02 08:00:00.250"},
	}}
	users, err := New[UserProfile](exec)
	require.NoError(t, err)

	all, err := users.All(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"SELECT * FROM user_profiles"}, exec.queries)
	require.Len(t, all, 2)

	assert.Equal(t, uint64(42), all[0].ID)
	assert.Equal(t, "a@example.com", all[0].Email)
	assert.InDelta(t, 9.5, all[0].Score, 1e-9)
	require.NotNil(t, all[0].Nickname)
	assert.Equal(t, "al", *all[0].Nickname)
	assert.Equal(t, []string{"x", "y"}, all[0].Tags)
	assert.Equal(t, time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC), all[0].CreatedAt)

	assert.Equal(t, uint64(2), all[1].ID)
	assert.Nil(t, all[1].Nickname)
	assert.Equal(t, time.Date(2024, 3, 2, 8, 0, 0, 250_000_000, time.UTC), all[1].CreatedAt)
}

func TestHydrateRejectsBadValues(t *testing.T) {
	users, err := New[UserProfile](&fakeExecutor{})
	require.NoError(t, err)

	_, err = users.Hydrate([]connection.Row{{"id": "not-a-number"}})
	assert.ErrorContains(t, err, "failed to hydrate user_profiles row 0")
}

func TestFind(t *testing.T) {
	exec := &fakeExecutor{rows: []connection.Row{{"id": json.Number("7"), "email": "x@example.com"}}}
	users, err := New[UserProfile](exec)
	require.NoError(t, err)
	ctx := context.Background()

	u, err := users.Find(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, uint64(7), u.ID)
	assert.Equal(t, "SELECT * FROM user_profiles WHERE id = 7 LIMIT 1", exec.queries[0])

	exec.rows = nil
	u, err = users.Find(ctx, 8)
	require.NoError(t, err)
	assert.Nil(t, u)

	_, err = users.FindOrFail(ctx, 8)
	assert.ErrorIs(t, err, ErrNotFound)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "user_profiles", nf.Table)
	assert.EqualError(t, err, "record with id 8 not found in table user_profiles")
}

func TestFindBy(t *testing.T) {
	exec := &fakeExecutor{rows: []connection.Row{{"tenant_id": json.Number("1"), "event_id": "e1", "kind": "click"}}}
	events, err := New[Event](exec)
	require.NoError(t, err)

	e, err := events.FindBy(context.Background(), map[string]any{"tenant_id": 1, "kind": "click"})
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, Event{TenantID: 1, EventID: "e1", Kind: "click"}, *e)
	assert.Equal(t, "SELECT * FROM raw_events WHERE kind = 'click' AND tenant_id = 1 LIMIT 1", exec.queries[0])
}

func TestKeylessModel(t *testing.T) {
	exec := &fakeExecutor{}
	m, err := New[Keyless](exec)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = m.Find(ctx, 1)
	assert.ErrorIs(t, err, ErrNoPrimaryKey)
	_, err = m.DeleteByID(ctx, 1)
	assert.ErrorIs(t, err, ErrNoPrimaryKey)
	_, err = m.Delete(ctx, &Keyless{Name: "x"})
	assert.ErrorIs(t, err, ErrNoPrimaryKey)
	assert.Empty(t, exec.queries)
}

func TestCreateSaveAndInsert(t *testing.T) {
	exec := &fakeExecutor{}
	events, err := New[Event](exec)
	require.NoError(t, err)
	ctx := context.Background()

	e, err := events.Create(map[string]any{"tenant_id": 3, "EventID": "e9", "kind": "view"})
	require.NoError(t, err)
	assert.Equal(t, Event{TenantID: 3, EventID: "e9", Kind: "view"}, *e)
	assert.Empty(t, exec.queries, "create does not persist")

	saved, err := events.CreateAndSave(ctx, map[string]any{"tenant_id": 4, "event_id": "e10", "kind": "buy"})
	require.NoError(t, err)
	assert.Equal(t, "e10", saved.EventID)

	_, err = events.Insert(ctx, []Event{{TenantID: 1, EventID: "a", Kind: "k"}, {TenantID: 2, EventID: "b", Kind: "it's"}})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"INSERT INTO raw_events (tenant_id, event_id, kind) VALUES (4, 'e10', 'buy')",
		"INSERT INTO raw_events (tenant_id, event_id, kind) VALUES (1, 'a', 'k'), (2, 'b', 'it''s')",
	}, exec.queries)
}

func TestToRecordKeepsFieldOrder(t *testing.T) {
	users, err := New[UserProfile](&fakeExecutor{})
	require.NoError(t, err)

	row := users.ToRecord(&UserProfile{ID: 1, Email: "e", Secret: "hidden"})
	assert.Equal(t, []string{"id", "email", "score", "nickname", "tags", "created_at"}, row.Columns())
	v, ok := row.Get("email")
	require.True(t, ok)
	assert.Equal(t, "e", v)
	_, ok = row.Get("secret")
	assert.False(t, ok)
}

func TestDeletes(t *testing.T) {
	exec := &fakeExecutor{}
	events, err := New[Event](exec)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = events.DeleteByID(ctx, 5)
	require.NoError(t, err)
	_, err = events.DeleteWhere(ctx, map[string]any{"kind": "spam"})
	require.NoError(t, err)
	_, err = events.Delete(ctx, &Event{TenantID: 5, EventID: "e1"})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"ALTER TABLE raw_events DELETE WHERE tenant_id = 5",
		"ALTER TABLE raw_events DELETE WHERE kind = 'spam'",
		"ALTER TABLE raw_events DELETE WHERE tenant_id = 5 AND event_id = 'e1'",
	}, exec.queries)

	_, err = events.Delete(ctx, &Event{TenantID: 5})
	assert.ErrorIs(t, err, ErrZeroPrimaryKey)
	assert.Len(t, exec.queries, 3)

	_, err = events.DeleteWhere(ctx, nil)
	assert.ErrorIs(t, err, builder.ErrMissingWhere)
}

func TestAggregatesDelegate(t *testing.T) {
	exec := &fakeExecutor{rows: []connection.Row{{"count": json.Number("12")}}}
	users, err := New[UserProfile](exec)
	require.NoError(t, err)

	n, err := users.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)
	assert.Equal(t, "SELECT count(*) as count FROM user_profiles LIMIT 1", exec.queries[0])

	exec.rows = []connection.Row{{"sum_value": json.Number("4.5")}}
	sum, err := users.Sum(context.Background(), "score")
	require.NoError(t, err)
	assert.InDelta(t, 4.5, sum, 1e-9)
}

func TestExecutorErrorsPropagate(t *testing.T) {
	boom := errors.New("boom")
	users, err := New[UserProfile](&fakeExecutor{err: boom})
	require.NoError(t, err)

	_, err = users.All(context.Background())
	assert.ErrorIs(t, err, boom)
	_, err = users.Save(context.Background(), &UserProfile{ID: 1})
	assert.ErrorIs(t, err, boom)
}
