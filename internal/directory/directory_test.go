package directory

import (
	"context"
	"errors"
	"testing"

	"github.com/jon4hz/oktasim/internal/database"
	"github.com/jon4hz/oktasim/internal/database/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireKind(t *testing.T, err error, kind Kind) *Error {
	t.Helper()
	var de *Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, kind, de.Kind)
	return de
}

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a@x.com", "a@x.com"},
		{"  A@X.com ", "a@x.com"},
		{"\tMixed.Case@Example.ORG\n", "mixed.case@example.org"},
		{"   ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeEmail(tt.in), "input %q", tt.in)
	}
}

func TestProvision(t *testing.T) {
	db := mock.NewMockDB()
	svc := New(db)
	ctx := context.Background()

	user, err := svc.Provision(ctx, ProvisionInput{Username: " alice ", Email: " A@X.com"})
	require.NoError(t, err)
	assert.Equal(t, uint(1), user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "a@x.com", user.Email)

	_, err = svc.Provision(ctx, ProvisionInput{Username: "other", Email: "a@X.COM"})
	de := requireKind(t, err, KindConflict)
	assert.Equal(t, MsgDuplicateEmail, de.Message)

	count, err := db.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestProvisionMissingFields(t *testing.T) {
	tests := []struct {
		name string
		in   ProvisionInput
	}{
		{"empty", ProvisionInput{}},
		{"no username", ProvisionInput{Email: "a@x.com"}},
		{"no email", ProvisionInput{Username: "alice"}},
		{"blank username", ProvisionInput{Username: "  ", Email: "a@x.com"}},
		{"blank email", ProvisionInput{Username: "alice", Email: "\t"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := mock.NewMockDB()
			_, err := New(db).Provision(context.Background(), tt.in)
			de := requireKind(t, err, KindInvalidInput)
			assert.Equal(t, MsgMissingFields, de.Message)

			count, err := db.CountUsers(context.Background())
			require.NoError(t, err)
			assert.Zero(t, count)
		})
	}
}

func TestProvisionRacingInsertIsConflict(t *testing.T) {
	db := mock.NewMockDB()
	db.CreateUserError = database.ErrDuplicateEmail

	_, err := New(db).Provision(context.Background(), ProvisionInput{Username: "alice", Email: "a@x.com"})
	requireKind(t, err, KindConflict)
}

func TestProvisionStoreFailure(t *testing.T) {
	boom := errors.New("disk full")

	db := mock.NewMockDB()
	db.CreateUserError = boom
	_, err := New(db).Provision(context.Background(), ProvisionInput{Username: "alice", Email: "a@x.com"})
	de := requireKind(t, err, KindInternal)
	assert.ErrorIs(t, de, boom)
	assert.Equal(t, MsgInternal, de.Message)

	db = mock.NewMockDB()
	db.GetUserByEmailError = boom
	_, err = New(db).Provision(context.Background(), ProvisionInput{Username: "alice", Email: "a@x.com"})
	requireKind(t, err, KindInternal)
}

func TestGetAndDeprovision(t *testing.T) {
	db := mock.NewMockDB()
	svc := New(db)
	ctx := context.Background()

	created, err := svc.Provision(ctx, ProvisionInput{Username: "alice", Email: "a@x.com"})
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	require.NoError(t, svc.Deprovision(ctx, created.ID))

	_, err = svc.Get(ctx, created.ID)
	requireKind(t, err, KindNotFound)

	err = svc.Deprovision(ctx, created.ID)
	requireKind(t, err, KindNotFound)
}

func TestList(t *testing.T) {
	db := mock.NewMockDB()
	svc := New(db)
	ctx := context.Background()

	users, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	inputs := []ProvisionInput{
		{Username: "alice", Email: "a@x.com"},
		{Username: "bob", Email: "b@x.com"},
		{Username: "carol", Email: "c@x.com"},
	}
	for _, in := range inputs {
		_, err := svc.Provision(ctx, in)
		require.NoError(t, err)
	}

	users, err = svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, len(inputs))
	for i, u := range users {
		assert.Equal(t, inputs[i].Username, u.Username)
		assert.Equal(t, inputs[i].Email, u.Email)
	}

	db.GetAllUsersError = errors.New("boom")
	_, err = svc.List(ctx)
	requireKind(t, err, KindInternal)
}
