package database

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"
)

type UserTestSuite struct {
	suite.Suite
	client *Client
	ctx    context.Context
}

// SetupTest opens a fresh database file for every test
func (s *UserTestSuite) SetupTest() {
	client, err := New(filepath.Join(s.T().TempDir(), "nested", "users.db"))
	s.Require().NoError(err)
	s.client = client
	s.ctx = context.Background()
}

func (s *UserTestSuite) TearDownTest() {
	if s.client != nil {
		s.NoError(s.client.Close())
	}
}

func (s *UserTestSuite) TestCreateUserAssignsIDs() {
	alice, err := s.client.CreateUser(s.ctx, "alice", "a@x.com")
	s.Require().NoError(err)
	bob, err := s.client.CreateUser(s.ctx, "bob", "b@x.com")
	s.Require().NoError(err)

	s.Equal(uint(1), alice.ID)
	s.Equal(uint(2), bob.ID)
	s.Equal("alice", alice.Username)
	s.Equal("a@x.com", alice.Email)
}

func (s *UserTestSuite) TestCreateUserDuplicateEmail() {
	_, err := s.client.CreateUser(s.ctx, "alice", "a@x.com")
	s.Require().NoError(err)

	_, err = s.client.CreateUser(s.ctx, "alice2", "a@x.com")
	s.ErrorIs(err, ErrDuplicateEmail)

	count, err := s.client.CountUsers(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(1), count)
}

func (s *UserTestSuite) TestCreateUserConcurrentDuplicates() {
	const workers = 8

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.client.CreateUser(s.ctx, fmt.Sprintf("user-%d", i), "same@x.com")
			mu.Lock()
			defer mu.Unlock()
			switch err {
			case nil:
				succeeded++
			case ErrDuplicateEmail:
				conflicts++
			}
		}()
	}
	wg.Wait()

	s.Equal(1, succeeded)
	s.Equal(workers-1, conflicts)
}

func (s *UserTestSuite) TestGetUserByID() {
	created, err := s.client.CreateUser(s.ctx, "alice", "a@x.com")
	s.Require().NoError(err)

	user, err := s.client.GetUserByID(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(created.ID, user.ID)
	s.Equal("alice", user.Username)

	_, err = s.client.GetUserByID(s.ctx, 999)
	s.ErrorIs(err, ErrUserNotFound)
}

func (s *UserTestSuite) TestGetUserByEmail() {
	_, err := s.client.CreateUser(s.ctx, "alice", "a@x.com")
	s.Require().NoError(err)

	user, err := s.client.GetUserByEmail(s.ctx, "a@x.com")
	s.Require().NoError(err)
	s.Equal("alice", user.Username)

	_, err = s.client.GetUserByEmail(s.ctx, "nobody@x.com")
	s.ErrorIs(err, ErrUserNotFound)
}

func (s *UserTestSuite) TestGetAllUsersOrderedByID() {
	users, err := s.client.GetAllUsers(s.ctx)
	s.Require().NoError(err)
	s.NotNil(users)
	s.Empty(users)

	for i := range 3 {
		_, err := s.client.CreateUser(s.ctx, fmt.Sprintf("user-%d", i), fmt.Sprintf("u%d@x.com", i))
		s.Require().NoError(err)
	}

	users, err = s.client.GetAllUsers(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(users, 3)
	for i, u := range users {
		s.Equal(uint(i+1), u.ID)
		s.Equal(fmt.Sprintf("user-%d", i), u.Username)
	}
}

func (s *UserTestSuite) TestDeleteUser() {
	created, err := s.client.CreateUser(s.ctx, "alice", "a@x.com")
	s.Require().NoError(err)

	existed, err := s.client.DeleteUser(s.ctx, created.ID)
	s.Require().NoError(err)
	s.True(existed)

	existed, err = s.client.DeleteUser(s.ctx, created.ID)
	s.Require().NoError(err)
	s.False(existed)

	_, err = s.client.GetUserByID(s.ctx, created.ID)
	s.ErrorIs(err, ErrUserNotFound)

	// hard delete frees the email
	_, err = s.client.CreateUser(s.ctx, "alice", "a@x.com")
	s.NoError(err)
}

func (s *UserTestSuite) TestSchemaSurvivesReopen() {
	path := filepath.Join(s.T().TempDir(), "reopen.db")
	first, err := New(path)
	s.Require().NoError(err)
	_, err = first.CreateUser(s.ctx, "alice", "a@x.com")
	s.Require().NoError(err)
	s.Require().NoError(first.Close())

	second, err := New(path)
	s.Require().NoError(err)
	defer second.Close() //nolint: errcheck

	count, err := second.CountUsers(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(1), count)
}

func TestUserTestSuite(t *testing.T) {
	suite.Run(t, new(UserTestSuite))
}
