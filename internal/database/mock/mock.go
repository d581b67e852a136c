package mock

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/jon4hz/oktasim/internal/database"
)

var _ database.DB = (*MockDB)(nil)

// MockDB is a mock implementation of database.DB for testing.
type MockDB struct {
	mu sync.RWMutex

	// User storage
	users      map[uint]*database.User
	nextUserID uint

	// Error simulation
	CreateUserError     error
	GetUserByIDError    error
	GetUserByEmailError error
	GetAllUsersError    error
	DeleteUserError     error
	CountUsersError     error
}

// NewMockDB creates a new MockDB instance.
func NewMockDB() *MockDB {
	return &MockDB{
		users:      make(map[uint]*database.User),
		nextUserID: 1,
	}
}

// Reset clears all data and errors from the mock database.
func (m *MockDB) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.users = make(map[uint]*database.User)
	m.nextUserID = 1

	m.CreateUserError = nil
	m.GetUserByIDError = nil
	m.GetUserByEmailError = nil
	m.GetAllUsersError = nil
	m.DeleteUserError = nil
	m.CountUsersError = nil
}

// SetErrors runs fn under the mock's lock so injected errors can change while calls are in flight.
func (m *MockDB) SetErrors(fn func(m *MockDB)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(m)
}

func (m *MockDB) CreateUser(ctx context.Context, username, email string) (*database.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CreateUserError != nil {
		return nil, m.CreateUserError
	}

	for _, u := range m.users {
		if u.Email == email {
			return nil, database.ErrDuplicateEmail
		}
	}

	user := &database.User{
		ID:       m.nextUserID,
		Username: username,
		Email:    email,
	}
	m.nextUserID++
	m.users[user.ID] = user

	copied := *user
	return &copied, nil
}

func (m *MockDB) GetUserByID(ctx context.Context, id uint) (*database.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.GetUserByIDError != nil {
		return nil, m.GetUserByIDError
	}

	user, ok := m.users[id]
	if !ok {
		return nil, database.ErrUserNotFound
	}

	copied := *user
	return &copied, nil
}

func (m *MockDB) GetUserByEmail(ctx context.Context, email string) (*database.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.GetUserByEmailError != nil {
		return nil, m.GetUserByEmailError
	}

	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}

	return nil, database.ErrUserNotFound
}

func (m *MockDB) GetAllUsers(ctx context.Context) ([]database.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.GetAllUsersError != nil {
		return nil, m.GetAllUsersError
	}

	users := make([]database.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, *u)
	}
	slices.SortFunc(users, func(a, b database.User) int {
		return cmp.Compare(a.ID, b.ID)
	})

	return users, nil
}

func (m *MockDB) DeleteUser(ctx context.Context, id uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.DeleteUserError != nil {
		return false, m.DeleteUserError
	}

	if _, ok := m.users[id]; !ok {
		return false, nil
	}
	delete(m.users, id)

	return true, nil
}

func (m *MockDB) CountUsers(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.CountUsersError != nil {
		return 0, m.CountUsersError
	}

	return int64(len(m.users)), nil
}

func (m *MockDB) Close() error {
	return nil
}
