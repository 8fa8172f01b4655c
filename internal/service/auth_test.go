package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"filesmanager/internal/model"
	"filesmanager/internal/repository"
	repoMocks "filesmanager/internal/repository/mocks"
	sessionMocks "filesmanager/internal/session/mocks"
)

func newTestAuthService() (*authService, *repoMocks.MockUserRepository, *sessionMocks.MockStore) {
	users := new(repoMocks.MockUserRepository)
	sessions := new(sessionMocks.MockStore)
	svc := NewAuthService(users, sessions, zap.NewNop()).(*authService)
	svc.cost = bcrypt.MinCost
	return svc, users, sessions
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		in         RegisterInput
		setupMocks func(users *repoMocks.MockUserRepository)
		wantErr    error
		wantMsg    string
	}{
		{
			name:       "missing email",
			in:         RegisterInput{Password: "toto1234!"},
			setupMocks: func(users *repoMocks.MockUserRepository) {},
			wantMsg:    "Missing email",
		},
		{
			name:       "missing password",
			in:         RegisterInput{Email: "bob@dylan.com"},
			setupMocks: func(users *repoMocks.MockUserRepository) {},
			wantMsg:    "Missing password",
		},
		{
			name: "email taken",
			in:   RegisterInput{Email: "bob@dylan.com", Password: "toto1234!"},
			setupMocks: func(users *repoMocks.MockUserRepository) {
				users.On("Create", ctx, mock.Anything).Return(nil, repository.ErrDuplicate)
			},
			wantMsg: "Already exist",
		},
		{
			name: "store down",
			in:   RegisterInput{Email: "bob@dylan.com", Password: "toto1234!"},
			setupMocks: func(users *repoMocks.MockUserRepository) {
				users.On("Create", ctx, mock.Anything).Return(nil, errors.New("conn reset"))
			},
			wantErr: ErrUnavailable,
		},
		{
			name: "stores a bcrypt hash",
			in:   RegisterInput{Email: "bob@dylan.com", Password: "toto1234!"},
			setupMocks: func(users *repoMocks.MockUserRepository) {
				users.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
					return u.Email == "bob@dylan.com" &&
						bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("toto1234!")) == nil
				})).Return(&model.User{ID: 1, Email: "bob@dylan.com"}, nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, users, _ := newTestAuthService()
			tt.setupMocks(users)

			user, err := svc.Register(ctx, tt.in)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantMsg != "":
				var vErr *ValidationError
				require.ErrorAs(t, err, &vErr)
				assert.Equal(t, tt.wantMsg, vErr.Message)
			default:
				require.NoError(t, err)
				assert.Equal(t, int64(1), user.ID)
			}
			users.AssertExpectations(t)
		})
	}
}

func TestAuthService_Connect(t *testing.T) {
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("toto1234!"), bcrypt.MinCost)
	require.NoError(t, err)
	bob := &model.User{ID: 1, Email: "bob@dylan.com", PasswordHash: string(hash)}

	t.Run("valid credentials", func(t *testing.T) {
		svc, users, sessions := newTestAuthService()
		users.On("FindByEmail", ctx, "bob@dylan.com").Return(bob, nil)
		sessions.On("Issue", ctx, int64(1)).Return("tok-1", nil)

		token, err := svc.Connect(ctx, "bob@dylan.com", "toto1234!")

		require.NoError(t, err)
		assert.Equal(t, "tok-1", token)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, users, sessions := newTestAuthService()
		users.On("FindByEmail", ctx, "bob@dylan.com").Return(bob, nil)

		_, err := svc.Connect(ctx, "bob@dylan.com", "nope")

		assert.ErrorIs(t, err, ErrUnauthorized)
		sessions.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything)
	})

	t.Run("unknown email", func(t *testing.T) {
		svc, users, _ := newTestAuthService()
		users.On("FindByEmail", ctx, "who@where.com").Return(nil, sql.ErrNoRows)

		_, err := svc.Connect(ctx, "who@where.com", "toto1234!")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("session store down", func(t *testing.T) {
		svc, users, sessions := newTestAuthService()
		users.On("FindByEmail", ctx, "bob@dylan.com").Return(bob, nil)
		sessions.On("Issue", ctx, int64(1)).Return("", errors.New("redis down"))

		_, err := svc.Connect(ctx, "bob@dylan.com", "toto1234!")
		assert.ErrorIs(t, err, ErrUnavailable)
	})
}

func TestAuthService_Disconnect(t *testing.T) {
	ctx := context.Background()

	t.Run("live token", func(t *testing.T) {
		svc, _, sessions := newTestAuthService()
		sessions.On("Resolve", ctx, "tok-1").Return(int64(1), true)
		sessions.On("Revoke", ctx, "tok-1").Return(nil)

		require.NoError(t, svc.Disconnect(ctx, "tok-1"))
		sessions.AssertExpectations(t)
	})

	t.Run("unknown token", func(t *testing.T) {
		svc, _, sessions := newTestAuthService()
		sessions.On("Resolve", ctx, "gone").Return(int64(0), false)

		assert.ErrorIs(t, svc.Disconnect(ctx, "gone"), ErrUnauthorized)
		sessions.AssertNotCalled(t, "Revoke", mock.Anything, mock.Anything)
	})

	t.Run("revoke fails", func(t *testing.T) {
		svc, _, sessions := newTestAuthService()
		sessions.On("Resolve", ctx, "tok-1").Return(int64(1), true)
		sessions.On("Revoke", ctx, "tok-1").Return(errors.New("redis down"))

		assert.ErrorIs(t, svc.Disconnect(ctx, "tok-1"), ErrUnavailable)
	})
}

func TestAuthService_Me(t *testing.T) {
	ctx := context.Background()

	svc, users, _ := newTestAuthService()
	users.On("FindByID", ctx, int64(1)).Return(&model.User{ID: 1, Email: "bob@dylan.com"}, nil)
	users.On("FindByID", ctx, int64(2)).Return(nil, sql.ErrNoRows)

	user, err := svc.Me(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "bob@dylan.com", user.Email)

	_, err = svc.Me(ctx, 2)
	assert.ErrorIs(t, err, ErrUnauthorized)
}
