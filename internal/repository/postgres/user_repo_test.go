package postgres_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sayantan/task-manager-api/internal/domain"
	"github.com/sayantan/task-manager-api/internal/repository/postgres"
	"github.com/sayantan/task-manager-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_Create(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	tests := []struct {
		name    string
		user    *domain.User
		wantErr bool
	}{
		{
			name: "successful creation",
			user: &domain.User{
				ID:       uuid.New(),
				Name:     "Sayantan",
				Email:    "create@example.com",
				Password: "Rook7653",
			},
			wantErr: false,
		},
		{
			name: "duplicate email",
			user: &domain.User{
				ID:       uuid.New(),
				Name:     "Somebody Else",
				Email:    "create@example.com", // Same as above
				Password: "Rook7654",
			},
			wantErr: true,
		},
		{
			name: "invalid email rejected by save hook",
			user: &domain.User{
				ID:       uuid.New(),
				Name:     "Sayantan",
				Email:    "nope",
				Password: "Rook7653",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(ctx, tt.user)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestUserRepository_Create_HashesPassword(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	user := &domain.User{
		ID:       uuid.New(),
		Name:     "Sayantan",
		Email:    "hash@example.com",
		Password: "Rook7653",
	}
	require.NoError(t, repo.Create(ctx, user))

	stored, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "Rook7653", stored.Password)
	assert.True(t, stored.CheckPassword("Rook7653"))
}

func TestUserRepository_GetByEmail(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().
		WithEmail("byemail@example.com").
		Build(t, testDB.DB)

	tests := []struct {
		name    string
		email   string
		want    *domain.User
		wantErr bool
	}{
		{
			name:  "existing user",
			email: "byemail@example.com",
			want:  user,
		},
		{
			name:    "non-existent user",
			email:   "missing@example.com",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.GetByEmail(ctx, tt.email)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want.ID, got.ID)
			assert.Equal(t, tt.want.Email, got.Email)
		})
	}
}

func TestUserRepository_Update_PersistsTokens(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	user.AddToken("session-token-1")
	user.AddToken("session-token-2")
	require.NoError(t, repo.Update(ctx, user))

	stored, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"session-token-1", "session-token-2"}, stored.TokenList())
}

func TestUserRepository_Delete_CascadesTasks(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	userRepo := postgres.NewUserRepository(testDB.DB)
	taskRepo := postgres.NewTaskRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	other, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	testutil.NewTaskBuilder().WithOwner(user).Build(t, testDB.DB)
	testutil.NewTaskBuilder().WithOwner(user).Build(t, testDB.DB)
	testutil.NewTaskBuilder().WithOwner(other).Build(t, testDB.DB)

	require.NoError(t, userRepo.Delete(ctx, user))

	count, err := taskRepo.GetByOwnerCount(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, count, "tasks owned by the deleted user must be gone")

	otherCount, err := taskRepo.GetByOwnerCount(ctx, other.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, otherCount, "other users' tasks must survive")
}
