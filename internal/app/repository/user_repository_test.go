package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/umichkisa/pocha-backend/internal/app/model"
	"gorm.io/gorm"
)

func TestUserRepository_Create(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))

	tests := []struct {
		name    string
		user    *model.User
		wantErr bool
	}{
		{
			name:    "Valid user",
			user:    &model.User{Email: "jiwoo@umich.edu", FullName: "Jiwoo Kim", Role: model.RoleUser},
			wantErr: false,
		},
		{
			name:    "Duplicate email",
			user:    &model.User{Email: "jiwoo@umich.edu", FullName: "Another", Role: model.RoleUser},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(tt.user)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.NotZero(t, tt.user.ID)
			}
		})
	}
}

func TestUserRepository_FindByEmail(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	require.NoError(t, repo.Create(&model.User{Email: "jiwoo@umich.edu", FullName: "Jiwoo Kim"}))

	user, err := repo.FindByEmail("jiwoo@umich.edu")
	require.NoError(t, err)
	assert.Equal(t, "Jiwoo Kim", user.FullName)
	assert.Equal(t, model.RoleUser, user.Role)

	_, err = repo.FindByEmail("nobody@umich.edu")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	locked, err := repo.FindByEmailForUpdate("jiwoo@umich.edu")
	require.NoError(t, err)
	assert.Equal(t, user.ID, locked.ID)
}

func TestUserRepository_FindByEmails(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	require.NoError(t, repo.Create(&model.User{Email: "a@umich.edu", FullName: "A"}))
	require.NoError(t, repo.Create(&model.User{Email: "b@umich.edu", FullName: "B"}))

	users, err := repo.FindByEmails([]string{"a@umich.edu", "b@umich.edu", "a@umich.edu", "c@umich.edu"})
	require.NoError(t, err)
	assert.Len(t, users, 2)

	users, err = repo.FindByEmails(nil)
	require.NoError(t, err)
	assert.Empty(t, users)
}
