package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/sunrise/core/user"
)

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sunrise", "session.json")
	fs := NewFileStore(path)

	_, err := fs.Load()
	assert.Equal(t, ErrNoSession, err)

	usr := user.User{
		ID:           4,
		Username:     "asha",
		FullName:     null.StringFrom("Asha Kumari"),
		Role:         user.RoleTeacher,
		PasswordHash: []byte("$2a$10$secret"),
		CreatedAt:    time.Date(2024, 4, 1, 8, 0, 0, 0, time.UTC),
	}
	require.NoError(t, fs.Save(New(usr)))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")
	assert.Contains(t, string(data), `"userRole":"teacher"`)

	sess, err := fs.Load()
	require.NoError(t, err)
	assert.True(t, sess.Resolved)
	assert.Equal(t, user.RoleTeacher, sess.Role)
	assert.Equal(t, "asha", sess.User.Username)
	assert.Equal(t, "Asha Kumari", sess.User.DisplayName())
	assert.Empty(t, sess.User.PasswordHash)

	require.NoError(t, fs.Clear())
	_, err = fs.Load()
	assert.Equal(t, ErrNoSession, err)
	assert.NoError(t, fs.Clear(), "clearing twice is fine")
}

func TestFileStore_save(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	assert.Equal(t, ErrNoSession, fs.Save(nil))
	assert.Equal(t, ErrNoSession, fs.Save(Pending()))
}
