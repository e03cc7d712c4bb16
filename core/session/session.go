// Package session holds the signed-in user of a client.
package session

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/trezcool/sunrise/core/user"
)

// fixed persistence keys
const (
	KeyUserData = "userData"
	KeyUserRole = "userRole"
)

var ErrNoSession = errors.New("no session")

// Session is the authenticated user passed to every component that needs it.
// The zero value is an unresolved session.
type Session struct {
	User     user.User `json:"user"`
	Role     user.Role `json:"role"`
	Resolved bool      `json:"-"`
}

// New builds the session of a successfully authenticated user.
func New(usr user.User) *Session {
	return &Session{User: usr, Role: usr.Role, Resolved: true}
}

// Pending returns a session whose state is not known yet.
func Pending() *Session {
	return &Session{}
}

// Store persists a session between runs.
type Store interface {
	Load() (*Session, error)
	Save(sess *Session) error
	Clear() error
}

// FileStore keeps the session in a JSON file readable by the owner only.
type FileStore struct {
	path string
}

var _ Store = (*FileStore)(nil)

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load returns ErrNoSession when nothing was saved.
func (fs *FileStore) Load() (*Session, error) {
	data, err := os.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSession
		}
		return nil, errors.Wrap(err, "reading session file")
	}

	var kv map[string]string
	if err = json.Unmarshal(data, &kv); err != nil {
		return nil, errors.Wrap(err, "decoding session file")
	}
	rawUser, role := kv[KeyUserData], kv[KeyUserRole]
	if rawUser == "" || role == "" {
		return nil, ErrNoSession
	}

	var usr user.User
	if err = json.Unmarshal([]byte(rawUser), &usr); err != nil {
		return nil, errors.Wrap(err, "decoding session user")
	}
	r, ok := user.ParseRole(role)
	if !ok {
		return nil, ErrNoSession
	}
	return &Session{User: usr, Role: r, Resolved: true}, nil
}

// Save writes exactly the userData and userRole keys; the password hash is never serialized.
func (fs *FileStore) Save(sess *Session) error {
	if sess == nil || !sess.Resolved {
		return ErrNoSession
	}
	rawUser, err := json.Marshal(sess.User)
	if err != nil {
		return errors.Wrap(err, "encoding session user")
	}
	data, err := json.Marshal(map[string]string{
		KeyUserData: string(rawUser),
		KeyUserRole: string(sess.Role),
	})
	if err != nil {
		return errors.Wrap(err, "encoding session")
	}

	if err = os.MkdirAll(filepath.Dir(fs.path), 0o700); err != nil {
		return errors.Wrap(err, "creating session dir")
	}
	return errors.Wrap(os.WriteFile(fs.path, data, 0o600), "writing session file")
}

func (fs *FileStore) Clear() error {
	if err := os.Remove(fs.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing session file")
	}
	return nil
}
