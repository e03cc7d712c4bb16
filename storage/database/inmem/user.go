package inmemdb

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/sunrise/core/schema"
	"github.com/trezcool/sunrise/core/user"
)

type userRepository struct {
	db *DB
}

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) query() ([]user.User, error) {
	rows, err := repo.db.query(schema.TableUsers)
	if err != nil {
		return nil, err
	}
	users := make([]user.User, 0, len(rows))
	for _, r := range rows {
		users = append(users, user.FromRow(r))
	}
	return users, nil
}

func (repo *userRepository) CheckUsernameUniqueness(ctx context.Context, username string, excludedUsers ...user.User) error {
	users, err := repo.query()
	if err != nil {
		return err
	}
	for _, usr := range users {
		if usr.Username == username && !isExcluded(usr, excludedUsers) {
			return user.ErrUsernameExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	row, err := repo.db.insert(schema.TableUsers, usr.Row())
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return user.FromRow(row), nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id int) (user.User, error) {
	users, err := repo.query()
	if err != nil {
		return user.User{}, err
	}
	for _, usr := range users {
		if usr.ID == id {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	users, err := repo.query()
	if err != nil {
		return user.User{}, err
	}
	for _, usr := range users {
		if usr.Username == username {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) SetPassword(ctx context.Context, id int, hash []byte) error {
	row := schema.Row{
		"id":            schema.Number(float64(id)),
		"password_hash": schema.String(string(hash)),
	}
	return repo.db.update(schema.TableUsers, row, schema.Row{"id": row["id"]})
}

func isExcluded(usr user.User, excludedUsers []user.User) bool {
	for _, excl := range excludedUsers {
		if excl.ID == usr.ID {
			return true
		}
	}
	return false
}
