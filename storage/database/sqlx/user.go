package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/sunrise/core"
	"github.com/trezcool/sunrise/core/store"
	"github.com/trezcool/sunrise/core/user"
)

const userTable = "users"

var userColumns = []string{"id", "username", "full_name", "email", "role", "password_hash", "created_at"}

type dbUser struct {
	ID           int         `db:"id"`
	Username     string      `db:"username"`
	FullName     null.String `db:"full_name"`
	Email        null.String `db:"email"`
	Role         string      `db:"role"`
	PasswordHash string      `db:"password_hash"`
	CreatedAt    time.Time   `db:"created_at"`
}

func (u dbUser) toUser() user.User {
	return user.User{
		ID:           u.ID,
		Username:     u.Username,
		FullName:     u.FullName,
		Email:        u.Email,
		Role:         user.Role(u.Role),
		PasswordHash: []byte(u.PasswordHash),
		CreatedAt:    u.CreatedAt.UTC(),
	}
}

type userRepository struct {
	db core.DBExecutor
}

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) get(ctx context.Context, where sq.Sqlizer) (user.User, error) {
	query, args, err := psql.Select(userColumns...).From(userTable).Where(where).Limit(1).ToSql()
	if err != nil {
		return user.User{}, errors.Wrap(err, "building query")
	}

	var u dbUser
	if err = sqlx.GetContext(ctx, repo.db, &u, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "selecting user")
	}
	return u.toUser(), nil
}

func (repo *userRepository) CheckUsernameUniqueness(ctx context.Context, username string, excludedUsers ...user.User) error {
	// SELECT COUNT(*) FROM users WHERE username = $1 AND id NOT IN ($2,$3)
	where := sq.And{sq.Eq{"username": username}}
	if len(excludedUsers) > 0 {
		ids := make([]int, 0, len(excludedUsers))
		for _, u := range excludedUsers {
			ids = append(ids, u.ID)
		}
		where = append(where, sq.NotEq{"id": ids})
	}
	query, args, err := psql.Select("COUNT(*)").From(userTable).Where(where).ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}

	var count int
	if err = sqlx.GetContext(ctx, repo.db, &count, query, args...); err != nil {
		return errors.Wrap(err, "counting users")
	}
	if count > 0 {
		return user.ErrUsernameExists
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	query, args, err := psql.Insert(userTable).
		SetMap(map[string]interface{}{
			"username":      usr.Username,
			"full_name":     usr.FullName,
			"email":         usr.Email,
			"role":          string(usr.Role),
			"password_hash": string(usr.PasswordHash),
			"created_at":    usr.CreatedAt,
		}).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return user.User{}, errors.Wrap(err, "building query")
	}

	if err = repo.db.QueryRowxContext(ctx, query, args...).Scan(&usr.ID); err != nil {
		return user.User{}, dbError(userTable, store.OpInsert, err)
	}
	return usr, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id int) (user.User, error) {
	return repo.get(ctx, sq.Eq{"id": id})
}

func (repo *userRepository) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	return repo.get(ctx, sq.Eq{"username": username})
}

func (repo *userRepository) SetPassword(ctx context.Context, id int, hash []byte) error {
	query, args, err := psql.Update(userTable).Set("password_hash", string(hash)).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return dbError(userTable, store.OpUpdate, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.ErrNotFound
	}
	return nil
}
