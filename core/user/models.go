package user

import (
	"strings"
	"time"

	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/sunrise/core"
	"github.com/trezcool/sunrise/core/schema"
)

type Role string

// Roles
const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

var (
	// AllRoles is ordered from the most restricted role to the least.
	AllRoles = []Role{RoleStudent, RoleTeacher, RoleAdmin}

	rolePriorities = map[Role]int{
		RoleAdmin:   3,
		RoleTeacher: 2,
		RoleStudent: 1,
	}
)

// ParseRole accepts any case and surrounding whitespace.
func ParseRole(s string) (Role, bool) {
	r := Role(core.CleanString(s, true /* lower */))
	return r, r.Valid()
}

func (r Role) Valid() bool {
	_, ok := rolePriorities[r]
	return ok
}

func (r Role) Priority() int {
	return rolePriorities[r]
}

// MostRestricted reports whether r has the lowest priority of all roles.
func (r Role) MostRestricted() bool {
	return r == AllRoles[0]
}

func (r Role) String() string { return string(r) }

type User struct {
	ID           int         `json:"id"`
	Username     string      `json:"username"`
	FullName     null.String `json:"full_name"`
	Email        null.String `json:"email"`
	Role         Role        `json:"role"`
	PasswordHash []byte      `json:"-"`
	CreatedAt    time.Time   `json:"created_at"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u User) IsAdmin() bool   { return u.Role == RoleAdmin }
func (u User) IsTeacher() bool { return u.Role == RoleTeacher }
func (u User) IsStudent() bool { return u.Role == RoleStudent }

// DisplayName is the full name if set, else the username.
func (u User) DisplayName() string {
	if name := strings.TrimSpace(u.FullName.String); u.FullName.Valid && name != "" {
		return name
	}
	return u.Username
}

// Row returns the user as a `users` row. The id is left out until the user is saved.
func (u User) Row() schema.Row {
	row := schema.Row{
		"username":      schema.String(u.Username),
		"full_name":     nullString(u.FullName),
		"email":         nullString(u.Email),
		"role":          schema.String(string(u.Role)),
		"password_hash": schema.String(string(u.PasswordHash)),
		"created_at":    schema.Date(u.CreatedAt),
	}
	if u.ID != 0 {
		row["id"] = schema.Number(float64(u.ID))
	}
	return row
}

// FromRow builds a User from a `users` row.
func FromRow(row schema.Row) User {
	usr := User{
		ID:           int(row.Num("id")),
		Username:     row.Text("username"),
		FullName:     toNullString(row.Get("full_name")),
		Email:        toNullString(row.Get("email")),
		Role:         Role(row.Text("role")),
		PasswordHash: []byte(row.Text("password_hash")),
	}
	if t, ok := row.Time("created_at"); ok {
		usr.CreatedAt = t.UTC()
	}
	return usr
}

func nullString(s null.String) schema.Value {
	if !s.Valid {
		return schema.Null()
	}
	return schema.String(s.String)
}

func toNullString(v schema.Value) null.String {
	if v.IsNull() {
		return null.String{}
	}
	return null.StringFrom(v.Text())
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Username string `json:"username" validate:"required,min=3,alphanum_"`
	Password string `json:"password" validate:"required,min=6"`
	Role     Role   `json:"role" validate:"required,role"`
	FullName string `json:"full_name"`
	Email    string `json:"email" validate:"omitempty,email"`
}

// NewUserFromRow reads the fields of the users add form.
func NewUserFromRow(row schema.Row) NewUser {
	return NewUser{
		Username: row.Text("username"),
		Password: row.Get("password").StringVal(),
		Role:     Role(row.Text("role")),
		FullName: row.Text("full_name"),
		Email:    row.Text("email"),
	}
}

func (nu *NewUser) clean() {
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.FullName = core.CleanString(nu.FullName)
	nu.Role = Role(core.CleanString(string(nu.Role), true /* lower */))
}

type ResetPassword struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}
