package engine

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/sunrise/core"
	"github.com/trezcool/sunrise/core/schema"
	"github.com/trezcool/sunrise/core/user"
)

const (
	MsgUpdated = "Record updated successfully"
	MsgDeleted = "Record deleted successfully"
	MsgAdded   = "Record added successfully"

	MsgUserCreated  = "User created successfully"
	MsgStudentAdded = "Student added successfully"
	MsgTeacherAdded = "Teacher added successfully"

	MsgStudentEmailTaken = "A student with this email already exists!"
	MsgTeacherEmailTaken = "A teacher with this email already exists!"
)

// EditBuffer is a shallow copy of the row being edited.
type EditBuffer struct {
	Table string
	Row   schema.Row
	pk    []string
}

func (buf *EditBuffer) Get(field string) schema.Value {
	return buf.Row.Get(field)
}

// Set changes a non-key field.
func (buf *EditBuffer) Set(field string, val schema.Value) error {
	for _, k := range buf.pk {
		if k == field {
			return ErrKeyImmutable
		}
	}
	buf.Row[field] = val
	return nil
}

// DeleteRequest awaits confirmation; KeyFilter holds every key field of the row.
type DeleteRequest struct {
	Table     string
	KeyFilter schema.Row
}

// Edit opens an edit buffer on a fetched row.
func (v *View) Edit(row schema.Row) (*EditBuffer, error) {
	if v.role() == "" || v.role().MostRestricted() {
		return nil, core.ErrForbidden
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	found, err := v.find(row)
	if err != nil {
		return nil, err
	}
	v.edit = &EditBuffer{Table: v.table, Row: found, pk: v.opts.Registry.PrimaryKeysFor(v.table)}
	v.del = nil
	v.mode = ModeEditing
	return v.edit, nil
}

// Editing returns the open edit buffer, if any.
func (v *View) Editing() *EditBuffer {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.edit
}

func (v *View) CancelEdit() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.edit = nil
	if v.mode == ModeEditing {
		v.mode = ModeBrowsing
	}
}

// Save writes the edit buffer. On failure the buffer stays open.
func (v *View) Save(ctx context.Context) (Notification, error) {
	v.mu.Lock()
	buf := v.edit
	v.mu.Unlock()
	if buf == nil {
		return Notification{}, ErrNotEditing
	}

	if err := v.opts.Store.UpdateRecord(ctx, buf.Table, buf.Row.Clone(), buf.pk); err != nil {
		return Notification{}, core.NewMutationError("Update error", err)
	}

	v.mu.Lock()
	if v.edit == buf {
		v.edit = nil
		v.mode = ModeBrowsing
	}
	v.mu.Unlock()
	v.reload(ctx)
	return Success(MsgUpdated), nil
}

// RequestDelete asks for confirmation before deleting row. Admins only.
func (v *View) RequestDelete(row schema.Row) (*DeleteRequest, error) {
	if v.role() != user.RoleAdmin {
		return nil, core.ErrForbidden
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state != StateReady {
		return nil, ErrNotReady
	}
	filter, err := completeKey(row, v.opts.Registry.PrimaryKeysFor(v.table))
	if err != nil {
		return nil, err
	}
	v.del = &DeleteRequest{Table: v.table, KeyFilter: filter}
	v.edit = nil
	v.mode = ModeConfirmingDelete
	return v.del, nil
}

func (v *View) CancelDelete() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.del = nil
	if v.mode == ModeConfirmingDelete {
		v.mode = ModeBrowsing
	}
}

func (v *View) ConfirmDelete(ctx context.Context) (Notification, error) {
	v.mu.Lock()
	req := v.del
	v.del = nil
	if v.mode == ModeConfirmingDelete {
		v.mode = ModeBrowsing
	}
	v.mu.Unlock()
	if req == nil {
		return Notification{}, ErrNoDeleteRequest
	}

	if err := v.opts.Store.DeleteRecord(ctx, req.Table, req.KeyFilter); err != nil {
		return Notification{}, core.NewMutationError("Delete error", err)
	}
	v.reload(ctx)
	return Success(MsgDeleted), nil
}

// Add inserts a new record into the active table. Empty strings are stored as null.
func (v *View) Add(ctx context.Context, values schema.Row) (Notification, error) {
	v.mu.Lock()
	table := v.table
	v.mu.Unlock()
	if table == "" {
		return Notification{}, ErrNoTable
	}

	values = values.NullifyEmpty()
	msg := MsgAdded
	switch table {
	case schema.TableUsers:
		return v.addUser(ctx, values)
	case schema.TableStudents:
		if err := v.checkEmail(ctx, table, values, MsgStudentEmailTaken); err != nil {
			return Notification{}, err
		}
		msg = MsgStudentAdded
	case schema.TableTeachers:
		if err := v.checkEmail(ctx, table, values, MsgTeacherEmailTaken); err != nil {
			return Notification{}, err
		}
		msg = MsgTeacherAdded
	}

	if err := v.opts.Store.InsertRecord(ctx, table, values); err != nil {
		return Notification{}, core.NewMutationError("Insert error", err)
	}
	v.reload(ctx)
	return Success(msg), nil
}

func (v *View) addUser(ctx context.Context, values schema.Row) (Notification, error) {
	if v.opts.Users == nil {
		return Notification{}, core.NewMutationError("Insert error", errors.New("user accounts are not available"))
	}
	if _, err := v.opts.Users.Create(ctx, user.NewUserFromRow(values)); err != nil {
		var vErr *core.ValidationError
		if errors.As(err, &vErr) {
			return Notification{}, err
		}
		return Notification{}, core.NewMutationError("Insert error", err)
	}
	v.reload(ctx)
	return Success(MsgUserCreated), nil
}

// checkEmail rejects values whose email is already used in table, ignoring case.
func (v *View) checkEmail(ctx context.Context, table string, values schema.Row, taken string) error {
	email := strings.TrimSpace(values.Text("email"))
	if email == "" {
		return nil
	}
	data, err := v.opts.Store.FetchAll(ctx, []string{table})
	if err != nil {
		return core.NewMutationError("Insert error", err)
	}
	for _, r := range data[table] {
		if strings.EqualFold(strings.TrimSpace(r.Text("email")), email) {
			return core.NewMutationError("", errors.New(taken))
		}
	}
	return nil
}

// reload refreshes the table after a mutation. A failing reload shows up as the
// view's error state, not as a failure of the mutation.
func (v *View) reload(ctx context.Context) {
	_ = v.Load(ctx)
}
