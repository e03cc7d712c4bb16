// Package engine renders and mutates one table for one session.
package engine

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/sunrise/core"
	"github.com/trezcool/sunrise/core/gate"
	"github.com/trezcool/sunrise/core/schema"
	"github.com/trezcool/sunrise/core/session"
	"github.com/trezcool/sunrise/core/store"
	"github.com/trezcool/sunrise/core/user"
)

type State string

const (
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateError   State = "error"
)

// Mode is the sub-state of a ready view.
type Mode string

const (
	ModeBrowsing         Mode = "browsing"
	ModeEditing          Mode = "editing"
	ModeConfirmingDelete Mode = "confirming_delete"
)

var (
	ErrStale           = errors.New("stale load discarded")
	ErrNoTable         = errors.New("no table available for this role")
	ErrTableNotEnabled = errors.New("table not enabled for this role")
	ErrNotReady        = errors.New("table is not loaded")
	ErrPageSize        = errors.New("page size must be one of 5, 10, 20, 50 or 100")
	ErrUnknownColumn   = errors.New("unknown or unsortable column")
	ErrNotEditing      = errors.New("no record is being edited")
	ErrNoDeleteRequest = errors.New("no delete is awaiting confirmation")
	ErrKeyImmutable    = errors.New("primary key fields cannot be edited")
	ErrIncompleteKey   = errors.New("record is missing a primary key value")
	ErrRowNotFound     = errors.New("record not found")
)

// UserCreator creates login accounts from the users add form.
type UserCreator interface {
	Create(ctx context.Context, nu user.NewUser) (user.User, error)
}

type Options struct {
	Store    store.Store
	Registry *schema.Registry
	Users    UserCreator
}

// View is one mounted table view. It is safe for concurrent use.
type View struct {
	opts Options
	sess *session.Session

	mu         sync.Mutex
	table      string
	state      State
	mode       Mode
	err        error
	rows       []schema.Row // fetch order
	generation uint64

	filter    string
	sortCol   string
	sortDir   SortDir
	pageSize  int
	pageIndex int

	edit *EditBuffer
	del  *DeleteRequest
}

func NewView(opts Options, sess *session.Session) *View {
	if opts.Registry == nil {
		opts.Registry = schema.Default
	}
	return &View{
		opts:     opts,
		sess:     sess,
		state:    StateLoading,
		mode:     ModeBrowsing,
		pageSize: DefaultPageSize,
	}
}

func (v *View) role() user.Role {
	if v.sess == nil {
		return ""
	}
	return v.sess.Role
}

// SelectTable picks the route param, else the prop, else the role's first table.
// Any change of table re-enters Loading.
func (v *View) SelectTable(param, prop string) error {
	name := param
	if name == "" {
		name = prop
	}
	role := v.role()
	if name == "" {
		tables := gate.EnabledTables(role)
		if len(tables) == 0 {
			return ErrNoTable
		}
		name = tables[0]
	}
	if !gate.TableEnabled(role, name) {
		return errors.Wrapf(ErrTableNotEnabled, "%s", name)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if name == v.table {
		return nil
	}
	v.table = name
	v.state = StateLoading
	v.mode = ModeBrowsing
	v.err = nil
	v.rows = nil
	v.filter, v.sortCol, v.sortDir, v.pageIndex = "", "", SortNone, 0
	v.edit, v.del = nil, nil
	v.generation++ // loads in flight for the old table are now stale
	return nil
}

// Load fetches the active table. A load overtaken by a newer load or table switch
// is discarded and reports ErrStale.
func (v *View) Load(ctx context.Context) error {
	v.mu.Lock()
	if v.table == "" {
		v.mu.Unlock()
		return ErrNoTable
	}
	v.generation++
	gen, table := v.generation, v.table
	v.state = StateLoading
	v.mu.Unlock()

	data, err := v.opts.Store.FetchAll(ctx, []string{table})

	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.generation {
		return ErrStale
	}
	if err != nil {
		v.state = StateError
		v.err = core.NewFetchError(err)
		v.rows = nil
		return v.err
	}
	v.state = StateReady
	v.err = nil
	v.rows = data[table]
	v.clampPage()
	return nil
}

// Retry is a fresh Load.
func (v *View) Retry(ctx context.Context) error {
	return v.Load(ctx)
}

func (v *View) Table() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.table
}

func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

func (v *View) Mode() Mode {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.mode
}

// Err is the fetch error of a view in StateError.
func (v *View) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.err
}

// Rows returns the fetched rows in fetch order.
func (v *View) Rows() []schema.Row {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]schema.Row, len(v.rows))
	for i, r := range v.rows {
		out[i] = r.Clone()
	}
	return out
}

// Find returns the fetched row identified by the key fields of row.
func (v *View) Find(row schema.Row) (schema.Row, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.find(row)
}

func (v *View) find(row schema.Row) (schema.Row, error) {
	if v.state != StateReady {
		return nil, ErrNotReady
	}
	pk := v.opts.Registry.PrimaryKeysFor(v.table)
	filter, err := completeKey(row, pk)
	if err != nil {
		return nil, err
	}
	for _, r := range v.rows {
		if r.Matches(filter) {
			return r.Clone(), nil
		}
	}
	return nil, ErrRowNotFound
}

// completeKey builds the key filter of row, failing if any key value is missing.
func completeKey(row schema.Row, pk []string) (schema.Row, error) {
	filter := schema.KeyFilter(row, pk)
	if len(filter) != len(pk) {
		return nil, ErrIncompleteKey
	}
	for _, val := range filter {
		if val.IsEmpty() {
			return nil, ErrIncompleteKey
		}
	}
	return filter, nil
}
