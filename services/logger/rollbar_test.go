package logsvc

import (
	"bytes"
	"log"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/sunrise/core"
	"github.com/trezcool/sunrise/core/session"
	"github.com/trezcool/sunrise/core/user"
)

func TestRollbarLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewRollbarLogger(log.New(&buf, "", 0), &core.Config{Env: "test"})
	l.Enable(false)

	asha := user.User{ID: 4, Username: "asha", Role: user.RoleTeacher}
	tests := []struct {
		name string
		log  func()
		want []string
	}{
		{
			name: "error with user",
			log:  func() { l.Error("saving TC", errors.New("duplicate key"), asha) },
			want: []string{"[ERROR] saving TC", "duplicate key", "user: 4 asha"},
		},
		{
			name: "info with session",
			log:  func() { l.Info("scan confirmed", session.New(asha), map[string]interface{}{"student_id": "S1"}) },
			want: []string{"[INFO] scan confirmed", "user: 4 asha (teacher)", "student_id:S1"},
		},
		{
			name: "warn",
			log:  func() { l.Warn("slow fetch") },
			want: []string{"[WARN] slow fetch"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.log()
			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
		})
	}
}

func TestRollbarLogger_prepare(t *testing.T) {
	l := RollbarLogger{std: log.New(&bytes.Buffer{}, "", 0)}
	usr := user.User{ID: 1, Username: "admin"}
	args := l.prepare("msg", []interface{}{errors.New("boom"), usr, session.New(usr)})
	assert.Len(t, args, 2, "users and sessions are not sent as extras")
	assert.Equal(t, "msg", args[0])
}
