package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/sunrise/core/schema"
	"github.com/trezcool/sunrise/core/session"
	"github.com/trezcool/sunrise/core/user"
)

func TestCheck(t *testing.T) {
	teacher := session.New(user.User{ID: 2, Username: "teach", Role: user.RoleTeacher})

	tests := []struct {
		name     string
		sess     *session.Session
		required user.Role
		want     Decision
		redirect string
	}{
		{name: "no session", sess: nil, required: user.RoleAdmin, want: RedirectLogin, redirect: "/login"},
		{name: "unresolved", sess: session.Pending(), required: user.RoleAdmin, want: Pending},
		{name: "resolved without role", sess: &session.Session{Resolved: true}, required: user.RoleAdmin, want: RedirectLogin, redirect: "/login"},
		{name: "teacher on admin", sess: teacher, required: user.RoleAdmin, want: RedirectHome, redirect: "/"},
		{name: "teacher on student", sess: teacher, required: user.RoleStudent, want: RedirectHome, redirect: "/"},
		{name: "teacher on teacher", sess: teacher, required: user.RoleTeacher, want: Allow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Check(tt.sess, tt.required)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.redirect, got.Redirect())
		})
	}
}

func TestEnabledTables(t *testing.T) {
	assert.Len(t, EnabledTables(user.RoleAdmin), 23)
	assert.Len(t, EnabledTables(user.RoleTeacher), 9)
	assert.Len(t, EnabledTables(user.RoleStudent), 8)
	assert.Empty(t, EnabledTables("guest"))

	for _, role := range user.AllRoles {
		for _, table := range EnabledTables(role) {
			assert.True(t, schema.Default.Known(table), "%s: unknown table %s", role, table)
		}
	}

	assert.True(t, TableEnabled(user.RoleTeacher, schema.TableAttendance))
	assert.False(t, TableEnabled(user.RoleTeacher, schema.TableUsers))
	assert.True(t, TableEnabled(user.RoleStudent, schema.TableFees))

	tables := EnabledTables(user.RoleStudent)
	tables[0] = "mutated"
	assert.Equal(t, schema.TableProfiles, EnabledTables(user.RoleStudent)[0])
}

func TestFeatures(t *testing.T) {
	assert.True(t, HasFeature(user.RoleAdmin, AttendanceScan))
	assert.False(t, HasFeature(user.RoleTeacher, AttendanceScan))
	assert.False(t, HasFeature(user.RoleTeacher, ReportFees))
	assert.True(t, HasFeature(user.RoleTeacher, CertificateTC))
	assert.Equal(t, []Feature{ReportAttendance, ReportResult}, Features(user.RoleStudent))

	assert.Equal(t, "/admin/dashboard", Landing(user.RoleAdmin))
	assert.Equal(t, "/teacher", Landing(user.RoleTeacher))
	assert.Equal(t, "/student", Landing(user.RoleStudent))
	assert.Equal(t, "/", Landing(""))
}
