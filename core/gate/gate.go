// Package gate decides who may enter each role area and what they find there.
package gate

import (
	"github.com/trezcool/sunrise/core/schema"
	"github.com/trezcool/sunrise/core/session"
	"github.com/trezcool/sunrise/core/user"
)

type Decision int

const (
	Allow Decision = iota
	// Pending means the session is not resolved yet; show a loading state.
	Pending
	RedirectLogin
	RedirectHome
)

const (
	LoginRoute = "/login"
	HomeRoute  = "/"
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Pending:
		return "pending"
	case RedirectLogin:
		return "redirect_login"
	default:
		return "redirect_home"
	}
}

// Redirect returns the route to send the visitor to, if any.
func (d Decision) Redirect() string {
	switch d {
	case RedirectLogin:
		return LoginRoute
	case RedirectHome:
		return HomeRoute
	default:
		return ""
	}
}

// Check only allows a session whose role is exactly required.
func Check(sess *session.Session, required user.Role) Decision {
	switch {
	case sess == nil:
		return RedirectLogin
	case !sess.Resolved:
		return Pending
	case sess.Role == "":
		return RedirectLogin
	case sess.Role != required:
		return RedirectHome
	default:
		return Allow
	}
}

var enabledTables = map[user.Role][]string{
	user.RoleAdmin: schema.Default.Tables(),
	user.RoleTeacher: {
		schema.TableStudents,
		schema.TableSubjects,
		schema.TableClasses,
		schema.TableClassSchedules,
		schema.TableAttendance,
		schema.TableExamSubjectMarks,
		schema.TableCoScholasticGrades,
		schema.TableLibraryBooks,
		schema.TableStudentSubjects,
	},
	user.RoleStudent: {
		schema.TableProfiles,
		schema.TableStudents,
		schema.TableSubjects,
		schema.TableAttendance,
		schema.TableExamSubjectMarks,
		schema.TableFees,
		schema.TableStudentFeeRecords,
		schema.TableLibraryBooks,
	},
}

// EnabledTables returns the tables a role may browse, in menu order.
func EnabledTables(role user.Role) []string {
	return append([]string(nil), enabledTables[role]...)
}

// TableEnabled reports whether role may browse table.
func TableEnabled(role user.Role, table string) bool {
	for _, t := range enabledTables[role] {
		if t == table {
			return true
		}
	}
	return false
}

type Feature string

const (
	CertificateTC     Feature = "certificates.tc"
	CertificateIDCard Feature = "certificates.idcard"
	CertificateResult Feature = "certificates.result"
	ReportAttendance  Feature = "reports.attendance"
	ReportResult      Feature = "reports.result"
	ReportFees        Feature = "reports.fees"
	ReportHistory     Feature = "reports.history"
	AttendanceScan    Feature = "attendance.scan"
)

var features = map[user.Role][]Feature{
	user.RoleAdmin: {
		CertificateTC, CertificateIDCard, CertificateResult,
		ReportAttendance, ReportResult, ReportFees, ReportHistory,
		AttendanceScan,
	},
	user.RoleTeacher: {
		CertificateTC, CertificateIDCard, CertificateResult,
		ReportAttendance, ReportResult,
	},
	user.RoleStudent: {ReportAttendance, ReportResult},
}

func Features(role user.Role) []Feature {
	return append([]Feature(nil), features[role]...)
}

func HasFeature(role user.Role, f Feature) bool {
	for _, rf := range features[role] {
		if rf == f {
			return true
		}
	}
	return false
}

var landings = map[user.Role]string{
	user.RoleAdmin:   "/admin/dashboard",
	user.RoleTeacher: "/teacher",
	user.RoleStudent: "/student",
}

// Landing is the route a role lands on after login.
func Landing(role user.Role) string {
	if l, ok := landings[role]; ok {
		return l
	}
	return HomeRoute
}
