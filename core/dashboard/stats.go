// Package dashboard computes the admin landing page counters.
package dashboard

import (
	"context"
	"strings"

	"github.com/trezcool/sunrise/core/schema"
	"github.com/trezcool/sunrise/core/store"
)

type Counts struct {
	Students     int `json:"students"`
	Teachers     int `json:"teachers"`
	Subjects     int `json:"subjects"`
	PresentToday int `json:"present_today"`
}

// Stats loads every table in one call, so one failing table fails the whole call.
// today is YYYY-MM-DD.
func Stats(ctx context.Context, st store.Store, today string) (Counts, error) {
	data, err := st.FetchAll(ctx, []string{
		schema.TableStudents, schema.TableTeachers, schema.TableSubjects, schema.TableAttendance,
	})
	if err != nil {
		return Counts{}, err
	}

	c := Counts{
		Students: len(data[schema.TableStudents]),
		Teachers: len(data[schema.TableTeachers]),
		Subjects: len(data[schema.TableSubjects]),
	}
	for _, r := range data[schema.TableAttendance] {
		day := r.Text("attendance_date")
		if len(day) > len(today) {
			day = day[:len(today)]
		}
		if day == today && strings.EqualFold(r.Text("status"), "present") {
			c.PresentToday++
		}
	}
	return c, nil
}
