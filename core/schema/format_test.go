package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatRupees(t *testing.T) {
	tests := []struct {
		n    float64
		want string
	}{
		{n: 0, want: "₹0"},
		{n: 999, want: "₹999"},
		{n: 1000, want: "₹1,000"},
		{n: 123456, want: "₹1,23,456"},
		{n: 12345678, want: "₹1,23,45,678"},
		{n: 1500.5, want: "₹1,500.5"},
		{n: 99.25, want: "₹99.25"},
		{n: -2500, want: "₹-2,500"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatRupees(tt.n); got != tt.want {
				t.Errorf("FormatRupees(%v) = %q; want %q", tt.n, got, tt.want)
			}
		})
	}
}

func TestFormatter_Format(t *testing.T) {
	day := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	stamp := time.Date(2024, time.March, 5, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		f    Formatter
		v    Value
		want Cell
	}{
		{name: "plain null", f: PlainText, v: Null(), want: Cell{Text: "-"}},
		{name: "plain empty", f: PlainText, v: String(""), want: Cell{Text: "-"}},
		{name: "plain number", f: PlainText, v: Number(42), want: Cell{Text: "42"}},
		{name: "date value", f: ShortDate, v: Date(day), want: Cell{Text: "05 Mar 2024"}},
		{name: "date string", f: ShortDate, v: String("2024-03-05"), want: Cell{Text: "05 Mar 2024"}},
		{name: "date garbage", f: ShortDate, v: String("soon"), want: Cell{Text: "soon"}},
		{name: "date null", f: ShortDate, v: Null(), want: Cell{Text: "-"}},
		{name: "datetime", f: ShortDateTime, v: Date(stamp), want: Cell{Text: "05 Mar 2024, 02:30 pm"}},
		{name: "currency", f: Rupees, v: Number(250000), want: Cell{Text: "₹2,50,000"}},
		{name: "currency string", f: Rupees, v: String("1200.50"), want: Cell{Text: "₹1,200.5"}},
		{name: "currency null", f: Rupees, v: Null(), want: Cell{Text: "-"}},
		{name: "boolean true", f: Boolean("Enabled", "No"), v: Bool(true), want: Cell{Text: "Enabled", Tone: ToneSuccess}},
		{name: "boolean false", f: Boolean("Enabled", "No"), v: Bool(false), want: Cell{Text: "No", Tone: ToneSecondary}},
		{name: "boolean default labels", f: Boolean(), v: Null(), want: Cell{Text: "No", Tone: ToneSecondary}},
		{name: "status known", f: AttendanceStatus, v: String("Present"), want: Cell{Text: "Present", Tone: ToneSuccess}},
		{name: "status unknown", f: AttendanceStatus, v: String("holiday"), want: Cell{Text: "holiday", Tone: ToneSecondary}},
		{name: "fee status", f: FeeStatus, v: String("unpaid"), want: Cell{Text: "unpaid", Tone: ToneDanger}},
		{name: "grade", f: GradeBadge, v: String("A"), want: Cell{Text: "A", Tone: ToneSuccess}},
		{name: "grade unknown", f: GradeBadge, v: String("A+"), want: Cell{Text: "A+", Tone: ToneSecondary}},
		{name: "role admin", f: RoleBadge, v: String("admin"), want: Cell{Text: "ADMIN", Tone: ToneDanger}},
		{name: "role student", f: RoleBadge, v: String("student"), want: Cell{Text: "STUDENT", Tone: ToneSuccess}},
		{name: "years", f: Years, v: Number(7), want: Cell{Text: "7 yrs"}},
		{name: "years null", f: Years, v: Null(), want: Cell{Text: "0 yrs"}},
		{name: "badge", f: Badge(ToneInfo), v: String("10-A"), want: Cell{Text: "10-A", Tone: ToneInfo}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.f.Format(tt.v))
		})
	}
}
