package schema

import (
	"math"
	"strconv"
	"strings"
)

// FormatKind tags a Formatter.
type FormatKind string

const (
	FormatPlain    FormatKind = "plain"
	FormatDate     FormatKind = "date"
	FormatDateTime FormatKind = "datetime"
	FormatCurrency FormatKind = "currency"
	FormatBoolean  FormatKind = "boolean"
	FormatStatus   FormatKind = "status"
	FormatGrade    FormatKind = "grade"
	FormatRole     FormatKind = "role"
	FormatCode     FormatKind = "code"
	FormatYears    FormatKind = "years"
	FormatBadge    FormatKind = "badge"
)

// Tone is the color hint of a badge or chip.
type Tone string

const (
	ToneNone      Tone = ""
	ToneSuccess   Tone = "success"
	ToneDanger    Tone = "danger"
	ToneWarning   Tone = "warning"
	TonePrimary   Tone = "primary"
	ToneSecondary Tone = "secondary"
	ToneInfo      Tone = "info"
	ToneDark      Tone = "dark"
)

const (
	emptyText      = "-"
	currencySymbol = "₹"
	dateFormat     = "02 Jan 2006"
	dateTimeFormat = "02 Jan 2006, 03:04 pm"
)

// Cell is the display form of a value.
type Cell struct {
	Text string `json:"text"`
	Tone Tone   `json:"tone,omitempty"`
}

// Formatter turns a raw value into its display form.
// Callers only use Format; the kind is data.
type Formatter struct {
	Kind     FormatKind      `json:"kind"`
	Labels   [2]string       `json:"labels,omitempty"` // boolean: true, false
	Tones    map[string]Tone `json:"-"`                // status and grade, lower-case keys
	Fallback Tone            `json:"-"`
}

var (
	PlainText     = Formatter{Kind: FormatPlain}
	ShortDate     = Formatter{Kind: FormatDate}
	ShortDateTime = Formatter{Kind: FormatDateTime}
	Rupees        = Formatter{Kind: FormatCurrency}
	Monospace     = Formatter{Kind: FormatCode}
	Years         = Formatter{Kind: FormatYears}
	RoleBadge     = Formatter{Kind: FormatRole}

	GradeBadge = Formatter{
		Kind:     FormatGrade,
		Tones:    map[string]Tone{"a": ToneSuccess, "b": TonePrimary, "c": ToneWarning, "d": ToneDanger, "f": ToneDark},
		Fallback: ToneSecondary,
	}
	AttendanceStatus = Status(map[string]Tone{"present": ToneSuccess, "absent": ToneDanger, "leave": ToneWarning})
	FeeStatus        = Status(map[string]Tone{"paid": ToneSuccess, "unpaid": ToneDanger, "partial": ToneWarning})
	EnrolmentStatus  = Status(map[string]Tone{"active": ToneSuccess, "inactive": ToneSecondary, "completed": TonePrimary})
	ActiveStatus     = Status(map[string]Tone{"active": ToneSuccess})
)

// Boolean returns a badge formatter; labels default to Yes/No.
func Boolean(labels ...string) Formatter {
	f := Formatter{Kind: FormatBoolean, Labels: [2]string{"Yes", "No"}}
	if len(labels) == 2 {
		f.Labels = [2]string{labels[0], labels[1]}
	}
	return f
}

// Status returns a chip formatter with one tone per lower-cased value.
func Status(tones map[string]Tone) Formatter {
	return Formatter{Kind: FormatStatus, Tones: tones, Fallback: ToneSecondary}
}

// Badge returns a formatter rendering the value with a fixed tone.
func Badge(tone Tone) Formatter {
	return Formatter{Kind: FormatBadge, Fallback: tone}
}

func orEmpty(s string) string {
	if s == "" {
		return emptyText
	}
	return s
}

func (f Formatter) Format(v Value) Cell {
	switch f.Kind {
	case FormatDate:
		if t, ok := v.AsTime(); ok {
			return Cell{Text: t.Format(dateFormat)}
		}
		return Cell{Text: orEmpty(v.Text())}
	case FormatDateTime:
		if t, ok := v.AsTime(); ok {
			return Cell{Text: t.Format(dateTimeFormat)}
		}
		return Cell{Text: orEmpty(v.Text())}
	case FormatCurrency:
		if n, ok := v.AsNumber(); ok && !v.IsNull() {
			return Cell{Text: FormatRupees(n)}
		}
		return Cell{Text: orEmpty(v.Text())}
	case FormatBoolean:
		if v.Truthy() {
			return Cell{Text: f.Labels[0], Tone: ToneSuccess}
		}
		return Cell{Text: f.Labels[1], Tone: ToneSecondary}
	case FormatStatus, FormatGrade:
		tone, ok := f.Tones[strings.ToLower(v.Text())]
		if !ok {
			tone = f.Fallback
		}
		return Cell{Text: orEmpty(v.Text()), Tone: tone}
	case FormatRole:
		var tone Tone
		switch strings.ToLower(v.Text()) {
		case "admin":
			tone = ToneDanger
		case "teacher":
			tone = TonePrimary
		default:
			tone = ToneSuccess
		}
		return Cell{Text: orEmpty(strings.ToUpper(v.Text())), Tone: tone}
	case FormatYears:
		if v.IsEmpty() || v.Text() == "0" {
			return Cell{Text: "0 yrs"}
		}
		return Cell{Text: v.Text() + " yrs"}
	case FormatBadge:
		return Cell{Text: orEmpty(v.Text()), Tone: f.Fallback}
	default: // plain, code
		return Cell{Text: orEmpty(v.Text())}
	}
}

// FormatRupees formats n as Indian rupees with lakh/crore grouping, e.g. ₹1,23,456.5
func FormatRupees(n float64) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = math.Abs(n)
	}
	s := strconv.FormatFloat(n, 'f', 2, 64)
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], strings.TrimRight(s[i+1:], "0")
	}
	out := currencySymbol + sign + groupIndian(intPart)
	if frac != "" {
		out += "." + frac
	}
	return out
}

func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	return strings.Join(groups, ",") + "," + tail
}
