package engine

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityDanger  Severity = "danger"
)

// DismissAfterMS is how long a notification stays on screen.
const DismissAfterMS = 3000

type Notification struct {
	Message        string   `json:"message"`
	Severity       Severity `json:"severity"`
	DismissAfterMS int      `json:"dismiss_after_ms"`
}

func Success(msg string) Notification {
	return Notification{Message: msg, Severity: SeveritySuccess, DismissAfterMS: DismissAfterMS}
}

func Danger(msg string) Notification {
	return Notification{Message: msg, Severity: SeverityDanger, DismissAfterMS: DismissAfterMS}
}

// Notify turns the outcome of an action into the notification shown for it.
func Notify(n Notification, err error) Notification {
	if err != nil {
		return Danger(err.Error())
	}
	return n
}
