// Package attendance records attendance from the QR codes printed on ID cards.
package attendance

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// PayloadType marks a QR code as an attendance code.
const PayloadType = "student_attendance"

type Payload struct {
	Type      string `json:"type"`
	StudentID string `json:"student_id"`
	Name      string `json:"name"`
	Class     string `json:"class"`
	Session   string `json:"session"`
}

// Label is how a scanned student is shown for confirmation, e.g. "Asha (S1)".
func (p Payload) Label() string {
	return p.Name + " (" + p.StudentID + ")"
}

// DecodeError means the scanned text is not an attendance code.
type DecodeError struct {
	Message string
}

func (err DecodeError) Error() string { return err.Message }

func decodeErr(msg string) error {
	return &DecodeError{Message: msg}
}

// Decode parses scanned text. Nothing is written.
func Decode(text string) (Payload, error) {
	var p Payload
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &p); err != nil {
		return Payload{}, decodeErr("Invalid QR code: not an attendance code")
	}
	if p.Type != PayloadType {
		return Payload{}, decodeErr("Invalid QR code: wrong type")
	}
	p.StudentID = strings.TrimSpace(p.StudentID)
	if p.StudentID == "" {
		return Payload{}, decodeErr("Invalid QR code: missing student_id")
	}
	return p, nil
}

// Encode builds the text printed in an ID card QR code.
func Encode(p Payload) (string, error) {
	p.Type = PayloadType
	b, err := json.Marshal(p)
	if err != nil {
		return "", errors.Wrap(err, "encoding attendance payload")
	}
	return string(b), nil
}
