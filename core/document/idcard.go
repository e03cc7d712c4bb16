package document

import (
	"bytes"
	"context"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"
	"github.com/skip2/go-qrcode"

	"github.com/trezcool/sunrise/core/attendance"
	"github.com/trezcool/sunrise/core/schema"
)

const qrSize = 256

// qrImage registers a PNG QR code of text on p under name.
func (p *page) qrImage(name, text string) error {
	png, err := qrcode.Encode(text, qrcode.Medium, qrSize)
	if err != nil {
		return errors.Wrap(err, "encoding qr code")
	}
	p.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(png))
	return p.Error()
}

// AttendancePayload is what the ID card QR of stu encodes.
func (svc *Service) AttendancePayload(stu schema.Row) attendance.Payload {
	return attendance.Payload{
		Type:      attendance.PayloadType,
		StudentID: stu.Text("student_id"),
		Name:      stu.Text("name"),
		Class:     stu.Text("class_name"),
		Session:   svc.school.Session,
	}
}

// IDCard renders the ID card of a student, its QR code marking attendance when scanned.
func (svc *Service) IDCard(ctx context.Context, studentID string) (Document, error) {
	stu, err := svc.student(ctx, studentID)
	if err != nil {
		return Document{}, err
	}
	qrText, err := attendance.Encode(svc.AttendancePayload(stu))
	if err != nil {
		return Document{}, err
	}

	p := newPage()
	// card outline, CR80 proportions
	x, y, w, h := 55.0, 30.0, 100.0, 150.0
	p.SetDrawColor(0, 74, 173)
	p.SetLineWidth(0.5)
	p.Rect(x, y, w, h, "D")
	p.SetFillColor(0, 74, 173)
	p.Rect(x, y, w, 28, "F")

	p.SetTextColor(255, 255, 255)
	p.font("B", 13)
	p.SetXY(x, y+4)
	p.CellFormat(w, 6, p.t(orDefault(svc.school.Name, "School Name")), "", 2, "C", false, 0, "")
	p.font("", 7)
	p.CellFormat(w, 4, p.t(svc.school.Address), "", 2, "C", false, 0, "")
	p.CellFormat(w, 4, p.t(svc.school.Tagline), "", 2, "C", false, 0, "")
	p.CellFormat(w, 4, p.t("Session "+svc.school.Session), "", 2, "C", false, 0, "")

	p.SetTextColor(0, 0, 0)
	p.font("B", 12)
	p.SetXY(x, y+34)
	p.CellFormat(w, 7, p.t(stu.Text("name")), "", 2, "C", false, 0, "")

	details := [][2]string{
		{"Student ID", stu.Text("student_id")},
		{"Class", stu.Text("class_name")},
		{"Roll No.", stu.Text("roll_number")},
		{"DOB", dateText(stu.Get("dob"))},
		{"Father", stu.Text("father_name")},
		{"Phone", stu.Text("phone_number")},
		{"Village", stu.Text("village")},
	}
	p.font("", 9)
	for _, d := range details {
		p.SetX(x + 8)
		p.font("B", 9)
		p.CellFormat(26, 6, p.t(d[0]+":"), "", 0, "L", false, 0, "")
		p.font("", 9)
		p.CellFormat(w-34, 6, p.t(orDefault(d[1], "-")), "", 1, "L", false, 0, "")
	}

	if err = p.qrImage("attendance-qr", qrText); err != nil {
		return Document{}, err
	}
	p.ImageOptions("attendance-qr", x+w/2-17, y+h-44, 34, 34, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	p.font("I", 7)
	p.SetXY(x, y+h-9)
	p.CellFormat(w, 4, p.t("Scan to mark attendance"), "", 0, "C", false, 0, "")

	return p.render(FileName("ID", stu.Text("name"), "student"))
}
