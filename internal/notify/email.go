// Package notify sends the registration confirmation email.  Sending is
// best-effort: a mail failure is logged by the caller and never fails the
// registration that triggered it.
package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"os"

	"github.com/brajcamp/camp-registration/internal/model"
)

// Mailer delivers confirmation emails over SMTP submission (gmail-style:
// user + app password on port 587).  When no credentials are configured the
// mailer is disabled and Send returns immediately.
type Mailer struct {
	host string
	port string
	user string
	pass string
}

// NewMailer builds a Mailer from EMAIL_USER / EMAIL_PASSWORD and optional
// SMTP_HOST / SMTP_PORT overrides.
func NewMailer() *Mailer {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		host = "smtp.gmail.com"
	}
	port := os.Getenv("SMTP_PORT")
	if port == "" {
		port = "587"
	}
	return &Mailer{
		host: host,
		port: port,
		user: os.Getenv("EMAIL_USER"),
		pass: os.Getenv("EMAIL_PASSWORD"),
	}
}

// Enabled reports whether credentials are configured.
func (m *Mailer) Enabled() bool { return m.user != "" && m.pass != "" }

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
	<div style="background: #059669; color: white; padding: 30px; text-align: center;">
	  <h1>Registration Confirmed!</h1>
	  <h2>Kartik Braj Camp 2025</h2>
	</div>
	<div style="background: #f9f9f9; padding: 30px;">
	  <p>Dear <strong>{{.Name}}</strong>,</p>
	  <p>Hare Krishna!</p>
	  <p>Your registration for the Kartik Braj Camp 2025 has been <strong>successfully confirmed</strong>.</p>
	  <div style="background: #059669; color: white; padding: 15px; text-align: center;">
		<h3>Payment Successful</h3>
		<p><strong>Payment ID:</strong> {{.PaymentID}}</p>
		<p><strong>Amount Paid:</strong> &#8377;{{.Amount}}</p>
	  </div>
	  <div style="background: white; padding: 20px; margin: 20px 0;">
		<h3 style="color: #059669;">Registration Details</h3>
		<p><strong>Name:</strong> {{.Name}}</p>
		<p><strong>Facilitator:</strong> {{.Facilitator}}</p>
		<p><strong>Area:</strong> {{.Area}}</p>
		<p><strong>Level:</strong> {{.Level}}</p>
		<p><strong>Accommodation:</strong> {{.AccommodationLabel}}</p>
	  </div>
	</div>
  </div>
</body>
</html>`))

type confirmationData struct {
	Name               string
	PaymentID          string
	Amount             int64
	Facilitator        string
	Area               string
	Level              string
	AccommodationLabel string
}

// SendConfirmation renders and sends the confirmation mail for one
// registration record.
func (m *Mailer) SendConfirmation(rec *model.RegistrationRecord) error {
	if !m.Enabled() {
		return nil
	}

	label := "Dormitory"
	if rec.Devotee.Accommodation == model.AccommodationRoom {
		label = "Room"
	}
	var body bytes.Buffer
	if err := confirmationTmpl.Execute(&body, confirmationData{
		Name:               rec.Devotee.Name,
		PaymentID:          rec.Payment.PaymentID,
		Amount:             rec.Payment.Amount,
		Facilitator:        rec.Devotee.Facilitator,
		Area:               rec.Devotee.Area,
		Level:              rec.Devotee.Level,
		AccommodationLabel: label,
	}); err != nil {
		return fmt.Errorf("render confirmation: %w", err)
	}

	msg := bytes.Buffer{}
	fmt.Fprintf(&msg, "From: %s\r\n", m.user)
	fmt.Fprintf(&msg, "To: %s\r\n", rec.Devotee.Email)
	fmt.Fprintf(&msg, "Subject: Registration Confirmed - Kartik Braj Camp 2025\r\n")
	fmt.Fprintf(&msg, "MIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n")
	msg.Write(body.Bytes())

	auth := smtp.PlainAuth("", m.user, m.pass, m.host)
	addr := m.host + ":" + m.port
	return smtp.SendMail(addr, auth, m.user, []string{rec.Devotee.Email}, msg.Bytes())
}
