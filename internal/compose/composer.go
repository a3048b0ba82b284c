// internal/compose/composer.go
package compose

import (
	"fmt"
	"strings"

	"bloodcare-alerts/internal/models"
)

// SMSMaxLength is the single-segment advisory limit. Composition does not
// truncate; callers may log when a body exceeds it.
const SMSMaxLength = 160

// EmailBody is a composed email message: subject plus HTML and plain parts.
type EmailBody struct {
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Text    string `json:"text"`
}

// Composer renders channel-specific message bodies from an alert and a
// recipient. Composition is pure and deterministic given identical inputs.
type Composer struct {
	EmergencyPhone string
	EmergencyEmail string
}

func New(emergencyPhone, emergencyEmail string) *Composer {
	return &Composer{
		EmergencyPhone: emergencyPhone,
		EmergencyEmail: emergencyEmail,
	}
}

// SMS produces a single plain-text message:
// [urgency-prefix]title (bloodGroup) in location. Hi name, <call to action>. Call: phone
func (c *Composer) SMS(alert *models.Alert, recipient *models.Recipient) string {
	var b strings.Builder

	if alert.Priority == models.PriorityHigh {
		b.WriteString("URGENT: ")
	}
	b.WriteString(alert.Title)
	if alert.BloodGroup != "" {
		fmt.Fprintf(&b, " (%s)", alert.BloodGroup)
	}
	if alert.Location != "" {
		fmt.Fprintf(&b, " in %s", alert.Location)
	}
	b.WriteString(". ")

	fmt.Fprintf(&b, "Hi %s, ", recipient.Name)

	if recipient.Kind == models.RecipientKindDonor {
		b.WriteString("Your blood donation can save lives. Please contact us if available.")
	} else {
		b.WriteString("Blood may be available for your request. Please contact us immediately.")
	}

	fmt.Fprintf(&b, " Call: %s", c.EmergencyPhone)

	return b.String()
}

// Email produces a structured body embedding the alert title, full message,
// optional blood group and location, and the fixed emergency-contact block.
func (c *Composer) Email(alert *models.Alert, recipient *models.Recipient) EmailBody {
	subject := fmt.Sprintf("🚨 %s", alert.Title)

	var html strings.Builder
	html.WriteString(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">`)
	html.WriteString(`<div style="background: #dc2626; color: white; padding: 20px; text-align: center;">`)
	html.WriteString(`<h1>🚨 BloodCare Emergency Alert</h1></div>`)
	html.WriteString(`<div style="padding: 20px; background: #f9f9f9;">`)
	fmt.Fprintf(&html, `<h2>Hi %s,</h2>`, recipient.Name)
	fmt.Fprintf(&html, `<h3>%s</h3>`, alert.Title)
	fmt.Fprintf(&html, `<p style="font-size: 16px; line-height: 1.6;">%s</p>`, alert.Message)
	if alert.BloodGroup != "" {
		fmt.Fprintf(&html, `<p><strong>Blood Group Needed:</strong> %s</p>`, alert.BloodGroup)
	}
	if alert.Location != "" {
		fmt.Fprintf(&html, `<p><strong>Location:</strong> %s</p>`, alert.Location)
	}
	html.WriteString(`<div style="margin-top: 30px; padding: 15px; background: #fee2e2; border-left: 4px solid #dc2626;">`)
	html.WriteString(`<p><strong>This is an urgent blood donation request</strong></p>`)
	html.WriteString(`<p>Please contact us immediately if you can help:</p>`)
	fmt.Fprintf(&html, `<p>Emergency Hotline: %s</p>`, c.EmergencyPhone)
	fmt.Fprintf(&html, `<p>Email: %s</p>`, c.EmergencyEmail)
	html.WriteString(`</div></div>`)
	html.WriteString(`<div style="background: #374151; color: white; padding: 15px; text-align: center;">`)
	html.WriteString(`<p>BloodCare - Saving Lives, One Donation at a Time</p></div></div>`)

	var text strings.Builder
	fmt.Fprintf(&text, "Hi %s,\n\n%s\n\n%s\n", recipient.Name, alert.Title, alert.Message)
	if alert.BloodGroup != "" {
		fmt.Fprintf(&text, "\nBlood Group Needed: %s", alert.BloodGroup)
	}
	if alert.Location != "" {
		fmt.Fprintf(&text, "\nLocation: %s", alert.Location)
	}
	fmt.Fprintf(&text, "\n\nEmergency Hotline: %s\nEmail: %s\n", c.EmergencyPhone, c.EmergencyEmail)

	return EmailBody{
		Subject: subject,
		HTML:    html.String(),
		Text:    text.String(),
	}
}
