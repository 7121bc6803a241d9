package mail

import "strings"

// TemplateID names a transactional email template.
type TemplateID string

const (
	TemplateConfirmEmail  TemplateID = "confirm_email"
	TemplatePasswordReset TemplateID = "password_reset"
	TemplatePaymentFailed TemplateID = "payment_failed"
)

type localizedTemplate struct {
	Subject string
	Body    string
}

// Templates are plain HTML with {{placeholder}} markers; locales fall back
// to English when a translation is missing.
var templates = map[TemplateID]map[string]localizedTemplate{
	TemplateConfirmEmail: {
		"en": {
			Subject: "Confirm your TableScout account",
			Body: "<p>Hi {{name}},</p>" +
				"<p>Welcome to TableScout! Please confirm your email address by clicking the link below:</p>" +
				"<p><a href=\"{{link}}\">Confirm my account</a></p>" +
				"<p>The link is valid for 24 hours.</p>",
		},
		"de": {
			Subject: "Bestätige dein TableScout-Konto",
			Body: "<p>Hallo {{name}},</p>" +
				"<p>Willkommen bei TableScout! Bitte bestätige deine E-Mail-Adresse über den folgenden Link:</p>" +
				"<p><a href=\"{{link}}\">Konto bestätigen</a></p>" +
				"<p>Der Link ist 24 Stunden gültig.</p>",
		},
	},
	TemplatePasswordReset: {
		"en": {
			Subject: "Reset your TableScout password",
			Body: "<p>Hi {{name}},</p>" +
				"<p>Someone requested a password reset for your account. If this was you, use the link below:</p>" +
				"<p><a href=\"{{link}}\">Reset my password</a></p>" +
				"<p>The link is valid for 2 hours. If you did not request this, you can ignore this email.</p>",
		},
		"de": {
			Subject: "TableScout-Passwort zurücksetzen",
			Body: "<p>Hallo {{name}},</p>" +
				"<p>Für dein Konto wurde ein Passwort-Reset angefordert. Falls du das warst, nutze den folgenden Link:</p>" +
				"<p><a href=\"{{link}}\">Passwort zurücksetzen</a></p>" +
				"<p>Der Link ist 2 Stunden gültig. Falls du das nicht warst, kannst du diese E-Mail ignorieren.</p>",
		},
	},
	TemplatePaymentFailed: {
		"en": {
			Subject: "Your TableScout payment failed",
			Body: "<p>Hi {{name}},</p>" +
				"<p>We could not collect the latest payment for your TableScout Premium subscription. " +
				"Please update your payment method to keep your premium access.</p>",
		},
		"de": {
			Subject: "Deine TableScout-Zahlung ist fehlgeschlagen",
			Body: "<p>Hallo {{name}},</p>" +
				"<p>Die letzte Zahlung für dein TableScout-Premium-Abo konnte nicht eingezogen werden. " +
				"Bitte aktualisiere deine Zahlungsmethode, um deinen Premium-Zugang zu behalten.</p>",
		},
	},
}

// Render resolves the template for the given locale (en fallback) and
// substitutes {{key}} placeholders. {{name}} comes from data like any other
// key.
func Render(id TemplateID, locale string, data map[string]string) (subject, body string) {
	byLocale, ok := templates[id]
	if !ok {
		return "", ""
	}
	loc := strings.ToLower(strings.TrimSpace(locale))
	tpl, ok := byLocale[loc]
	if !ok {
		tpl = byLocale["en"]
	}
	subject = tpl.Subject
	body = tpl.Body
	for key, value := range data {
		subject = strings.ReplaceAll(subject, "{{"+key+"}}", value)
		body = strings.ReplaceAll(body, "{{"+key+"}}", value)
	}
	return subject, body
}
