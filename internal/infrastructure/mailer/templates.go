package mailer

import (
	"bytes"
	"html/template"
	"net/url"
	"strings"
)

var actionTmpl = template.Must(template.New("action").Parse(`<!doctype html>
<html><body style="font-family:Arial,sans-serif;color:#1f2937">
<p>Hi {{.Name}},</p>
<p>{{.Intro}}</p>
<p><a href="{{.Link}}" style="background:#2563eb;color:#fff;padding:10px 16px;border-radius:6px;text-decoration:none">{{.Action}}</a></p>
<p style="color:#6b7280;font-size:12px">This link expires in {{.Expiry}}. If you did not request it you can ignore this email.</p>
</body></html>`))

type actionData struct {
	Name   string
	Intro  string
	Action string
	Link   string
	Expiry string
}

// VerificationEmail builds the email that carries the email-verification link.
func VerificationEmail(to, name, frontendURL, token string) Message {
	link := buildLink(frontendURL, "/verify-email", token)
	return render(to, "Verify your email address", actionData{
		Name:   displayName(name),
		Intro:  "Please confirm your email address to finish setting up your account.",
		Action: "Verify email",
		Link:   link,
		Expiry: "24 hours",
	})
}

// PasswordResetEmail builds the email that carries the password-reset link.
func PasswordResetEmail(to, name, frontendURL, token string) Message {
	link := buildLink(frontendURL, "/reset-password", token)
	return render(to, "Reset your password", actionData{
		Name:   displayName(name),
		Intro:  "We received a request to reset your password.",
		Action: "Reset password",
		Link:   link,
		Expiry: "1 hour",
	})
}

func render(to, subject string, d actionData) Message {
	var buf bytes.Buffer
	_ = actionTmpl.Execute(&buf, d)
	text := "Hi " + d.Name + ",\n\n" + d.Intro + "\n\n" + d.Action + ": " + d.Link +
		"\n\nThis link expires in " + d.Expiry + "."
	return Message{To: to, Subject: subject, Text: text, HTML: buf.String()}
}

func buildLink(base, path, token string) string {
	return strings.TrimRight(base, "/") + path + "?token=" + url.QueryEscape(token)
}

func displayName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "there"
	}
	return name
}
