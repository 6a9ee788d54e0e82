package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/vtnhan03/final-be/internal/server/models"
)

var (
	//go:embed templates/*.html
	emailTemplates embed.FS

	welcomeTemplate   = template.Must(template.New("welcome.html").ParseFS(emailTemplates, "templates/welcome.html"))
	resetCodeTemplate = template.Must(template.New("reset_code.html").ParseFS(emailTemplates, "templates/reset_code.html"))
)

// Message is a rendered email.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// WelcomeMessage renders the account-created email.
func WelcomeMessage(to, username, frontendURL string) (*Message, error) {
	var body bytes.Buffer
	data := struct {
		Username    string
		FrontendURL string
	}{Username: username, FrontendURL: frontendURL}

	if err := welcomeTemplate.Execute(&body, data); err != nil {
		return nil, fmt.Errorf("render welcome template: %w", err)
	}
	return &Message{To: to, Subject: "Welcome to ChildSafe!", HTML: body.String()}, nil
}

// ResetCodeMessage renders the password or PIN reset email carrying the
// verification code.
func ResetCodeMessage(to, code string, tokenType models.TokenType, validFor string) (*Message, error) {
	subject, title, action := "Reset Your Password - ChildSafe", "Password Reset Request", "reset your password"
	if tokenType == models.TokenTypePin {
		subject, title, action = "Reset Your PIN - ChildSafe", "PIN Reset Request", "reset your PIN"
	}

	var body bytes.Buffer
	data := struct {
		Title    string
		Action   string
		Code     string
		ValidFor string
	}{Title: title, Action: action, Code: code, ValidFor: validFor}

	if err := resetCodeTemplate.Execute(&body, data); err != nil {
		return nil, fmt.Errorf("render reset template: %w", err)
	}
	return &Message{To: to, Subject: subject, HTML: body.String()}, nil
}
