package core

import (
	"net/mail"
	"strings"
	"testing"
)

type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...interface{}) {}
func (nopLogger) Info(msg string, args ...interface{})  {}
func (nopLogger) Warn(msg string, args ...interface{})  {}
func (nopLogger) Error(msg string, args ...interface{}) {}
func (nopLogger) Fatal(msg string, args ...interface{}) {}

func TestParseEmailTemplates(t *testing.T) {
	conf := &Config{
		TestMode:        true,
		AppName:         "AulaLink",
		FrontendBaseURL: "https://app.aulalink.test",
	}
	ParseEmailTemplates(conf, nopLogger{})

	// the base templates start with "_" and must still be embedded for
	// any named template to parse at all
	for _, name := range []string{"student-invitation", "password-reset"} {
		entry, ok := templates[name]
		if !ok {
			t.Errorf("template %q not parsed", name)
			continue
		}
		for _, ext := range []string{".txt", ".gohtml"} {
			if _, ok := entry[ext]; !ok {
				t.Errorf("template %q missing %s variant", name, ext)
			}
		}
	}
	if _, ok := templates["_base"]; ok {
		t.Error("base templates should not be registered under their own name")
	}
}

func TestEmailMessageRender(t *testing.T) {
	conf := &Config{
		TestMode:        true,
		AppName:         "AulaLink",
		FrontendBaseURL: "https://app.aulalink.test",
	}
	ParseEmailTemplates(conf, nopLogger{})

	wantURL := "https://app.aulalink.test/auth?invitation=deadbeef"
	msg := &EmailMessage{
		To:           []mail.Address{{Name: "Ana Ruiz", Address: "ana.ruiz@test.cd"}},
		Subject:      "Invitación para unirte a la clase de Prof Mutombo",
		TemplateName: "student-invitation",
		TemplateData: struct {
			StudentName     string
			TeacherName     string
			RegistrationURL string
		}{"Ana Ruiz", "Prof Mutombo", wantURL},
	}
	if err := msg.Render(); err != nil {
		t.Fatalf("Render() failed: %v", err)
	}
	if !msg.HasContent() {
		t.Fatal("Render() produced no content")
	}
	for variant, content := range map[string]string{"text": msg.TextContent, "html": msg.HTMLContent} {
		if content == "" {
			t.Errorf("%s content is empty", variant)
			continue
		}
		for _, want := range []string{wantURL, "Prof Mutombo", "AulaLink"} {
			if !strings.Contains(content, want) {
				t.Errorf("%s content missing %q", variant, want)
			}
		}
	}
}
