package service

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"

	mail "github.com/go-mail/mail/v2"
	"github.com/lshigami/Hireflow/config"
)

// Template identifiers used by the step handlers.
const (
	TemplateAssessmentInvite = "assessment-invite"
	TemplateAssignmentInvite = "assignment-invite"
	TemplateInterviewInvite  = "interview-invite"
	TemplateStageUpdate      = "stage-update"
)

// TemplatedMailer delivers one templated message to one recipient.
type TemplatedMailer interface {
	SendTemplated(templateID, recipient string, vars map[string]string) error
}

type mailTemplate struct {
	subject string
	body    *template.Template
}

type smtpMailer struct {
	dialer    *mail.Dialer
	from      string
	templates map[string]mailTemplate
}

func NewSmtpMailer(cfg *config.Config) TemplatedMailer {
	d := mail.NewDialer(cfg.Smtp.Host, cfg.Smtp.Port, cfg.Smtp.User, cfg.Smtp.Password)
	d.StartTLSPolicy = mail.MandatoryStartTLS
	d.TLSConfig = &tls.Config{ServerName: cfg.Smtp.Host}

	return &smtpMailer{
		dialer:    d,
		from:      cfg.Smtp.From,
		templates: defaultTemplates(),
	}
}

func (m *smtpMailer) SendTemplated(templateID, recipient string, vars map[string]string) error {
	tpl, ok := m.templates[templateID]
	if !ok {
		return fmt.Errorf("unknown mail template %q", templateID)
	}
	var body bytes.Buffer
	if err := tpl.body.Execute(&body, vars); err != nil {
		return fmt.Errorf("failed to render template %q: %w", templateID, err)
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", recipient)
	msg.SetHeader("Subject", tpl.subject)
	msg.SetBody("text/html", body.String())

	return m.dialer.DialAndSend(msg)
}

func defaultTemplates() map[string]mailTemplate {
	build := func(subject, body string) mailTemplate {
		return mailTemplate{subject: subject, body: template.Must(template.New(subject).Parse(body))}
	}
	return map[string]mailTemplate{
		TemplateAssessmentInvite: build(
			"Your assessment is ready",
			`<p>Hi {{.CandidateName}},</p>
<p>The <b>{{.StageName}}</b> stage of <b>{{.PipelineTitle}}</b> has started.
Take your assessment here: <a href="{{.Link}}">{{.Link}}</a></p>`,
		),
		TemplateAssignmentInvite: build(
			"New assignment",
			`<p>Hi {{.CandidateName}},</p>
<p><b>{{.PipelineTitle}}</b> has moved to the <b>{{.StageName}}</b> stage.
Submit your assignment here: <a href="{{.Link}}">{{.Link}}</a></p>`,
		),
		TemplateInterviewInvite: build(
			"Interview scheduled",
			`<p>Hi {{.CandidateName}},</p>
<p>You have been invited to an interview for <b>{{.PipelineTitle}}</b>.
Join here: <a href="{{.Link}}">{{.Link}}</a></p>`,
		),
		TemplateStageUpdate: build(
			"Application update",
			`<p>Hi {{.CandidateName}},</p>
<p>Your application for <b>{{.PipelineTitle}}</b> has moved to the
<b>{{.StageName}}</b> stage. Track it here: <a href="{{.Link}}">{{.Link}}</a></p>`,
		),
	}
}
