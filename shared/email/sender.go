package email

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"net/smtp"

	"video-recommender/internal/models"
	"video-recommender/shared/config"
)

//go:embed digest_template.html
var digestTemplate string

var tmpl = template.Must(template.New("digest").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
	"score": func(f float64) string {
		return fmt.Sprintf("%.1f", f)
	},
	"sentiment": func(f float64) string {
		return fmt.Sprintf("%+.2f", f)
	},
}).Parse(digestTemplate))

// sendFunc matches smtp.SendMail.
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type Sender struct {
	config *config.EmailConfig
	send   sendFunc
}

func NewSender(cfg *config.EmailConfig) *Sender {
	return &Sender{
		config: cfg,
		send:   smtp.SendMail,
	}
}

// SendDigest emails the top videos by engagement. An empty report is not sent.
func (s *Sender) SendDigest(report *models.DigestReport) error {
	if report == nil {
		return fmt.Errorf("report cannot be nil")
	}
	if len(report.Videos) == 0 {
		return nil
	}

	subject := fmt.Sprintf("Video Engagement Digest - Top %d of %d Videos (%s)",
		len(report.Videos), report.Total, report.Date.Format("Jan 2, 2006"))

	body, err := renderDigest(report)
	if err != nil {
		return fmt.Errorf("failed to generate email body: %w", err)
	}

	return s.SendHTML(subject, body)
}

// SendHTML sends an email with custom HTML content.
func (s *Sender) SendHTML(subject, htmlBody string) error {
	var auth smtp.Auth
	if s.config.Username != "" {
		auth = smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.SMTPServer)
	}

	msg := []byte(fmt.Sprintf(`To: %s
From: %s
Subject: %s
MIME-Version: 1.0
Content-Type: text/html; charset=UTF-8

%s`, s.config.ToEmail, s.config.FromEmail, subject, htmlBody))

	addr := fmt.Sprintf("%s:%d", s.config.SMTPServer, s.config.SMTPPort)
	return s.send(addr, auth, s.config.FromEmail, []string{s.config.ToEmail}, msg)
}

func renderDigest(report *models.DigestReport) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, report); err != nil {
		return "", err
	}
	return buf.String(), nil
}
