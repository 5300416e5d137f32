// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mailer delivers the digest over SMTP. Mail is optional: with an
// incomplete configuration every send is a logged no-op, so the pipeline
// still produces its report file on machines without credentials.
package mailer

import (
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"io"
	"mime/quotedprintable"
	"net/smtp"
	"strings"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/pdiddy/arxiv-digest/pkg/types"
)

// session is the part of *smtp.Client the mailer drives. Tests substitute
// a fake; production dials TLS on port 465 (implicit TLS, the mode
// Feishu and most Chinese corporate SMTP servers require).
type session interface {
	Auth(a smtp.Auth) error
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Reset() error
	Quit() error
}

// Mailer sends digest mail to the configured recipients.
type Mailer struct {
	cfg  types.MailConfig
	loc  *time.Location
	dial func() (session, error)
}

// New returns a Mailer for cfg.
func New(cfg types.MailConfig) *Mailer {
	loc, err := time.LoadLocation("Asia/Shanghai")
	if err != nil {
		loc = time.FixedZone("CST", 8*3600)
	}
	m := &Mailer{cfg: cfg, loc: loc}
	m.dial = m.dialTLS
	return m
}

// Configured reports whether enough settings exist to send mail.
func (m *Mailer) Configured() bool {
	return m.cfg.SMTPServer != "" && m.cfg.Sender != "" &&
		m.cfg.Password != "" && len(m.recipients()) > 0
}

// recipients splits the comma-separated receiver list.
func (m *Mailer) recipients() []string {
	var out []string
	for _, r := range strings.Split(m.cfg.Receivers, ",") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}

// SendReport renders the report Markdown to HTML and mails it. With
// incomplete mail config it returns nil without sending. Per-recipient
// failures are collected so one bad address does not stop the rest.
func (m *Mailer) SendReport(markdownText string, w io.Writer) error {
	if !m.Configured() {
		fmt.Fprintln(w, "mail config incomplete, skipping send")
		return nil
	}

	date := time.Now().In(m.loc).Format("2006-01-02")
	subject := fmt.Sprintf("Arxiv LLM Daily 研报 - %s", date)
	body := fmt.Sprintf("<html><body style='font-family: Arial, sans-serif;'>%s</body></html>",
		renderHTML(markdownText))

	return m.send(subject, body, w)
}

// SendNoPapers mails the short "nothing new today" notice.
func (m *Mailer) SendNoPapers(w io.Writer) error {
	if !m.Configured() {
		fmt.Fprintln(w, "mail config incomplete, skipping send")
		return nil
	}

	date := time.Now().In(m.loc).Format("2006-01-02")
	subject := fmt.Sprintf("Arxiv LLM Daily - %s (无新论文)", date)
	body := fmt.Sprintf(`<html>
<body style='font-family: Arial, sans-serif; padding: 20px; text-align: center;'>
  <h2 style='color: #666;'>今天没有新的论文，休息一下吧 😊</h2>
  <p style='color: #999; font-size: 14px;'>Arxiv LLM Daily - %s</p>
</body>
</html>`, date)

	return m.send(subject, body, w)
}

// send delivers one HTML message to every recipient over a single
// connection, addressing each copy to that recipient alone.
func (m *Mailer) send(subject, htmlBody string, w io.Writer) error {
	client, err := m.dial()
	if err != nil {
		return fmt.Errorf("connecting to SMTP server: %w", err)
	}
	defer client.Quit()

	auth := smtp.PlainAuth("", m.cfg.Sender, m.cfg.Password, m.cfg.SMTPServer)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP auth: %w", err)
	}

	var failed []string
	for _, rcpt := range m.recipients() {
		if err := m.sendOne(client, rcpt, subject, htmlBody); err != nil {
			fmt.Fprintf(w, "sending to %s failed: %v\n", rcpt, err)
			failed = append(failed, rcpt)
			client.Reset()
			continue
		}
		fmt.Fprintf(w, "mail sent to %s\n", rcpt)
	}

	if len(failed) == len(m.recipients()) {
		return fmt.Errorf("all %d recipients failed", len(failed))
	}
	return nil
}

func (m *Mailer) sendOne(client session, rcpt, subject, htmlBody string) error {
	if err := client.Mail(m.cfg.Sender); err != nil {
		return err
	}
	if err := client.Rcpt(rcpt); err != nil {
		return err
	}
	wc, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := wc.Write(buildMessage(m.cfg.Sender, rcpt, subject, htmlBody)); err != nil {
		wc.Close()
		return err
	}
	return wc.Close()
}

// buildMessage assembles a MIME message with a UTF-8 subject and a
// quoted-printable HTML body.
func buildMessage(from, to, subject, htmlBody string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: =?UTF-8?B?%s?=\r\n", base64.StdEncoding.EncodeToString([]byte(subject)))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("Content-Transfer-Encoding: quoted-printable\r\n")
	b.WriteString("\r\n")

	qp := quotedprintable.NewWriter(&b)
	qp.Write([]byte(htmlBody))
	qp.Close()

	return []byte(b.String())
}

// renderHTML converts the report Markdown to HTML.
func renderHTML(md string) string {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(md))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return string(markdown.Render(doc, renderer))
}

// dialTLS opens an implicit-TLS SMTP connection.
func (m *Mailer) dialTLS() (session, error) {
	addr := fmt.Sprintf("%s:%d", m.cfg.SMTPServer, m.cfg.SMTPPort)
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: m.cfg.SMTPServer})
	if err != nil {
		return nil, err
	}
	client, err := smtp.NewClient(conn, m.cfg.SMTPServer)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return client, nil
}
