package delivery

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"path/filepath"
	"strings"
	"time"

	"broker-crm/internal/features/settings"

	"go.uber.org/zap"
)

// Mailer hands a rendered message to the outside world.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer sends through the SMTP server stored in settings. The config is
// read on every send so changes apply without a restart.
type SMTPMailer struct {
	Settings settings.SettingsService
	Logger   *zap.Logger
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPMailer(settingsService settings.SettingsService, logger *zap.Logger) Mailer {
	return &SMTPMailer{
		Settings: settingsService,
		Logger:   logger,
		sendMail: smtp.SendMail,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	config, err := m.Settings.GetEmailConfig(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch email config: %w", err)
	}
	if config == nil || config.SMTPHost == "" || config.SMTPPort == 0 {
		return ErrNotConfigured
	}

	if msg.From == "" {
		msg.From = config.Sender()
	}
	if msg.FromName == "" {
		msg.FromName = config.FromName
	}

	raw, err := BuildMIME(msg, time.Now())
	if err != nil {
		return err
	}

	var auth smtp.Auth
	if config.SMTPUser != "" {
		auth = smtp.PlainAuth("", config.SMTPUser, config.SMTPPassword, config.SMTPHost)
	}
	addr := fmt.Sprintf("%s:%d", config.SMTPHost, config.SMTPPort)

	m.Logger.Info("sending email",
		zap.String("addr", addr),
		zap.Strings("to", msg.To),
		zap.Int("attachments", len(msg.Attachments)))

	// net/smtp has no context support; the send runs to completion.
	return m.sendMail(addr, auth, msg.From, msg.Recipients(), raw)
}

// BuildMIME renders msg as multipart/mixed holding a multipart/alternative
// text+HTML body followed by base64 attachments.
func BuildMIME(msg Message, date time.Time) ([]byte, error) {
	var buf bytes.Buffer

	from := (&mail.Address{Name: msg.FromName, Address: msg.From}).String()
	header := textproto.MIMEHeader{}
	header.Set("From", from)
	header.Set("To", strings.Join(msg.To, ", "))
	if len(msg.Cc) > 0 {
		header.Set("Cc", strings.Join(msg.Cc, ", "))
	}
	header.Set("Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	header.Set("Date", date.Format(time.RFC1123Z))
	header.Set("MIME-Version", "1.0")

	mixed := multipart.NewWriter(&buf)
	header.Set("Content-Type", "multipart/mixed; boundary="+mixed.Boundary())
	writeHeader(&buf, header)

	var altBody bytes.Buffer
	alt := multipart.NewWriter(&altBody)
	if err := writeTextPart(alt, "text/plain; charset=utf-8", msg.Text); err != nil {
		return nil, err
	}
	if err := writeTextPart(alt, "text/html; charset=utf-8", msg.HTML); err != nil {
		return nil, err
	}
	if err := alt.Close(); err != nil {
		return nil, err
	}

	altHeader := textproto.MIMEHeader{}
	altHeader.Set("Content-Type", "multipart/alternative; boundary="+alt.Boundary())
	altPart, err := mixed.CreatePart(altHeader)
	if err != nil {
		return nil, err
	}
	if _, err := altPart.Write(altBody.Bytes()); err != nil {
		return nil, err
	}

	for _, a := range msg.Attachments {
		if err := writeAttachment(mixed, a); err != nil {
			return nil, err
		}
	}
	if err := mixed.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeHeader(w io.Writer, h textproto.MIMEHeader) {
	for _, k := range []string{"From", "To", "Cc", "Subject", "Date", "MIME-Version", "Content-Type"} {
		if v := h.Get(k); v != "" {
			fmt.Fprintf(w, "%s: %s\r\n", k, v)
		}
	}
	io.WriteString(w, "\r\n")
}

func writeTextPart(w *multipart.Writer, contentType, body string) error {
	h := textproto.MIMEHeader{}
	h.Set("Content-Type", contentType)
	h.Set("Content-Transfer-Encoding", "base64")
	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	return writeBase64(part, []byte(body))
}

func writeAttachment(w *multipart.Writer, a Attachment) error {
	contentType := a.ContentType
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(a.Name))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h := textproto.MIMEHeader{}
	h.Set("Content-Type", mime.FormatMediaType(contentType, map[string]string{"name": a.Name}))
	h.Set("Content-Transfer-Encoding", "base64")
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": a.Name}))
	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	return writeBase64(part, a.Data)
}

// writeBase64 wraps encoded output at 76 characters per line.
func writeBase64(w io.Writer, data []byte) error {
	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > 76 {
		if _, err := io.WriteString(w, encoded[:76]+"\r\n"); err != nil {
			return err
		}
		encoded = encoded[76:]
	}
	_, err := io.WriteString(w, encoded+"\r\n")
	return err
}
