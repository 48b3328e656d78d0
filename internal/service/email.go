package service

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strings"

	"github.com/net-idea/huette9/internal/config"
	"github.com/net-idea/huette9/internal/ports"
)

var _ ports.MailSender = (*EmailService)(nil)

// EmailService delivers rendered messages over SMTP / Délivre les messages rendus via SMTP
type EmailService struct {
	cfg *config.Config
}

// NewEmailService creates email service with config validation / Crée le service email avec validation de la config
func NewEmailService(cfg *config.Config) (*EmailService, error) {
	// Skip validation for test mode (localhost:1025) / Ignore la validation pour le mode test
	if cfg.SMTP.Host != "localhost" && cfg.SMTP.Port != 1025 {
		if err := validateSMTPConfig(cfg.SMTP); err != nil {
			return nil, fmt.Errorf("invalid SMTP configuration: %w", err)
		}
	}

	// Set default values for test environment / Valeurs par défaut pour l'environnement de test
	if cfg.SMTP.Host == "" {
		cfg.SMTP.Host = "localhost"
		cfg.SMTP.Port = 1025
		cfg.SMTP.From = "test@example.com"
	}

	return &EmailService{cfg: cfg}, nil
}

// validateSMTPConfig validates SMTP settings / Valide les paramètres SMTP
func validateSMTPConfig(smtp config.SMTPConfig) error {
	if smtp.Host == "" {
		return fmt.Errorf("SMTP host is required")
	}
	if smtp.Port <= 0 || smtp.Port > 65535 {
		return fmt.Errorf("SMTP port must be between 1 and 65535")
	}
	if smtp.From == "" {
		return fmt.Errorf("SMTP from address is required")
	}
	// Username/Password can be empty for some SMTP servers (e.g., unauthenticated relay)
	return nil
}

// Send delivers a message, using multipart/alternative when both bodies are set.
func (e *EmailService) Send(ctx context.Context, msg ports.Message) error {
	auth := smtp.PlainAuth("", e.cfg.SMTP.Username, e.cfg.SMTP.Password, e.cfg.SMTP.Host)

	from := msg.From
	if from.IsZero() {
		from = ports.Address{Email: e.cfg.SMTP.From}
	}

	raw := buildMessage(from, msg)
	addr := fmt.Sprintf("%s:%d", e.cfg.SMTP.Host, e.cfg.SMTP.Port)

	if e.cfg.SMTP.Host == "localhost" && e.cfg.SMTP.Port == 1025 {
		ch := make(chan error, 1)
		go func() {
			ch <- smtp.SendMail(addr, nil, from.Email, []string{msg.To.Email}, raw)
		}()
		select {
		case err := <-ch:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	tlsConfig := &tls.Config{
		ServerName: e.cfg.SMTP.Host,
		MinVersion: tls.VersionTLS12,
	}

	// Use context-aware dialer / Utilise un dialer respectant le contexte
	dialer := &net.Dialer{}
	rawConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	conn := tls.Client(rawConn, tlsConfig)
	defer conn.Close()

	// Perform TLS handshake with context / Effectue le handshake TLS avec contexte
	if err := conn.HandshakeContext(ctx); err != nil {
		rawConn.Close()
		return err
	}

	client, err := smtp.NewClient(conn, e.cfg.SMTP.Host)
	if err != nil {
		return err
	}
	defer client.Quit()

	if err = client.Auth(auth); err != nil {
		return err
	}
	if err = client.Mail(from.Email); err != nil {
		return err
	}
	if err = client.Rcpt(msg.To.Email); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	defer w.Close()

	_, err = w.Write(raw)
	return err
}

// multipartBoundary separates the text and HTML alternatives. Fixed rather
// than random so message construction stays deterministic and testable.
const multipartBoundary = "=_huette9_alt"

// buildMessage assembles the RFC 5322 wire form / Assemble la forme filaire RFC 5322
func buildMessage(from ports.Address, msg ports.Message) []byte {
	var b strings.Builder

	writeHeader(&b, "From", formatAddress(from))
	writeHeader(&b, "To", formatAddress(msg.To))
	if !msg.ReplyTo.IsZero() {
		writeHeader(&b, "Reply-To", formatAddress(msg.ReplyTo))
	}
	writeHeader(&b, "Subject", encodeSubject(msg.Subject))
	writeHeader(&b, "MIME-Version", "1.0")

	switch {
	case msg.TextBody != "" && msg.HTMLBody != "":
		writeHeader(&b, "Content-Type", fmt.Sprintf("multipart/alternative; boundary=%q", multipartBoundary))
		b.WriteString("\r\n")
		writePart(&b, "text/plain; charset=\"utf-8\"", msg.TextBody)
		writePart(&b, "text/html; charset=\"utf-8\"", msg.HTMLBody)
		b.WriteString("--" + multipartBoundary + "--\r\n")
	case msg.HTMLBody != "":
		writeHeader(&b, "Content-Type", "text/html; charset=\"utf-8\"")
		b.WriteString("\r\n" + msg.HTMLBody)
	default:
		writeHeader(&b, "Content-Type", "text/plain; charset=\"utf-8\"")
		b.WriteString("\r\n" + msg.TextBody)
	}

	return []byte(b.String())
}

func writeHeader(b *strings.Builder, key, value string) {
	b.WriteString(key)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteString("\r\n")
}

func writePart(b *strings.Builder, contentType, body string) {
	b.WriteString("--" + multipartBoundary + "\r\n")
	b.WriteString("Content-Type: " + contentType + "\r\n\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")
}

// formatAddress renders "Name <addr>" with RFC 2047 encoding for names / Rend "Nom <adresse>" avec encodage RFC 2047
func formatAddress(a ports.Address) string {
	if a.Name == "" {
		return a.Email
	}
	return fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", a.Name), a.Email)
}

// encodeSubject base64-encodes the subject for non-ASCII safety / Encode le sujet en base64 pour les caractères non-ASCII
func encodeSubject(subject string) string {
	return "=?UTF-8?B?" + base64.StdEncoding.EncodeToString([]byte(subject)) + "?="
}
