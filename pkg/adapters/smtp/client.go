// Package smtp implements ports.Mailer over an SMTP relay with STARTTLS.
package smtp

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/regtrain/pkg/domain"
)

// Client is a basic STARTTLS mail client.
type Client struct {
	Host     string
	Port     int
	User     string
	Password string

	// TLSConfig overrides the default (ServerName = Host).
	TLSConfig *tls.Config
	// DialTimeout bounds connection setup; zero means 30s.
	DialTimeout time.Duration
}

// NewClient validates the settings and returns a Client.
func NewClient(host string, port int, user, password string) (*Client, error) {
	if host == "" {
		return nil, fmt.Errorf("host not provided")
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("invalid port %d", port)
	}
	if user == "" {
		return nil, fmt.Errorf("user not provided")
	}
	if password == "" {
		return nil, fmt.Errorf("password not provided")
	}

	return &Client{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
	}, nil
}

// Send delivers msg in a single session. The session is released before Send returns,
// whether delivery succeeds or not.
func (c *Client) Send(ctx context.Context, msg domain.Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("no recipients")
	}
	from, err := mail.ParseAddress(msg.From)
	if err != nil {
		return fmt.Errorf("invalid sender %q: %w", msg.From, err)
	}

	timeout := c.DialTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	hostport := net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", hostport)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", hostport, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			conn.Close()
			return fmt.Errorf("failed to set deadline on %s: %w", hostport, err)
		}
	}

	client, err := smtp.NewClient(conn, c.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake failed: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); !ok {
		return fmt.Errorf("smtp server %s does not support STARTTLS", hostport)
	}
	tlsConfig := c.TLSConfig
	if tlsConfig == nil {
		tlsConfig = &tls.Config{ServerName: c.Host}
	}
	if err := client.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("starttls failed: %w", err)
	}

	if err := client.Auth(smtp.PlainAuth("", c.User, c.Password, c.Host)); err != nil {
		return fmt.Errorf("smtp auth failed: %w", err)
	}

	if err := client.Mail(from.Address); err != nil {
		return fmt.Errorf("MAIL FROM rejected: %w", err)
	}
	for _, rcpt := range msg.To {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("RCPT TO %s rejected: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("DATA rejected: %w", err)
	}
	if _, err := w.Write(Format(msg, time.Now())); err != nil {
		w.Close()
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("message not accepted: %w", err)
	}

	return client.Quit()
}

// Format renders msg as an RFC 5322 plain-text message with CRLF line endings.
func Format(msg domain.Message, date time.Time) []byte {
	var b bytes.Buffer

	header := func(k, v string) {
		fmt.Fprintf(&b, "%s: %s\r\n", k, v)
	}
	header("From", msg.From)
	header("To", strings.Join(msg.To, ", "))
	header("Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	header("Date", date.Format(time.RFC1123Z))
	header("MIME-Version", "1.0")
	header("Content-Type", `text/plain; charset="UTF-8"`)
	header("Content-Transfer-Encoding", "8bit")
	b.WriteString("\r\n")

	body := strings.ReplaceAll(msg.Body, "\r\n", "\n")
	body = strings.ReplaceAll(body, "\n", "\r\n")
	b.WriteString(body)
	if !strings.HasSuffix(body, "\r\n") {
		b.WriteString("\r\n")
	}

	return b.Bytes()
}
