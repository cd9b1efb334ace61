package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"strings"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"

	"github.com/nexus-club/admin-api/pkg/config"
)

type sendMailFunc func(ctx context.Context, addr string, a sasl.Client, from string, to []string, r io.Reader) error

// SMTPSender relays email through an SMTP submission server.
type SMTPSender struct {
	addr     string
	from     string
	username string
	password string
	send     sendMailFunc
	now      func() time.Time
}

// NewSMTPSender returns nil when the relay is not configured, which disables email.
func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	if !cfg.Enabled() {
		return nil
	}
	return &SMTPSender{
		addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		from:     cfg.From,
		username: cfg.Username,
		password: cfg.Password,
		send:     sendMail,
		now:      time.Now,
	}
}

// Channel implements Sender.
func (s *SMTPSender) Channel() Channel { return ChannelEmail }

// Send delivers msg as a plain-text email to one address.
func (s *SMTPSender) Send(ctx context.Context, to string, msg Message) error {
	to = strings.TrimSpace(to)
	if to == "" || strings.ContainsAny(to, "\r\n") {
		return fmt.Errorf("invalid email recipient %q", to)
	}
	var auth sasl.Client
	if s.username != "" {
		auth = sasl.NewPlainClient("", s.username, s.password)
	}
	body := s.compose(to, msg)
	return call(ctx, func() error {
		if err := s.send(ctx, s.addr, auth, s.from, []string{to}, bytes.NewReader(body)); err != nil {
			return fmt.Errorf("smtp send to %s: %w", to, err)
		}
		return nil
	})
}

// sendMail is smtp.SendMail over a connection that ctx can abort. Cancellation
// closes the socket under any in-flight read or write.
func sendMail(ctx context.Context, addr string, a sasl.Client, from string, to []string, r io.Reader) error {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	c, err := smtp.NewClientStartTLS(conn, &tls.Config{ServerName: host})
	if err != nil {
		return err
	}
	defer c.Close()
	if deadline, ok := ctx.Deadline(); ok {
		c.CommandTimeout = time.Until(deadline)
		c.SubmissionTimeout = c.CommandTimeout
	}
	if a != nil {
		if ok, _ := c.Extension("AUTH"); !ok {
			return errors.New("smtp: server doesn't support AUTH")
		}
		if err := c.Auth(a); err != nil {
			return err
		}
	}
	if err := c.SendMail(from, to, r); err != nil {
		return err
	}
	return c.Quit()
}

func (s *SMTPSender) compose(to string, msg Message) []byte {
	subject := strings.NewReplacer("\r", " ", "\n", " ").Replace(msg.Subject)
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", s.from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&b, "Date: %s\r\n", s.now().UTC().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(strings.ReplaceAll(msg.Body, "\n", "\r\n"))
	b.WriteString("\r\n")
	return b.Bytes()
}
