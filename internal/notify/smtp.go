package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
)

var confirmationTmpl = template.Must(template.New("confirm").Parse(
	`<p>Hello: {{.Name}}, you have created your account in UpTask, all is almost ready, you just need to confirm your account</p>
<p>Visit this link:</p>
<a href="{{.URL}}/auth/confirm-account">Confirm account</a>
<p>And enter the code: <b>{{.Token}}</b></p>
<p>This token expires in {{.TTL}} minutes</p>
`))

var resetTmpl = template.Must(template.New("reset").Parse(
	`<p>Hello: {{.Name}}, you requested to reset your password.</p>
<p>Visit this link:</p>
<a href="{{.URL}}/auth/new-password">Reset Password</a>
<p>And enter the code: <b>{{.Token}}</b></p>
<p>This token expires in {{.TTL}} minutes</p>
`))

type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	From        string
	FrontendURL string
	TTLMinutes  int
}

// SMTPNotifier sends HTML mail through an SMTP relay.
type SMTPNotifier struct {
	cfg  SMTPConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg, send: smtp.SendMail}
}

func (n *SMTPNotifier) SendConfirmation(ctx context.Context, msg Message) error {
	return n.deliver(msg, "UpTask - Confirm your account", confirmationTmpl)
}

func (n *SMTPNotifier) SendPasswordReset(ctx context.Context, msg Message) error {
	return n.deliver(msg, "UpTask - Reset password", resetTmpl)
}

func (n *SMTPNotifier) deliver(msg Message, subject string, tmpl *template.Template) error {
	from, err := mail.ParseAddress(n.cfg.From)
	if err != nil {
		return fmt.Errorf("invalid sender %q: %w", n.cfg.From, err)
	}

	var body bytes.Buffer
	err = tmpl.Execute(&body, struct {
		Name  string
		Token string
		URL   string
		TTL   int
	}{msg.Name, msg.Token, strings.TrimRight(n.cfg.FrontendURL, "/"), n.cfg.TTLMinutes})
	if err != nil {
		return err
	}

	raw := buildMessage(n.cfg.From, msg.Email, subject, body.String())

	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}

	addr := net.JoinHostPort(n.cfg.Host, strconv.Itoa(n.cfg.Port))
	if err := n.send(addr, auth, from.Address, []string{msg.Email}, raw); err != nil {
		return fmt.Errorf("smtp send to %s: %w", msg.Email, err)
	}
	return nil
}

func buildMessage(from, to, subject, html string) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(html)
	return b.Bytes()
}
