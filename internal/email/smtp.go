// Package email renders and delivers outbound lead emails.
package email

import (
	"context"
	"fmt"
	"net"
	"time"

	"vendexa_backend/platform/config"

	gomail "github.com/wneessen/go-mail"
)

// Sender delivers rendered lead emails.
type Sender interface {
	SendWelcomeEmail(ctx context.Context, toEmail, leadName string) error
	SendProposalEmail(ctx context.Context, toEmail, leadName, proposalText string) error
	SendDealWonEmail(ctx context.Context, toEmail, leadName string, valueCents int64) error
	SendFollowUpEmail(ctx context.Context, toEmail, leadName, message string) error
}

// NewSender builds the configured Sender: SMTP when email is enabled,
// otherwise a logger-less no-op so demo environments need no mail server.
func NewSender(cfg config.EmailConfig) Sender {
	if !cfg.GetEmailEnabled() {
		return NoopSender{}
	}
	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	)
}

// SMTPSender implements Sender over a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates a new SMTPSender with the given SMTP credentials.
func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

func (s *SMTPSender) SendWelcomeEmail(ctx context.Context, toEmail, leadName string) error {
	content, err := renderEmailTemplate("welcome.html", welcomeEmailData{
		baseEmailData: baseEmailData{
			Title:   subjectWelcome,
			Heading: "Bem-vindo a VENDEXA!",
		},
		LeadName: leadName,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectWelcome, content)
}

func (s *SMTPSender) SendProposalEmail(ctx context.Context, toEmail, leadName, proposalText string) error {
	content, err := renderEmailTemplate("proposal.html", proposalEmailData{
		baseEmailData: baseEmailData{
			Title:   subjectProposal,
			Heading: "Sua proposta esta pronta",
		},
		LeadName:     leadName,
		ProposalText: proposalText,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectProposal, content)
}

func (s *SMTPSender) SendDealWonEmail(ctx context.Context, toEmail, leadName string, valueCents int64) error {
	content, err := renderEmailTemplate("deal_won.html", dealWonEmailData{
		baseEmailData: baseEmailData{
			Title:   subjectDealWon,
			Heading: "Pagamento confirmado!",
		},
		LeadName:       leadName,
		ValueFormatted: formatCurrencyBRL(valueCents),
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectDealWon, content)
}

func (s *SMTPSender) SendFollowUpEmail(ctx context.Context, toEmail, leadName, message string) error {
	content, err := renderEmailTemplate("follow_up.html", followUpEmailData{
		baseEmailData: baseEmailData{
			Title:   subjectFollowUp,
			Heading: "Ainda estamos por aqui",
		},
		LeadName: leadName,
		Message:  message,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectFollowUp, content)
}

// NoopSender drops all emails. Used when EMAIL_ENABLED is off.
type NoopSender struct{}

func (NoopSender) SendWelcomeEmail(context.Context, string, string) error          { return nil }
func (NoopSender) SendProposalEmail(context.Context, string, string, string) error { return nil }
func (NoopSender) SendDealWonEmail(context.Context, string, string, int64) error   { return nil }
func (NoopSender) SendFollowUpEmail(context.Context, string, string, string) error { return nil }

var (
	_ Sender = (*SMTPSender)(nil)
	_ Sender = NoopSender{}
)
