package report

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"loan-monitor/internal/config"

	"gopkg.in/gomail.v2"
)

// Mailer delivers a finished due report. The SMTP implementation sends the
// summary as an HTML body with the CSV attached.
type Mailer interface {
	Send(rep *Report) error
}

type SMTPMailer struct {
	dialer      *gomail.Dialer
	cfg         config.SMTPConfig
	companyName string
	logger      *slog.Logger
}

func NewSMTPMailer(cfg config.SMTPConfig, companyName string, logger *slog.Logger) *SMTPMailer {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return &SMTPMailer{
		dialer:      dialer,
		cfg:         cfg,
		companyName: companyName,
		logger:      logger.With("component", "SMTPMailer"),
	}
}

func (m *SMTPMailer) Send(rep *Report) error {
	subject := fmt.Sprintf("%s Loans Due Report - %s",
		m.cfg.SubjectPrefix, rep.Summary.GeneratedAt.Format("2006-01-02"))

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetAddressHeader("To", m.cfg.To, m.cfg.ToName)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", renderBody(rep.Summary, m.cfg.ToName, m.companyName))
	msg.Attach(rep.Filename(), gomail.SetCopyFunc(func(w io.Writer) error {
		_, err := io.Copy(w, bytes.NewReader(rep.CSV))
		return err
	}))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send report email: %w", err)
	}

	m.logger.Info("Report email sent.", "to", m.cfg.To, "loans", rep.Summary.TotalLoans)
	return nil
}

func renderBody(s Summary, recipientName, companyName string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "<h2>Loans Due Report</h2>")
	fmt.Fprintf(&b, "<p>Dear %s,</p>", recipientName)
	fmt.Fprintf(&b, "<p>Here is the loan book as of %s, covering loans due within the next %d days.</p>",
		s.GeneratedAt.Format("Monday, 02 January 2006"), s.DaysAhead)
	fmt.Fprintf(&b, "<ul>")
	fmt.Fprintf(&b, "<li>Total loans in window: <b>%d</b></li>", s.TotalLoans)
	fmt.Fprintf(&b, "<li>Total outstanding: <b>%s</b></li>", s.TotalOutstanding.StringFixed(2))
	fmt.Fprintf(&b, "<li>Overdue: <b>%d</b> (outstanding %s)</li>", s.OverdueCount, s.OverdueOutstanding.StringFixed(2))
	fmt.Fprintf(&b, "<li>Due today: <b>%d</b></li>", s.DueTodayCount)
	fmt.Fprintf(&b, "<li>Due in 1-3 days: <b>%d</b></li>", s.DueSoonCount)
	fmt.Fprintf(&b, "<li>Due in 4+ days: <b>%d</b></li>", s.DueLaterCount)
	fmt.Fprintf(&b, "</ul>")
	fmt.Fprintf(&b, "<p>The full detail is attached as CSV.</p>")
	if companyName != "" {
		fmt.Fprintf(&b, "<p>Regards,<br>%s</p>", companyName)
	}

	return b.String()
}

// NopMailer is plugged in when SMTP delivery is disabled.
type NopMailer struct {
	logger *slog.Logger
}

func NewNopMailer(logger *slog.Logger) *NopMailer {
	return &NopMailer{logger: logger.With("component", "NopMailer")}
}

func (m *NopMailer) Send(rep *Report) error {
	m.logger.Info("Email delivery disabled, skipping report send.",
		"loans", rep.Summary.TotalLoans,
		"generated_at", rep.Summary.GeneratedAt.Format(time.DateOnly),
	)
	return nil
}
