package notify

import (
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"github.com/minhtran-dev/savings-ledger/internal/config"
)

// Sender handles sending account-holder emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendDepositNotice confirms a newly opened term deposit
func (s *Sender) SendDepositNotice(to, username string, amount int64, termMonths, rate int) error {
	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"Your term deposit of %d has been opened for %d months at %d%%.\n"+
			"The rate is locked in for the full term.\n",
		username, amount, termMonths, rate,
	)
	return s.send(to, "Term Deposit Opened", body)
}

// SendWithdrawalNotice confirms a deposit payout
func (s *Sender) SendWithdrawalNotice(to, username string, total, interest int64) error {
	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"Your deposit has been paid out.\n"+
			"Total: %d (including %d interest).\n",
		username, total, interest,
	)
	return s.send(to, "Deposit Withdrawal", body)
}

// SendLoanNotice confirms a loan origination
func (s *Sender) SendLoanNotice(to, username string, principal, totalDue int64, durationMonths int) error {
	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"Your loan of %d has been approved for %d months.\n"+
			"Total repayment due: %d.\n",
		username, principal, durationMonths, totalDue,
	)
	return s.send(to, "Loan Approved", body)
}

// SendMaturityReminder warns that a matured deposit will reinvest if left
// unclaimed
func (s *Sender) SendMaturityReminder(to, username string, amount int64, termMonths int) error {
	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"Your %d-month deposit of %d has matured and was not withdrawn.\n"+
			"It will be reinvested at the original rate and term on the next settlement.\n",
		username, termMonths, amount,
	)
	return s.send(to, "Deposit Matured", body)
}

func (s *Sender) send(to, subject, body string) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body + "\nBest regards,\nSavings Ledger")

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, subject)
	return nil
}
