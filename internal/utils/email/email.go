package email

import (
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"github.com/rentdesk/agency-service/internal/config"
	"github.com/rentdesk/agency-service/internal/models"
)

// Sender handles sending emails via SMTP
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

// SendOverdueNotice notifies a tenant that an obligation is past due
func (s *Sender) SendOverdueNotice(to, name string, ob *models.Obligation) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = "Overdue Payment Notice"

	outstanding := ob.Amount.Sub(ob.PaidAmount)
	body := fmt.Sprintf(
		"Dear %s,\n\n", name,
	)
	body += fmt.Sprintf(
		"Your %s payment of %s for %s was due on %s and is now overdue.\n"+
			"Outstanding amount: %s.\n"+
			"Please make the payment as soon as possible.\n",
		ob.Type, ob.Amount, models.FormatPeriod(ob.Period), ob.DueDate.Format("2006-01-02"), outstanding,
	)
	body += "\nBest regards,\nAgency Service"
	e.Text = []byte(body)

	if err := s.send(e); err != nil {
		s.logger.Errorf("Failed to send overdue notice to %s: %v", to, err)
		return fmt.Errorf("failed to send overdue notice: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}

// SendSettlementConfirmation notifies an owner that their settlement was
// paid out
func (s *Sender) SendSettlementConfirmation(to, name string, settlement *models.Settlement) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = fmt.Sprintf("Settlement for %s", models.FormatPeriod(settlement.Period))

	body := fmt.Sprintf(
		"Dear %s,\n\n", name,
	)
	body += fmt.Sprintf(
		"Your settlement for %s has been paid out.\n"+
			"Total collected: %s\n"+
			"Agency commission: %s\n"+
			"Amount paid to you: %s\n"+
			"Reference: %s\n",
		models.FormatPeriod(settlement.Period), settlement.TotalCollected,
		settlement.CommissionAmount, settlement.OwnerAmount, settlement.Reference,
	)
	body += "\nBest regards,\nAgency Service"
	e.Text = []byte(body)

	if err := s.send(e); err != nil {
		s.logger.Errorf("Failed to send settlement confirmation to %s: %v", to, err)
		return fmt.Errorf("failed to send settlement confirmation: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}

func (s *Sender) send(e *email.Email) error {
	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	return e.Send(addr, auth)
}
