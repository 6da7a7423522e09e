package notify

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/unihaven/internal/breaker"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Sender delivers a composed message. *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailNotifier mails every specialist of the member's university.
type EmailNotifier struct {
	sender      Sender
	from        string
	specialists SpecialistDirectory
	cb          *gobreaker.CircuitBreaker
	logger      *zap.Logger
}

func NewEmailNotifier(sender Sender, from string, specialists SpecialistDirectory, logger *zap.Logger) *EmailNotifier {
	return &EmailNotifier{
		sender:      sender,
		from:        from,
		specialists: specialists,
		cb:          breaker.New("email", logger),
		logger:      logger,
	}
}

// NewSMTPDialer builds the gomail dialer for the configured SMTP server.
func NewSMTPDialer(host string, port int, user, password string) *gomail.Dialer {
	return gomail.NewDialer(host, port, user, password)
}

func (n *EmailNotifier) Notify(ctx context.Context, event Event) error {
	universityID := event.UniversityID()
	specialists, err := n.specialists.ListSpecialistsByUniversity(ctx, universityID)
	if err != nil {
		return fmt.Errorf("get specialists: %w", err)
	}

	recipients := make([]string, 0, len(specialists))
	for _, sp := range specialists {
		if sp.Email != "" {
			recipients = append(recipients, sp.Email)
		}
	}
	if len(recipients) == 0 {
		n.logger.Warn("No specialists to notify", zap.Int64("university_id", universityID))
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", recipients...)
	m.SetHeader("Subject", event.Subject())
	m.SetBody("text/plain", event.Body())

	_, err = n.cb.Execute(func() (interface{}, error) {
		return nil, n.sender.DialAndSend(m)
	})
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	n.logger.Info("Notification email sent",
		zap.String("kind", string(event.Kind)),
		zap.Int64("reservation_id", event.Reservation.ID),
		zap.Int("recipients", len(recipients)),
	)

	return nil
}
