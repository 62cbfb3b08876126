package notify

import (
	"gopkg.in/gomail.v2"

	"github.com/miaokingsoft/HydroMonitor-RPi/internal/config"
	"github.com/miaokingsoft/HydroMonitor-RPi/internal/logger"
)

// MailNotifier sends alerts over SMTP with implicit TLS (port 465 style).
type MailNotifier struct {
	cfg config.MailConfig
	log *logger.Logger

	// send is swappable for tests; defaults to dialing the configured host.
	send func(subject, body string) error
}

func NewMailNotifier(cfg config.MailConfig, log *logger.Logger) *MailNotifier {
	n := &MailNotifier{cfg: cfg, log: log}
	n.send = n.dialAndSend
	return n
}

// Send delivers the message on a separate goroutine so sensor loops never
// block on SMTP round trips. Failures are logged only.
func (n *MailNotifier) Send(subject, body string) {
	go func() {
		if err := n.send(subject, body); err != nil {
			n.log.Errorw("alert_mail_failed", "err", err, "subject", subject)
			return
		}
		n.log.Infow("alert_mail_sent", "subject", subject)
	}()
}

func (n *MailNotifier) dialAndSend(subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.Sender)
	m.SetHeader("To", n.cfg.Receiver)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(n.cfg.Host, n.cfg.Port, n.cfg.Sender, n.cfg.Password)
	d.SSL = n.cfg.Port == 465
	return d.DialAndSend(m)
}
