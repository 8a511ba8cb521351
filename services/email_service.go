package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/gomail.v2"

	"ledgerProject/config"
)

// EmailService предоставляет методы для отправки email
type EmailService struct {
	dialer   *gomail.Dialer
	from     string
	opsEmail string
}

// NewEmailService создает новый экземпляр EmailService
func NewEmailService(cfg *config.Config) *EmailService {
	dialer := gomail.NewDialer(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Username,
		cfg.SMTP.Password,
	)

	return &EmailService{
		dialer:   dialer,
		from:     cfg.SMTP.From,
		opsEmail: cfg.Ledger.OpsEmail,
	}
}

// SendEmail отправляет email
func (s *EmailService) SendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("ошибка отправки email: %v", err)
	}

	return nil
}

// SendReconciliationNotification отправляет уведомление о выполненной сверке
func (s *EmailService) SendReconciliationNotification(accountName string, previous, newBalance, delta decimal.Decimal) error {
	subject := "Уведомление о сверке счета"
	body := fmt.Sprintf(`
		<h2>Сверка выполнена</h2>
		<p>Счет: %s</p>
		<p>Расчетный баланс: %s</p>
		<p>Баланс выписки: %s</p>
		<p>Корректировка: %s</p>
		<p>Дата: %s</p>
	`, accountName, previous.StringFixed(2), newBalance.StringFixed(2), delta.StringFixed(2), time.Now().Format("02.01.2006 15:04:05"))

	return s.SendEmail(s.opsEmail, subject, body)
}

// SendConsistencyAlert отправляет оператору предупреждение о расхождении
// реконструкции
func (s *EmailService) SendConsistencyAlert(accountID uint, discrepancy decimal.Decimal) error {
	subject := "Расхождение реконструкции баланса"
	body := fmt.Sprintf(`
		<h2>Расхождение реконструкции</h2>
		<p>Счет: %d</p>
		<p>Величина расхождения: %s</p>
		<p>Дата: %s</p>
		<p>Реконструкция вернула серию в деградированном режиме; требуется проверка леджера.</p>
	`, accountID, discrepancy.StringFixed(2), time.Now().Format("02.01.2006 15:04:05"))

	return s.SendEmail(s.opsEmail, subject, body)
}
