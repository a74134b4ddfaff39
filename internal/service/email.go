package service

import (
	"context"
	"fmt"
	"strconv"

	"gopkg.in/gomail.v2"
)

type emailService struct {
	host     string
	port     int
	username string
	password string
	from     string
}

func NewEmailService(host, port, username, password, from string) EmailService {
	p, _ := strconv.Atoi(port)
	return &emailService{
		host:     host,
		port:     p,
		username: username,
		password: password,
		from:     from,
	}
}

func (s *emailService) SendCheckoutAlert(ctx context.Context, staffEmail, customRequestID string, lineCount int32) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", staffEmail)
	m.SetHeader("Subject", fmt.Sprintf("New asset request %s awaiting review", customRequestID))

	body := fmt.Sprintf("A new asset request has been submitted.\n\nRequest: %s\nLines: %d\n\nPlease review the pending items in the staff portal.", customRequestID, lineCount)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(s.host, s.port, s.username, s.password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send checkout alert: %w", err)
	}

	return nil
}

func (s *emailService) SendOverdueReminder(ctx context.Context, staffEmail, customRequestID, returnDate string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", staffEmail)
	m.SetHeader("Subject", fmt.Sprintf("Overdue rental on request %s", customRequestID))

	body := fmt.Sprintf("A rented item has passed its return date without an accepted return.\n\nRequest: %s\nReturn date: %s\n\nPlease follow up with the requester.", customRequestID, returnDate)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(s.host, s.port, s.username, s.password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send overdue reminder: %w", err)
	}

	return nil
}
