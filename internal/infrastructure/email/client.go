// Package email provides the email client for sending schedule reminders.
package email

import (
	"fmt"

	"github.com/resendlabs/resend-go"

	"github.com/rajcreationz/livesite/internal/domain/entities/schedule"
	"github.com/rajcreationz/livesite/internal/infrastructure/email/templates"
)

// Service defines the interface for sending emails, allowing for mock implementations in tests.
type Service interface {
	SendEventReminder(toEmail string, ev schedule.Event, ics []byte, eventURL string) error
}

// ResendClient is the concrete implementation of the email Service using the Resend API.
type ResendClient struct {
	client    *resend.Client
	fromEmail string
	fromName  string
	siteTitle string
}

// NewService creates a new email service client, returning the Service interface.
func NewService(apiKey, fromEmail, siteTitle string) (Service, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("RESEND_API_KEY is required for reminders")
	}
	if fromEmail == "" {
		fromEmail = "schedule@rajcreationz.com"
	}
	if siteTitle == "" {
		siteTitle = "RajCreation Live"
	}
	return &ResendClient{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
		fromName:  siteTitle,
		siteTitle: siteTitle,
	}, nil
}

// ReminderSubject is the subject line for an event reminder.
func ReminderSubject(ev schedule.Event) string {
	return fmt.Sprintf("Reminder: %s on %s", ev.Title, ev.Date)
}

// RenderReminder builds the HTML body for an event reminder.
func RenderReminder(ev schedule.Event, eventURL, siteTitle string) (string, error) {
	location := ev.Location
	if location == "" {
		location = schedule.DefaultLocation
	}
	return templates.Render(templates.Reminder{
		SiteTitle:   siteTitle,
		Title:       ev.Title,
		Date:        ev.Date,
		TimeRange:   fmt.Sprintf("%s - %s", schedule.Format12h(ev.StartTime), schedule.Format12h(ev.EndTime)),
		Timezone:    ev.Timezone,
		Location:    location,
		Description: ev.Description,
		WatchURL:    eventURL,
	})
}

// reminderRequest builds the Resend payload with the .ics attached.
func (c *ResendClient) reminderRequest(toEmail string, ev schedule.Event, ics []byte, eventURL string) (*resend.SendEmailRequest, error) {
	body, err := RenderReminder(ev, eventURL, c.siteTitle)
	if err != nil {
		return nil, err
	}
	return &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", c.fromName, c.fromEmail),
		To:      []string{toEmail},
		Subject: ReminderSubject(ev),
		Html:    body,
		Attachments: []resend.Attachment{{
			Content:  string(ics),
			Filename: ev.ICSFileName(),
		}},
	}, nil
}

// SendEventReminder composes and sends the reminder with the .ics attached.
func (c *ResendClient) SendEventReminder(toEmail string, ev schedule.Event, ics []byte, eventURL string) error {
	params, err := c.reminderRequest(toEmail, ev, ics, eventURL)
	if err != nil {
		return err
	}
	if _, err := c.client.Emails.Send(params); err != nil {
		return fmt.Errorf("failed to send reminder email via Resend: %w", err)
	}
	return nil
}
