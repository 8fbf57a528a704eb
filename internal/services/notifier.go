package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/Lllllllleong/resumeflow/internal/models"
)

// SubjectPrefix starts the subject of every notification.
const SubjectPrefix = "New Resume Processed: "

// Publisher delivers a message to every subscriber of topic.
type Publisher interface {
	Publish(ctx context.Context, topic, subject, body string) error
}

// BuildNotification formats details for subscribers. Missing values, including
// empty skill and company lists, are rendered as models.NotAvailable.
func BuildNotification(details *models.ResumeDetails, key string) models.Notification {
	name := orNotAvailable(details.Name)

	var b strings.Builder
	b.WriteString("A new resume has been uploaded and processed.\n\n")
	b.WriteString("Here are the extracted details:\n")
	fmt.Fprintf(&b, "Name: %s\n", name)
	fmt.Fprintf(&b, "Email: %s\n", orNotAvailable(details.Email))
	fmt.Fprintf(&b, "Phone: %s\n", orNotAvailable(details.PhoneNumber))
	fmt.Fprintf(&b, "Skills: %s\n", joinOrNotAvailable(details.Skills))
	fmt.Fprintf(&b, "Companies: %s\n", joinOrNotAvailable(details.CompaniesWorkedFor))
	fmt.Fprintf(&b, "File: %s\n", key)

	return models.Notification{
		Subject: SubjectPrefix + name,
		Body:    b.String(),
	}
}

func joinOrNotAvailable(items []string) string {
	if len(items) == 0 {
		return models.NotAvailable
	}
	return strings.Join(items, ", ")
}

// Notifier publishes notifications to a single topic.
type Notifier struct {
	publisher Publisher
	topic     string
}

func NewNotifier(publisher Publisher, topic string) *Notifier {
	return &Notifier{publisher: publisher, topic: topic}
}

// Notify publishes msg. Every failure is a PublishError.
func (n *Notifier) Notify(ctx context.Context, msg models.Notification) error {
	if n.publisher == nil {
		return PublishError("no notification channel configured", nil)
	}
	if n.topic == "" {
		return PublishError("notification topic is not configured", nil)
	}
	if err := n.publisher.Publish(ctx, n.topic, msg.Subject, msg.Body); err != nil {
		return PublishError(fmt.Sprintf("failed to publish to %s", n.topic), err)
	}
	return nil
}
