// Package notify emails coaches about student activity.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"log"

	"focuscoach/coaching-app/internal/domain"

	"github.com/resend/resend-go/v2"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// Notifier tells a coach that a student filed a weekly report.
type Notifier interface {
	WeeklyReportSubmitted(ctx context.Context, coach, student *domain.User, report *domain.WeeklyReport) error
}

// Raw HTML in report notes is escaped because WithUnsafe is not set.
var markdown = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// resendNotifier sends notifications through the Resend API.
type resendNotifier struct {
	client *resend.Client
	from   string
}

// NewNotifier returns a Resend-backed notifier, or one that only logs when apiKey is empty.
func NewNotifier(apiKey, from string) Notifier {
	if apiKey == "" {
		log.Println("WARN: Email API key not set, coach notifications will only be logged")
		return logNotifier{}
	}
	return &resendNotifier{client: resend.NewClient(apiKey), from: from}
}

func (n *resendNotifier) WeeklyReportSubmitted(ctx context.Context, coach, student *domain.User, report *domain.WeeklyReport) error {
	body, err := RenderWeeklyReport(student, report)
	if err != nil {
		return err
	}
	params := &resend.SendEmailRequest{
		From:    n.from,
		To:      []string{coach.Email},
		Subject: WeeklyReportSubject(student, report),
		Html:    body,
		ReplyTo: student.Email,
	}
	sent, err := n.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		log.Printf("ERROR: Failed to email coach %s about report %s: %v", coach.ID.Hex(), report.ID.Hex(), err)
		return fmt.Errorf("send weekly report email: %w", err)
	}
	log.Printf("INFO: Weekly report email %s sent to coach %s", sent.Id, coach.ID.Hex())
	return nil
}

type logNotifier struct{}

func (logNotifier) WeeklyReportSubmitted(_ context.Context, coach, student *domain.User, report *domain.WeeklyReport) error {
	log.Printf("INFO: Weekly report %s (week %d) from %s for coach %s", report.ID.Hex(), report.WeekNumber, student.ID.Hex(), coach.ID.Hex())
	return nil
}

// WeeklyReportSubject is the email subject line for a submitted report.
func WeeklyReportSubject(student *domain.User, report *domain.WeeklyReport) string {
	return fmt.Sprintf("%s submitted their week %d report", student.Name, report.WeekNumber)
}

// RenderWeeklyReport builds the HTML email body. Wins and challenges are markdown.
func RenderWeeklyReport(student *domain.User, report *domain.WeeklyReport) (string, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "<h2>%s: week %d (%s to %s)</h2>\n",
		html.EscapeString(student.Name), report.WeekNumber,
		report.WeekStart.Format("Jan 2"), report.WeekEnd.Format("Jan 2"))
	m := report.Metrics
	fmt.Fprintf(&buf, "<ul>\n<li>New leads: %d</li>\n<li>Conversations: %d</li>\n<li>Shoots booked: %d</li>\n<li>Revenue: %d.%02d</li>\n</ul>\n",
		m.NewLeads, m.Conversations, m.ShootsBooked, m.RevenueCents/100, m.RevenueCents%100)

	for _, section := range []struct{ title, body string }{
		{"Wins", report.Wins},
		{"Challenges", report.Challenges},
	} {
		if section.body == "" {
			continue
		}
		fmt.Fprintf(&buf, "<h3>%s</h3>\n", section.title)
		if err := markdown.Convert([]byte(section.body), &buf); err != nil {
			return "", fmt.Errorf("render %s: %w", section.title, err)
		}
	}
	return buf.String(), nil
}
