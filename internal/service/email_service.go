package service

import (
	"context"
	"fmt"
	"html"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"growtrack/internal/metrics"
)

// sesAPI is the part of the SES client the email service uses
type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailService handles sending emails via Amazon SES
type EmailService struct {
	client     sesAPI
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
	debug      bool
	metrics    *metrics.Metrics
}

// NewEmailService creates a new email service. With no from address the
// service is disabled and every send is skipped.
func NewEmailService(ctx context.Context, awsRegion, fromEmail, fromName, appBaseURL string, debug bool, m *metrics.Metrics) (*EmailService, error) {
	if fromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false, debug: debug, metrics: m}, nil
	}

	if debug {
		log.Printf("[DEBUG] Initializing email service with AWS SES: region=%s, from=%s", awsRegion, fromEmail)
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)
	return newEmailService(sesv2.NewFromConfig(cfg), fromEmail, fromName, appBaseURL, debug, m), nil
}

func newEmailService(client sesAPI, fromEmail, fromName, appBaseURL string, debug bool, m *metrics.Metrics) *EmailService {
	return &EmailService{
		client:     client,
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
		debug:      debug,
		metrics:    m,
	}
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

const emailLayout = `
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #4F46E5; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.button { display: inline-block; padding: 12px 30px; background-color: #4F46E5; color: white; text-decoration: none; border-radius: 5px; margin: 20px 0; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>%s</h1>
		</div>
		<div class="content">
			%s
			<p style="text-align: center;">
				<a href="%s" class="button">%s</a>
			</p>
		</div>
		<div class="footer">
			<p>This is an automated email from GrowTrack. Please do not reply.</p>
		</div>
	</div>
</body>
</html>
`

const textFooter = `
---
This is an automated email from GrowTrack. Please do not reply.
`

// SendWelcomeEmail sends a welcome email to new users
func (s *EmailService) SendWelcomeEmail(ctx context.Context, toEmail, toName string) error {
	if !s.IsEnabled() {
		log.Printf("Skipping email send (service disabled): welcome to %s", toEmail)
		s.metrics.ObserveEmail("welcome", "skipped")
		return nil
	}

	link := s.appBaseURL + "/login"
	subject := "Welcome to GrowTrack!"
	htmlBody := fmt.Sprintf(emailLayout, "Welcome to GrowTrack!", fmt.Sprintf(`
			<p>Hi %s,</p>
			<p>Thank you for creating your GrowTrack account! Here's what you can do next:</p>
			<ul>
				<li>Add your children's profiles</li>
				<li>Track developmental milestones</li>
				<li>Plan appointments on a shared family calendar</li>
				<li>Read articles for your child's age</li>
			</ul>`, html.EscapeString(toName)), link, "Get Started")

	textBody := fmt.Sprintf(`Hi %s,

Thank you for creating your GrowTrack account! Here's what you can do next:
- Add your children's profiles
- Track developmental milestones
- Plan appointments on a shared family calendar
- Read articles for your child's age

Get started: %s
`, toName, link) + textFooter

	return s.send(ctx, "welcome", toEmail, subject, htmlBody, textBody)
}

// SendCalendarShareEmail tells a user that a calendar was shared with them
func (s *EmailService) SendCalendarShareEmail(ctx context.Context, toEmail, toName, ownerName, calendarName string) error {
	if !s.IsEnabled() {
		log.Printf("Skipping email send (service disabled): calendar share to %s", toEmail)
		s.metrics.ObserveEmail("calendar_share", "skipped")
		return nil
	}

	link := s.appBaseURL + "/calendar"
	subject := fmt.Sprintf("%s shared a calendar with you", ownerName)
	htmlBody := fmt.Sprintf(emailLayout, "A calendar was shared with you", fmt.Sprintf(`
			<p>Hi %s,</p>
			<p>%s shared the calendar <strong>%s</strong> with you on GrowTrack.</p>`,
		html.EscapeString(toName), html.EscapeString(ownerName), html.EscapeString(calendarName)), link, "Open Calendar")

	textBody := fmt.Sprintf(`Hi %s,

%s shared the calendar "%s" with you on GrowTrack.

Open it: %s
`, toName, ownerName, calendarName, link) + textFooter

	return s.send(ctx, "calendar_share", toEmail, subject, htmlBody, textBody)
}

// send sends an email using Amazon SES
func (s *EmailService) send(ctx context.Context, kind, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	if s.debug {
		log.Printf("[DEBUG] Sending %s email: from=%s, to=%s, subject=%s", kind, fromAddress, toEmail, subject)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		s.metrics.ObserveEmail(kind, "failed")
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	if s.debug && result.MessageId != nil {
		log.Printf("[DEBUG] Message ID: %s", *result.MessageId)
	}

	s.metrics.ObserveEmail(kind, "sent")
	log.Printf("Email sent successfully: to=%s, subject=%s", toEmail, subject)
	return nil
}
