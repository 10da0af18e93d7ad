package service

import (
	"bytes"
	"context"
	"fmt"
	htmltemplate "html/template"
	"log"
	"text/template"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// sesAPI is the part of the SES client the email service uses
type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailService sends caregiver report summaries via Amazon SES
type EmailService struct {
	client    sesAPI
	fromEmail string
	fromName  string
	enabled   bool
	debug     bool
}

// NewEmailService creates a new email service. An empty fromEmail yields a
// disabled service that logs and skips every send.
func NewEmailService(ctx context.Context, awsRegion, fromEmail, fromName string, debug bool) (*EmailService, error) {
	if fromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false, debug: debug}, nil
	}

	if debug {
		log.Printf("[DEBUG] Initializing email service with AWS SES: region=%s from=%s", awsRegion, fromEmail)
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)

	return newEmailService(sesv2.NewFromConfig(cfg), fromEmail, fromName, debug), nil
}

func newEmailService(client sesAPI, fromEmail, fromName string, debug bool) *EmailService {
	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		fromName:  fromName,
		enabled:   true,
		debug:     debug,
	}
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendReport emails a summary of a child's report
func (s *EmailService) SendReport(ctx context.Context, toEmail string, report *Report) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): report for %s to %s", report.Child.Name, toEmail)
		return nil
	}

	subject := fmt.Sprintf("Screening report for %s", report.Child.Name)

	textBody, err := renderTextReport(report)
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	htmlBody, err := renderHTMLReport(report)
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	if s.debug {
		log.Printf("[DEBUG] Sending report email: subject=%s, to=%s, html=%d bytes, text=%d bytes",
			subject, toEmail, len(htmlBody), len(textBody))
	}

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
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
		log.Printf("Failed to send email to %s: %v", toEmail, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	if s.debug && result.MessageId != nil {
		log.Printf("[DEBUG] Email sent: message_id=%s", *result.MessageId)
	}
	log.Printf("Email sent successfully to %s", toEmail)
	return nil
}

var reportFuncs = map[string]interface{}{
	"f1": func(v float64) string { return fmt.Sprintf("%.1f", v) },
	"f2": func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"pct": func(v float64) string { return fmt.Sprintf("%.1f%%", v*100) },
}

const textReportTemplate = `Screening report for {{.Child.Name}}
{{if .Child.Age}}Age: {{.Child.Age}}
{{end}}
Total plays: {{.TotalPlays}}
Average score: {{.AverageScore}}
{{range .Games}}
{{.Display}}: {{.Attempts}} attempts, best score {{f1 .BestScore}}{{if .LatestRisk}}, recent risk {{f2 (deref .LatestRisk)}}{{end}}{{end}}
{{with .History.ADHD}}
ADHD screening summary
  Omission rate: {{pct .Omission}}
  Commission rate: {{pct .Commission}}
  Composite score: {{f2 .CompositeScore}}
  Flags triggered: {{.Flags}} / 3. {{.Verdict}}
{{end}}{{with .History.Emotion}}
Emotion Detector: {{.RiskLevel}}
{{end}}{{with .History.LetterSound}}
Letter Sound: score {{f2 .Score}}{{if .FlagDyslexia}} (flagged for follow-up){{end}}
{{end}}{{with .History.Anxiety}}
Emotion Adventure: {{.Feedback}}
{{end}}{{with .History.ColorVision}}
Color Spotter: {{.Flagged}} of {{.Screened}} screens flagged
{{end}}{{if .RemoteUnavailable}}
Some sessions could not be loaded; this report may be incomplete.
{{end}}
---
This is an automated email. Please do not reply.
`

const htmlReportTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; color: #333;">
<h1>Screening report for {{.Child.Name}}</h1>
{{if .Child.Age}}<p>Age: {{.Child.Age}}</p>{{end}}
<p>Total plays: {{.TotalPlays}}<br>Average score: {{.AverageScore}}</p>
{{if .Games}}<table border="1" cellpadding="4" cellspacing="0">
<tr><th>Game</th><th>Attempts</th><th>Best score</th><th>Recent risk</th></tr>
{{range .Games}}<tr><td>{{.Display}}</td><td>{{.Attempts}}</td><td>{{f1 .BestScore}}</td><td>{{if .LatestRisk}}{{f2 (deref .LatestRisk)}}{{else}}—{{end}}</td></tr>
{{end}}</table>{{end}}
{{with .History.ADHD}}<h2>ADHD screening summary</h2>
<p>Omission rate: {{pct .Omission}}<br>Commission rate: {{pct .Commission}}<br>Composite score: {{f2 .CompositeScore}}<br>Flags triggered: {{.Flags}} / 3. {{.Verdict}}</p>{{end}}
{{with .History.Emotion}}<p>Emotion Detector: {{.RiskLevel}}</p>{{end}}
{{with .History.LetterSound}}<p>Letter Sound: score {{f2 .Score}}{{if .FlagDyslexia}} (flagged for follow-up){{end}}</p>{{end}}
{{with .History.Anxiety}}<p>Emotion Adventure: {{.Feedback}}</p>{{end}}
{{with .History.ColorVision}}<p>Color Spotter: {{.Flagged}} of {{.Screened}} screens flagged</p>{{end}}
{{if .RemoteUnavailable}}<p><em>Some sessions could not be loaded; this report may be incomplete.</em></p>{{end}}
<p style="font-size: 12px; color: #666;">This is an automated email. Please do not reply.</p>
</body>
</html>
`

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

var (
	textReport = template.Must(template.New("report.txt").Funcs(reportFuncs).Funcs(template.FuncMap{"deref": deref}).Parse(textReportTemplate))
	htmlReport = htmltemplate.Must(htmltemplate.New("report.html").Funcs(reportFuncs).Funcs(htmltemplate.FuncMap{"deref": deref}).Parse(htmlReportTemplate))
)

func renderTextReport(report *Report) (string, error) {
	var buf bytes.Buffer
	if err := textReport.Execute(&buf, report); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderHTMLReport(report *Report) (string, error) {
	var buf bytes.Buffer
	if err := htmlReport.Execute(&buf, report); err != nil {
		return "", err
	}
	return buf.String(), nil
}
