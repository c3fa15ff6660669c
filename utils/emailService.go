package utils

import (
	"erudio/config"
	"fmt"
	"log"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendEmail delivers one HTML email through SendGrid. Failures are returned
// to the caller (the event dispatcher) which logs and retries; they are
// never surfaced to a request that already committed its mutation.
func SendEmail(to []string, subject string, htmlBody string) error {
	from := mail.NewEmail("Erudio", config.AppConfig.EmailSender)

	message := mail.NewV3Mail()
	message.SetFrom(from)
	message.Subject = subject
	message.AddContent(mail.NewContent("text/html", htmlBody))

	personalization := mail.NewPersonalization()
	for _, addr := range to {
		personalization.AddTos(mail.NewEmail("", addr))
	}
	message.AddPersonalizations(personalization)

	client := sendgrid.NewSendClient(config.AppConfig.SendGridApiKey)
	resp, err := client.Send(message)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned %d: %s", resp.StatusCode, resp.Body)
	}

	log.Printf("[MAILER] Sent %q to %v", subject, to)
	return nil
}

// HTML wrapper shared by all outgoing mail
func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; box-shadow: 0 4px 15px rgba(0,0,0,0.05); }
			.header { background-color: #1D2A4D; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1D2A4D; line-height: 1.6; }
			.content h2 { color: #1D2A4D; margin-top: 0; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; border-top: 1px solid #E0E0E0; }
			.btn { display: inline-block; padding: 12px 24px; background-color: #3B82F6; color: #FFFFFF; text-decoration: none; border-radius: 4px; font-weight: bold; margin-top: 20px; }
			.info-box { background: #E8F0FE; padding: 15px; border-radius: 4px; border-left: 4px solid #3B82F6; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>ERUDIO</h1>
			</div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">
				&copy; 2026 Erudio. All rights reserved.
			</div>
		</div>
	</body>
	</html>
	`, title, bodyContent)
}

// --- Message builders ---
// Builders return (subject, html); delivery happens in the event dispatcher.

func VerificationEmail(name, verificationURL string) (string, string) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Welcome to <strong>Erudio</strong>! Click the button below to activate your account.</p>
		<a href="%s" class="btn">Verify Email</a>
		<p>The link expires in 24 hours.</p>
	`, name, verificationURL)
	return "Activate Your Erudio Account", getEmailTemplate("Verify Your Email", body)
}

func EnrollmentEmail(name, courseTitle string) (string, string) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>You are now enrolled in <strong>%s</strong>.</p>
		<div class="info-box">
			<strong>Next Steps:</strong> Head to your dashboard and start with the first lesson.
		</div>
	`, name, courseTitle)
	return "Enrollment Confirmed: " + courseTitle, getEmailTemplate("Enrollment Successful", body)
}

func CourseCompletedEmail(name, courseTitle string) (string, string) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Congratulations! You have completed <strong>%s</strong>.</p>
		<p>Browse the catalog to pick your next course.</p>
	`, name, courseTitle)
	return "Course Completed: " + courseTitle, getEmailTemplate("Congratulations!", body)
}

func TeamActivatedEmail(name, planName string) (string, string) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your team subscription on the <strong>%s</strong> plan is now active.</p>
		<p>Every member of your roster has been granted access.</p>
	`, name, planName)
	return "Team Subscription Active: " + planName, getEmailTemplate("Subscription Active", body)
}

func MemberAccessEmail(name, planName string) (string, string) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your team's <strong>%s</strong> subscription is active and your learning access has been enabled.</p>
	`, name, planName)
	return "Your Team Access Is Active", getEmailTemplate("Access Enabled", body)
}

func InviteEmail(teamName, inviteURL string) (string, string) {
	body := fmt.Sprintf(`
		<p>Hello,</p>
		<p>You have been invited to join <strong>%s</strong> on Erudio.</p>
		<p>Set your password to get started:</p>
		<a href="%s" class="btn">Set Password</a>
	`, teamName, inviteURL)
	return "You Have Been Invited to " + teamName, getEmailTemplate("Team Invitation", body)
}

func PaymentFailedEmail(name, reason string) (string, string) {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>We could not confirm your recent payment.</p>
		<div class="info-box">Reason: %s</div>
		<p>Please try again from the course page. If you were debited, contact support.</p>
	`, name, reason)
	return "Payment Verification Failed", getEmailTemplate("Payment Failed", body)
}
