// Package mail delivers notification email over SMTP.
package mail

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"
	"gorm.io/gorm"

	"scorevo/internal/models"
	"scorevo/internal/service"
)

// Config holds SMTP and link-building settings.
type Config struct {
	Host        string
	Port        int
	User        string
	Password    string
	From        string
	FrontendURL string
}

// Mailer implements service.Notifier over SMTP. It resolves display data
// from the store so callers only hand it ids.
type Mailer struct {
	dialer *gomail.Dialer
	db     *gorm.DB
	cfg    Config
}

// New returns a Mailer for the given SMTP settings.
func New(cfg Config, database *gorm.DB) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		db:     database,
		cfg:    cfg,
	}
}

// SendInvitation mails an invitation link. Unregistered addresses get a
// register-then-join link instead of a direct accept link.
func (m *Mailer) SendInvitation(_ context.Context, mail service.InvitationMail) error {
	var link string
	if mail.ExistingUser {
		link = fmt.Sprintf("%s/invitations/accept/%s", m.cfg.FrontendURL, mail.Token)
	} else {
		link = fmt.Sprintf("%s/auth/register?invitation=%s", m.cfg.FrontendURL, mail.Token)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", mail.Email)
	msg.SetHeader("Subject", fmt.Sprintf("%s invited you to %s on Scorevo", mail.InviterName, mail.ActivityName))
	msg.SetBody("text/html", fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: auto; padding: 20px;">
			<h2>You have been invited to %s</h2>
			<p>%s invited you to join the activity <strong>%s</strong> on Scorevo.</p>
			<p><a href="%s" style="display: inline-block; padding: 10px 20px; background-color: #007bff; color: #fff; text-decoration: none; border-radius: 5px;">Join activity</a></p>
			<p>This invitation expires in 7 days.</p>
		</div>
	`, mail.ActivityName, mail.InviterName, mail.ActivityName, link))

	return m.dialer.DialAndSend(msg)
}

// SendScoreChange mails a points update to the affected participant.
func (m *Mailer) SendScoreChange(ctx context.Context, activityID, userID uuid.UUID, delta int) error {
	var user models.User
	if err := m.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return fmt.Errorf("resolve user %s: %w", userID, err)
	}
	var activity models.Activity
	if err := m.db.WithContext(ctx).First(&activity, "id = ?", activityID).Error; err != nil {
		return fmt.Errorf("resolve activity %s: %w", activityID, err)
	}

	verb := "gained"
	points := delta
	if delta < 0 {
		verb = "lost"
		points = -delta
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", user.Email)
	msg.SetHeader("Subject", fmt.Sprintf("Score update in %s", activity.Name))
	msg.SetBody("text/html", fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: auto; padding: 20px;">
			<p>Hi %s,</p>
			<p>You %s <strong>%d</strong> point(s) in <strong>%s</strong>.</p>
			<p><a href="%s/activities/%s">View the activity</a></p>
		</div>
	`, user.DisplayName, verb, points, activity.Name, m.cfg.FrontendURL, activity.ID))

	return m.dialer.DialAndSend(msg)
}
