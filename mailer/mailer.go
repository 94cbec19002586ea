package mailer

import (
	"fmt"
	"log"
	"os"

	"github.com/matcornic/hermes/v2"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendResetPassword mails a password-reset link. The HTML body is produced
// with hermes and delivered through SendGrid; APP_URL is the frontend that
// hosts the reset form.
func SendResetPassword(toEmail, token string) error {
	appURL := os.Getenv("APP_URL")
	if appURL == "" {
		appURL = "http://localhost:8080"
	}

	h := hermes.Hermes{
		Product: hermes.Product{
			Name: "Postline",
			Link: appURL,
		},
	}

	email := hermes.Email{
		Body: hermes.Body{
			Intros: []string{
				"You requested a password reset for your Postline account.",
			},
			Actions: []hermes.Action{
				{
					Instructions: "Click the button below to choose a new password:",
					Button: hermes.Button{
						Text: "Reset your password",
						Link: fmt.Sprintf("%s/auth/password/reset?token=%s", appURL, token),
					},
				},
			},
			Outros: []string{
				"If you did not request a password reset, no action is required.",
			},
		},
	}

	emailBody, err := h.GenerateHTML(email)
	if err != nil {
		return err
	}

	from := mail.NewEmail("Postline", os.Getenv("MAIL_FROM"))
	to := mail.NewEmail(toEmail, toEmail)
	message := mail.NewSingleEmail(from, "Reset your password", to, "", emailBody)

	client := sendgrid.NewSendClient(os.Getenv("SENDGRID_API_KEY"))
	response, err := client.Send(message)
	if err != nil {
		return err
	}
	if response.StatusCode >= 400 {
		log.Printf("sendgrid returned %d: %s", response.StatusCode, response.Body)
		return fmt.Errorf("could not send reset email")
	}
	return nil
}
