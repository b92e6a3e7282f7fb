package mailer

// Service sends a single email and returns a provider message ID when one
// exists.
type Service interface {
	Send(toEmail, toName, subject, text, html string) (string, error)
}
