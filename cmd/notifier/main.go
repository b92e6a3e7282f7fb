// The notifier consumes reservation events off NATS and sends the
// corresponding emails. It runs separately from the web server so a slow or
// failing email provider never holds up a booking.
package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/casamarela/innkeeper/internal/platform/mailer"
	"github.com/casamarela/innkeeper/pkg/auth"
	"github.com/casamarela/innkeeper/pkg/config"
	"github.com/casamarela/innkeeper/pkg/events"
	"github.com/casamarela/innkeeper/pkg/logger"
)

const queueGroup = "notifier"

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	bus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer bus.Close()

	mail := newMailer(cfg)

	err = bus.QueueSubscribe(events.ReservationCreated, queueGroup, func(msg *events.Message) {
		handleReservationCreated(cfg, mail, msg)
	})
	if err != nil {
		logger.Error("Failed to subscribe to reservation events", "error", err)
		os.Exit(1)
	}

	err = bus.QueueSubscribe(events.GuestRegistered, queueGroup, func(msg *events.Message) {
		handleGuestRegistered(cfg, mail, msg)
	})
	if err != nil {
		logger.Error("Failed to subscribe to registration events", "error", err)
		os.Exit(1)
	}

	logger.Info("Notifier started", "nats_url", cfg.NATS.URL, "dev_mode", cfg.Email.DevMode)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logger.Info("Shutting down notifier...")
}

func newMailer(cfg *config.Config) mailer.Service {
	switch {
	case cfg.Email.DevMode:
		return mailer.NewDevMailer()
	case cfg.Email.MailerSendKey != "":
		return mailer.NewMailerSend(cfg.Email.MailerSendKey, cfg.Email.FromName, cfg.Email.FromEmail)
	default:
		return mailer.NewSMTPMailer(
			cfg.Email.SMTPHost, cfg.Email.SMTPPort,
			cfg.Email.SMTPFrom, cfg.Email.SMTPUser, cfg.Email.SMTPPass,
			cfg.Email.SMTPUseTLS,
		)
	}
}

func handleReservationCreated(cfg *config.Config, mail mailer.Service, msg *events.Message) {
	var ev events.ReservationCreatedEvent
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		logger.Error("Failed to decode reservation event", "error", err)
		return
	}

	manageURL, err := manageLink(cfg, ev.GuestEmail, ev.ReservationCode)
	if err != nil {
		logger.Error("Failed to build manage link", "error", err, "reservation_code", ev.ReservationCode)
		return
	}

	subject := fmt.Sprintf("Reservation %s confirmed", ev.ReservationCode)

	text := fmt.Sprintf(
		"Hello %s,\n\n"+
			"Your reservation at %s is confirmed.\n\n"+
			"Confirmation code: %s\n"+
			"Room: %s\n"+
			"Check-in: %s\n"+
			"Check-out: %s\n"+
			"Nights: %d\n"+
			"Guests: %d\n"+
			"Total: %s (%s)\n\n"+
			"View or manage your reservation: %s\n",
		ev.GuestName, cfg.App.Name, ev.ReservationCode, ev.RoomName,
		ev.CheckIn.Format("Jan 2, 2006"), ev.CheckOut.Format("Jan 2, 2006"),
		ev.Nights, ev.GuestCount, money(ev.TotalCents), ev.PaymentMethod, manageURL,
	)

	html := fmt.Sprintf(
		`<h2>Your reservation is confirmed</h2>
<p>Hello %s, thank you for booking with %s.</p>
<table>
<tr><td>Confirmation code</td><td><strong>%s</strong></td></tr>
<tr><td>Room</td><td>%s</td></tr>
<tr><td>Check-in</td><td>%s</td></tr>
<tr><td>Check-out</td><td>%s</td></tr>
<tr><td>Nights</td><td>%d</td></tr>
<tr><td>Guests</td><td>%d</td></tr>
<tr><td>Total</td><td>%s (%s)</td></tr>
</table>
<p><a href="%s">View or manage your reservation</a></p>`,
		ev.GuestName, cfg.App.Name, ev.ReservationCode, ev.RoomName,
		ev.CheckIn.Format("Jan 2, 2006"), ev.CheckOut.Format("Jan 2, 2006"),
		ev.Nights, ev.GuestCount, money(ev.TotalCents), ev.PaymentMethod, manageURL,
	)

	msgID, err := mail.Send(ev.GuestEmail, ev.GuestName, subject, text, html)
	if err != nil {
		logger.Error("Failed to send confirmation email",
			"error", err, "reservation_code", ev.ReservationCode, "email", ev.GuestEmail)
		return
	}
	logger.Info("Confirmation email sent",
		"reservation_code", ev.ReservationCode, "email", ev.GuestEmail, "message_id", msgID)
}

func handleGuestRegistered(cfg *config.Config, mail mailer.Service, msg *events.Message) {
	var ev events.GuestRegisteredEvent
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		logger.Error("Failed to decode registration event", "error", err)
		return
	}

	subject := fmt.Sprintf("Welcome to %s", cfg.App.Name)
	text := fmt.Sprintf(
		"Hello %s,\n\nYour account at %s is ready. Browse our rooms and book your stay:\n%s/rooms\n",
		ev.Name, cfg.App.Name, cfg.App.BaseURL,
	)
	html := fmt.Sprintf(
		`<h2>Welcome to %s</h2><p>Hello %s, your account is ready.</p><p><a href="%s/rooms">Browse our rooms</a></p>`,
		cfg.App.Name, ev.Name, cfg.App.BaseURL,
	)

	if _, err := mail.Send(ev.Email, ev.Name, subject, text, html); err != nil {
		logger.Error("Failed to send welcome email", "error", err, "email", ev.Email)
		return
	}
	logger.Info("Welcome email sent", "email", ev.Email)
}

// manageLink builds the tokenized URL a guest can open without logging in.
func manageLink(cfg *config.Config, email, code string) (string, error) {
	token, err := auth.NewManageToken(email, code, cfg.Auth.JWTSecret, cfg.Auth.ManageLinkTTL)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/reservations/%s?token=%s", cfg.App.BaseURL, code, url.QueryEscape(token)), nil
}

func money(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
