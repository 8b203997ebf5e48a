package email

import (
	"context"
	"fmt"
	"html"

	"github.com/monikerhq/moniker/internal/domain"
	"github.com/monikerhq/moniker/internal/event"
)

// Mailer turns auth events into delivered links. It subscribes to the
// bus instead of being called from the usecases, so link delivery stays
// a side effect the core flow never waits on for correctness.
type Mailer struct {
	sender Sender
	base   string
}

func NewMailer(sender Sender, linkBaseURL string) *Mailer {
	return &Mailer{sender: sender, base: linkBaseURL}
}

// Register subscribes the mailer's handlers on the bus.
func (m *Mailer) Register(bus *event.Bus) {
	bus.Subscribe(domain.AuthenticationLinkWasRequested{}.EventName(), m.sendLoginLink)
	bus.Subscribe(domain.UserRegistered{}.EventName(), m.sendActivationLink)
}

func (m *Mailer) sendLoginLink(ctx context.Context, e domain.Event) error {
	ev, ok := e.(domain.AuthenticationLinkWasRequested)
	if !ok {
		return fmt.Errorf("unexpected event %T", e)
	}

	// The moniker is user input; tokens are hex and need no escaping.
	link := m.base + "/login/" + ev.Token
	body := fmt.Sprintf(
		`<p>Hi %s,</p><p>Click the link below to sign in (it expires in a few minutes and works once):</p><p><a href="%s">%s</a></p>`,
		html.EscapeString(ev.User.Moniker), link, link,
	)
	return m.sender.Send(ctx, ev.User.Email, "Your sign-in link", body)
}

func (m *Mailer) sendActivationLink(ctx context.Context, e domain.Event) error {
	ev, ok := e.(domain.UserRegistered)
	if !ok {
		return fmt.Errorf("unexpected event %T", e)
	}

	link := m.base + "/account/activate/" + ev.Token
	body := fmt.Sprintf(
		`<p>Welcome, %s!</p><p>Activate your account by following this link:</p><p><a href="%s">%s</a></p>`,
		html.EscapeString(ev.User.Moniker), link, link,
	)
	return m.sender.Send(ctx, ev.User.Email, "Activate your account", body)
}
