package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gregdel/pushover"
	"github.com/sirupsen/logrus"
)

// maxPushoverFiles is the number of files listed in a message.
const maxPushoverFiles = 10

var ErrNoPushoverToken = errors.New("no pushover token found")

type sender interface {
	SendMessage(*pushover.Message, *pushover.Recipient) (*pushover.Response, error)
}

// Pushover sends a message to all recipients for each change.
type Pushover struct {
	Recipients []string

	app sender
	log logrus.FieldLogger
}

// NewPushover returns a reporter sending messages with the app token.
func NewPushover(token string, recipients []string) *Pushover {
	return &Pushover{
		Recipients: recipients,
		app:        pushover.New(token),
		log:        logrus.StandardLogger().WithField("component", "pushover"),
	}
}

// PushoverFromEnv reads the token and the comma separated recipients from
// CHANGEWATCH_PUSHOVER_TOKEN and CHANGEWATCH_PUSHOVER_RECIPIENTS.
func PushoverFromEnv() (*Pushover, error) {
	token := os.Getenv("CHANGEWATCH_PUSHOVER_TOKEN")
	if token == "" {
		return nil, ErrNoPushoverToken
	}

	var recipients []string

	for _, r := range strings.Split(os.Getenv("CHANGEWATCH_PUSHOVER_RECIPIENTS"), ",") {
		r = strings.TrimSpace(r)
		if r != "" {
			recipients = append(recipients, r)
		}
	}

	if len(recipients) == 0 {
		return nil, fmt.Errorf("no recipients found")
	}

	return NewPushover(token, recipients), nil
}

// SetLogger updates the logger to use.
func (p *Pushover) SetLogger(logger logrus.FieldLogger) {
	p.log = logger.WithField("component", "pushover")
}

func message(c Change) *pushover.Message {
	var lines []string

	add := func(prefix string, files []string) {
		for _, file := range files {
			lines = append(lines, prefix+" "+file)
		}
	}

	add("modified", c.Modified)
	add("deleted", c.Deleted)

	total := len(lines)
	if total > maxPushoverFiles {
		lines = append(lines[:maxPushoverFiles], fmt.Sprintf("and %d more", total-maxPushoverFiles))
	}

	title := fmt.Sprintf("%d files changed", total)
	if total == 1 {
		title = "1 file changed"
	}

	return pushover.NewMessageWithTitle(strings.Join(lines, "\n"), title)
}

// Report sends c to all recipients. The first error is returned after all
// recipients have been tried.
func (p *Pushover) Report(_ context.Context, c Change) error {
	if c.Empty() {
		return nil
	}

	msg := message(c)

	var firstError error

	for _, r := range p.Recipients {
		response, err := p.app.SendMessage(msg, pushover.NewRecipient(r))
		if err != nil {
			p.log.Warnf("unable to send message: %v", err)

			if firstError == nil {
				firstError = fmt.Errorf("send message: %w", err)
			}

			continue
		}

		p.log.Debugf("response from pushover: %v", response)
	}

	return firstError
}
