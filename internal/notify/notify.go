// Package notify builds the position notification and delivers it by mail,
// degrading to standard output when transport fails. The stdout fallback is
// a first-class delivery channel, not an afterthought: a valid scrape-and-
// diff result is never discarded for a transport-layer problem.
package notify

import (
	"fmt"
	"io"
	"log"

	"github.com/jonathan/waitlist-monitor/internal/waitlist"
)

// NoPreviousRecord is the literal body text used on the first-ever run.
const NoPreviousRecord = "No previous record"

// Outcome reports how a notification reached the operator.
type Outcome int

const (
	// OutcomeSent means the mail transport accepted the message.
	OutcomeSent Outcome = iota
	// OutcomeFallback means the message was written to the fallback
	// channel after the transport failed or was not configured.
	OutcomeFallback
)

func (o Outcome) String() string {
	if o == OutcomeSent {
		return "sent"
	}
	return "fallback"
}

// Payload is a fully rendered notification, reconstructible from a
// snapshot pair; it is never persisted.
type Payload struct {
	Subject string
	Body    string
}

// Mailer delivers a rendered notification. Implementations report any
// transport failure (connection, auth, TLS) as an error.
type Mailer interface {
	Send(subject, body string) error
}

// BuildPayload renders the position notification for one cycle. previous
// is nil on the first-ever run.
func BuildPayload(previous *waitlist.Snapshot, current waitlist.Snapshot, targetKey, checkedAt, subjectPrefix string) Payload {
	previousLine := NoPreviousRecord
	if previous != nil {
		previousLine = fmt.Sprintf("%d/%d", previous.Position, previous.Total)
	}

	body := fmt.Sprintf(
		"Your current waiting list position is:\n%d/%d\n\n"+
			"Your last position was:\n%s\n\n"+
			"You joined the waitlist on:\n%s\n\n"+
			"Max Prefix: /%d | Min Prefix: /%d\n\n"+
			"Time Checked:\n%s\n",
		current.Position, current.Total,
		previousLine,
		targetKey,
		current.MaxPrefix, current.MinPrefix,
		checkedAt,
	)

	return Payload{
		Subject: withPrefix(subjectPrefix, fmt.Sprintf("Position: %d/%d", current.Position, current.Total)),
		Body:    body,
	}
}

// BuildNotFoundPayload renders the notification sent when the target row
// is absent from the table.
func BuildNotFoundPayload(targetKey string, rowsParsed int, checkedAt, subjectPrefix string) Payload {
	body := fmt.Sprintf(
		"Could not find your entry in the waiting list table.\n\n"+
			"Target key:\n%s\n\n"+
			"Rows parsed:\n%d\n\n"+
			"Time Checked:\n%s\n",
		targetKey, rowsParsed, checkedAt,
	)
	return Payload{Subject: withPrefix(subjectPrefix, "NOT FOUND"), Body: body}
}

// BuildErrorPayload renders the courtesy notification for a fatal cycle
// error.
func BuildErrorPayload(cycleErr error, checkedAt, subjectPrefix string) Payload {
	body := fmt.Sprintf(
		"Error while checking the waiting list:\n%v\n\n"+
			"Time Checked:\n%s\n",
		cycleErr, checkedAt,
	)
	return Payload{Subject: withPrefix(subjectPrefix, "ERROR"), Body: body}
}

func withPrefix(prefix, subject string) string {
	if prefix == "" {
		return subject
	}
	return prefix + " " + subject
}

// Deliver attempts mail delivery once, then degrades to writing the full
// notification text to out. A nil mailer skips the network attempt
// entirely (transport not configured). An error is returned only when the
// fallback write itself fails; a plain transport failure is a fallback
// outcome, not an error, because the result is still delivered.
func Deliver(p Payload, mailer Mailer, out io.Writer) (Outcome, error) {
	if mailer == nil {
		log.Printf("[MAIL] transport not configured; printing notification instead")
	} else if err := mailer.Send(p.Subject, p.Body); err != nil {
		log.Printf("[MAIL] send failed: %v; printing notification instead", err)
	} else {
		return OutcomeSent, nil
	}

	if _, err := fmt.Fprintf(out, "Subject: %s\n%s", p.Subject, p.Body); err != nil {
		return OutcomeFallback, fmt.Errorf("fallback output write failed: %w", err)
	}
	return OutcomeFallback, nil
}
