package notifier

import (
	"sync"

	"github.com/pkg/errors"
)

// SentMessage is one recorded Notify call.
type SentMessage struct {
	Recipient string
	Subject   string
	HtmlBody  string
	TextBody  string
}

// FakeNotifier records every Notify call and can be scripted to fail for
// specific recipients or specific call indexes. Safe for concurrent use.
type FakeNotifier struct {
	m sync.Mutex

	Sent []SentMessage

	// Fail delivery whenever the recipient is in this set.
	FailRecipients map[string]bool

	// Fail delivery for the i-th call (0 based), checked before recording.
	FailCallIndexes map[int]bool

	calls int
}

func NewFakeNotifier() *FakeNotifier {
	return &FakeNotifier{
		FailRecipients:  map[string]bool{},
		FailCallIndexes: map[int]bool{},
	}
}

func (f *FakeNotifier) Notify(recipient string, subject string, htmlBody string, textBody string) error {
	f.m.Lock()
	defer f.m.Unlock()

	idx := f.calls
	f.calls++

	if f.FailRecipients[recipient] || f.FailCallIndexes[idx] {
		return errors.Errorf("scripted delivery failure for %s", recipient)
	}

	f.Sent = append(f.Sent, SentMessage{
		Recipient: recipient,
		Subject:   subject,
		HtmlBody:  htmlBody,
		TextBody:  textBody,
	})
	return nil
}

// Calls returns how many Notify attempts were made, including failed ones.
func (f *FakeNotifier) Calls() int {
	f.m.Lock()
	defer f.m.Unlock()
	return f.calls
}
