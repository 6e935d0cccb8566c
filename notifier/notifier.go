// Package notifier delivers composed messages to single recipients. Each
// send is isolated, a failed delivery is reported to the caller and must
// never abort deliveries to the remaining recipients of the same run.
package notifier

// Notifier sends one composed message to one recipient.
type Notifier interface {
	Notify(recipient string, subject string, htmlBody string, textBody string) error
}
