package digest

import (
	"fmt"
	"io"
	"time"

	"github.com/Luismorlan/newsportal/model"
	"github.com/Luismorlan/newsportal/notifier"
	. "github.com/Luismorlan/newsportal/utils/log"
)

// CategorySource is the category-store collaborator the pipeline walks.
type CategorySource interface {
	AllCategories() ([]*model.Category, error)
	SubscribersOf(categoryID string) ([]*model.User, error)
}

// Pipeline runs one full digest pass: for every category, compose the
// window summary and fan it out to subscribers. Per-recipient delivery
// failures are logged and skipped, they never abort the rest of the run.
type Pipeline struct {
	Categories CategorySource
	Composer   *Composer
	Notifier   notifier.Notifier

	// Human readable progress lines are written here (stdout for the
	// operator command, a logger writer for the scheduled path).
	Progress io.Writer
}

func NewPipeline(categories CategorySource, composer *Composer, n notifier.Notifier, progress io.Writer) *Pipeline {
	if progress == nil {
		progress = io.Discard
	}
	return &Pipeline{
		Categories: categories,
		Composer:   composer,
		Notifier:   n,
		Progress:   progress,
	}
}

// Run delivers the digest for all posts created at or after since, and
// returns the number of emails successfully sent. Only a failure to list
// categories is returned as an error, everything below that level is
// contained per category or per recipient.
func (p *Pipeline) Run(since time.Time) (int, error) {
	categories, err := p.Categories.AllCategories()
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, category := range categories {
		subscribers, err := p.Categories.SubscribersOf(category.Id)
		if err != nil {
			Log.Errorf("fail to load subscribers of category %s: %s", category.Name, err)
			continue
		}
		// No subscribers: skip composing entirely.
		if len(subscribers) == 0 {
			continue
		}

		entries, err := p.Composer.Compose(category, since)
		if err != nil {
			Log.Errorf("fail to compose digest for category %s: %s", category.Name, err)
			continue
		}
		// Subscribers but nothing new in the window: no empty digests.
		if len(entries) == 0 {
			continue
		}

		fmt.Fprintf(p.Progress, "%s: %d posts, %d subscribers\n", category.Name, len(entries), len(subscribers))

		subject := fmt.Sprintf("Weekly digest: new posts in %q", category.Name)
		for _, subscriber := range subscribers {
			htmlBody, textBody, err := RenderDigestEmail(subscriber, category, entries, since)
			if err != nil {
				Log.Errorf("fail to render digest for %s: %s", subscriber.Email, err)
				continue
			}
			if err := p.Notifier.Notify(subscriber.Email, subject, htmlBody, textBody); err != nil {
				Log.Errorf("fail to deliver digest to %s: %s", subscriber.Email, err)
				continue
			}
			sent++
		}
	}

	return sent, nil
}
