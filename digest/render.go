package digest

import (
	"bytes"
	"html/template"
	texttemplate "text/template"
	"time"

	"github.com/Luismorlan/newsportal/model"
)

type digestEmailData struct {
	SubscriberName string
	CategoryName   string
	Entries        []RenderedEntry
	WindowStart    time.Time
}

var digestHTMLTemplate = template.Must(template.New("digest_html").Parse(`<html>
<body>
  <p>Hello {{.SubscriberName}},</p>
  <p>New posts in <b>{{.CategoryName}}</b> since {{.WindowStart.Format "Jan 2, 2006"}}:</p>
  <ul>
  {{range .Entries}}
    <li>
      <a href="{{.URL}}">{{.Title}}</a>
      by {{.AuthorName}} on {{.CreatedAt.Format "Jan 2, 2006 15:04"}}<br>
      {{.Preview}}
    </li>
  {{end}}
  </ul>
  <p>This is an automated message, please do not reply.</p>
</body>
</html>
`))

var digestTextTemplate = texttemplate.Must(texttemplate.New("digest_text").Parse(`Hello {{.SubscriberName}},

New posts in {{.CategoryName}} since {{.WindowStart.Format "Jan 2, 2006"}}:
{{range .Entries}}
- {{.Title}} by {{.AuthorName}} on {{.CreatedAt.Format "Jan 2, 2006 15:04"}}
  {{.Preview}}
  {{.URL}}
{{end}}
This is an automated message, please do not reply.
`))

// RenderDigestEmail renders the html and plain-text bodies of one digest
// email for one subscriber.
func RenderDigestEmail(subscriber *model.User, category *model.Category, entries []RenderedEntry, windowStart time.Time) (htmlBody string, textBody string, err error) {
	data := digestEmailData{
		SubscriberName: subscriber.Name,
		CategoryName:   category.Name,
		Entries:        entries,
		WindowStart:    windowStart,
	}

	var htmlBuf bytes.Buffer
	if err := digestHTMLTemplate.Execute(&htmlBuf, data); err != nil {
		return "", "", err
	}
	var textBuf bytes.Buffer
	if err := digestTextTemplate.Execute(&textBuf, data); err != nil {
		return "", "", err
	}
	return htmlBuf.String(), textBuf.String(), nil
}
