package dispatcher

import (
	"bytes"
	"html/template"
	texttemplate "text/template"

	"github.com/Luismorlan/newsportal/model"
)

type newPostEmailData struct {
	SubscriberName string
	CategoryName   string
	Title          string
	Preview        string
	URL            string
}

var newPostHTMLTemplate = template.Must(template.New("new_post_html").Parse(`<html>
<body>
  <p>Hello {{.SubscriberName}},</p>
  <p>A new post just landed in <b>{{.CategoryName}}</b>:</p>
  <p><a href="{{.URL}}">{{.Title}}</a></p>
  <p>{{.Preview}}</p>
  <p>This is an automated message, please do not reply.</p>
</body>
</html>
`))

var newPostTextTemplate = texttemplate.Must(texttemplate.New("new_post_text").Parse(`Hello {{.SubscriberName}},

A new post just landed in {{.CategoryName}}:
{{.Title}}

{{.Preview}}

Read the full post: {{.URL}}

This is an automated message, please do not reply.
`))

func renderNewPostEmail(subscriber *model.User, category *model.Category, post *model.Post, url string) (htmlBody string, textBody string, err error) {
	data := newPostEmailData{
		SubscriberName: subscriber.Name,
		CategoryName:   category.Name,
		Title:          post.Title,
		Preview:        post.ShortPreview(),
		URL:            url,
	}

	var htmlBuf bytes.Buffer
	if err := newPostHTMLTemplate.Execute(&htmlBuf, data); err != nil {
		return "", "", err
	}
	var textBuf bytes.Buffer
	if err := newPostTextTemplate.Execute(&textBuf, data); err != nil {
		return "", "", err
	}
	return htmlBuf.String(), textBuf.String(), nil
}
