// Package mailer renders transactional emails and delivers them through SendGrid.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	htmltmpl "html/template"
	"net/http"
	texttmpl "text/template"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	TemplateWelcome    = "welcome"
	TemplateEnrollment = "enrollment"
)

// Job is the queued form of an email, stored as JSON in pgmq.
type Job struct {
	Template string            `json:"template"`
	ToEmail  string            `json:"to_email"`
	ToName   string            `json:"to_name"`
	Data     map[string]string `json:"data"`
}

// Message is a rendered email ready to send.
type Message struct {
	ToEmail string
	ToName  string
	Subject string
	Text    string
	HTML    string
}

type template struct {
	subject *texttmpl.Template
	text    *texttmpl.Template
	html    *htmltmpl.Template
}

var templates = map[string]template{
	TemplateWelcome: {
		subject: texttmpl.Must(texttmpl.New("s").Parse(`Welcome to {{.app}}, {{.name}}!`)),
		text: texttmpl.Must(texttmpl.New("t").Parse(`Hi {{.name}},

Thanks for joining {{.app}}. Browse courses at {{.url}}/courses.
`)),
		html: htmltmpl.Must(htmltmpl.New("h").Parse(`<p>Hi {{.name}},</p>
<p>Thanks for joining {{.app}}. <a href="{{.url}}/courses">Browse courses</a>.</p>`)),
	},
	TemplateEnrollment: {
		subject: texttmpl.Must(texttmpl.New("s").Parse(`You're enrolled in {{.course}}`)),
		text: texttmpl.Must(texttmpl.New("t").Parse(`Hi {{.name}},

You now have access to "{{.course}}". Start learning at {{.url}}/courses/{{.course_id}}.
`)),
		html: htmltmpl.Must(htmltmpl.New("h").Parse(`<p>Hi {{.name}},</p>
<p>You now have access to <strong>{{.course}}</strong>. <a href="{{.url}}/courses/{{.course_id}}">Start learning</a>.</p>`)),
	},
}

// Render builds the message for a job. Unknown templates are an error.
func Render(job Job) (*Message, error) {
	t, ok := templates[job.Template]
	if !ok {
		return nil, fmt.Errorf("unknown email template %q", job.Template)
	}
	data := map[string]string{"name": job.ToName}
	for k, v := range job.Data {
		data[k] = v
	}

	var subject, text, html bytes.Buffer
	if err := t.subject.Execute(&subject, data); err != nil {
		return nil, fmt.Errorf("render subject: %w", err)
	}
	if err := t.text.Execute(&text, data); err != nil {
		return nil, fmt.Errorf("render text body: %w", err)
	}
	if err := t.html.Execute(&html, data); err != nil {
		return nil, fmt.Errorf("render html body: %w", err)
	}
	return &Message{
		ToEmail: job.ToEmail,
		ToName:  job.ToName,
		Subject: subject.String(),
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

type sendGridSender struct {
	client *sendgrid.Client
	from   *sgmail.Email
}

func NewSendGridSender(apiKey, fromName, fromEmail string) Sender {
	return &sendGridSender{
		client: sendgrid.NewSendClient(apiKey),
		from:   sgmail.NewEmail(fromName, fromEmail),
	}
}

func (s *sendGridSender) Send(ctx context.Context, msg *Message) error {
	m := sgmail.NewSingleEmail(s.from, msg.Subject, sgmail.NewEmail(msg.ToName, msg.ToEmail), msg.Text, msg.HTML)
	res, err := s.client.SendWithContext(ctx, m)
	if err != nil {
		return fmt.Errorf("sendgrid request: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}

// Enqueuer is the producer side of the email queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, job Job) error
}

// QueueSender is the subset of the pgmq client used for producing jobs.
type QueueSender interface {
	Send(ctx context.Context, queue string, payload []byte) error
}

type queueEnqueuer struct {
	queue QueueSender
	name  string
}

func NewQueueEnqueuer(queue QueueSender, name string) Enqueuer {
	return &queueEnqueuer{queue: queue, name: name}
}

func (q *queueEnqueuer) Enqueue(ctx context.Context, job Job) error {
	if _, ok := templates[job.Template]; !ok {
		return fmt.Errorf("unknown email template %q", job.Template)
	}
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal email job: %w", err)
	}
	return q.queue.Send(ctx, q.name, payload)
}
