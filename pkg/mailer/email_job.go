package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// Template names understood by the email worker.
const (
	TemplateWelcome = "welcome"
)

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Either a template name with data, or literal subject/text/html.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

var welcomeHTML = template.Must(template.New(TemplateWelcome).Parse(`
<h2>Welcome to StreamHive, {{.FullName}}!</h2>
<p>Your channel <strong>@{{.Username}}</strong> is live. Upload your first video and start building your audience.</p>
`))

// Render resolves a template job into subject, text and html bodies.
func Render(job *EmailJob) (subject, text, html string, err error) {
	switch job.Template {
	case "":
		return job.Subject, job.Text, job.HTML, nil
	case TemplateWelcome:
		var buf bytes.Buffer
		if err := welcomeHTML.Execute(&buf, job.Data); err != nil {
			return "", "", "", err
		}
		text = fmt.Sprintf("Welcome to StreamHive, %v! Your channel @%v is live.", job.Data["FullName"], job.Data["Username"])
		return "Welcome to StreamHive", text, buf.String(), nil
	default:
		return "", "", "", fmt.Errorf("unknown email template %q", job.Template)
	}
}
