package integrations

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"github.com/thewebvalue/task-management-api/internal/models"
	"github.com/wneessen/go-mail"
)

// SMTPConfig describes the outbound mail server.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (c SMTPConfig) Enabled() bool {
	return c.Host != ""
}

// SMTPNotifier renders task notifications as HTML and delivers them over SMTP.
type SMTPNotifier struct {
	cfg SMTPConfig
}

func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return &SMTPNotifier{cfg: cfg}
}

func (n *SMTPNotifier) Send(ctx context.Context, kind NotificationKind, task *models.Task, recipient, actor *models.User) error {
	subject, body, err := ComposeNotification(kind, task, recipient, actor)
	if err != nil {
		return err
	}

	msg := mail.NewMsg()
	if err := msg.From(n.cfg.From); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(recipient.Email); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, body)

	opts := []mail.Option{mail.WithPort(n.cfg.Port)}
	if n.cfg.Port == 465 {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if n.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(n.cfg.Username),
			mail.WithPassword(n.cfg.Password),
		)
	}

	client, err := mail.NewClient(n.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send %s email: %w", kind, err)
	}
	return nil
}

// LogNotifier records notifications in the log instead of sending them.
// It stands in for SMTP when no mail server is configured.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Send(ctx context.Context, kind NotificationKind, task *models.Task, recipient, actor *models.User) error {
	subject, _, err := ComposeNotification(kind, task, recipient, actor)
	if err != nil {
		return err
	}
	n.logger.InfoContext(ctx, "email delivery disabled, notification not sent",
		"kind", kind,
		"task_id", task.ID,
		"recipient", recipient.Email,
		"subject", subject,
	)
	return nil
}

type emailData struct {
	Task      *models.Task
	Recipient *models.User
	Actor     *models.User
	Deadline  string
	UpdatedAt string
}

var emailTemplates = map[NotificationKind]struct {
	subject string
	body    *template.Template
}{
	NotificationAssignment: {
		subject: "New Task Assigned: %s",
		body: template.Must(template.New("assignment").Parse(`<h2>New Task Assignment</h2>
<p>Hello {{.Recipient.FullName}},</p>
<p>You have been assigned a new task{{if .Actor}} by {{.Actor.FullName}}{{end}}.</p>
<h3>Task Details:</h3>
<ul>
  <li><strong>Title:</strong> {{.Task.Title}}</li>
  <li><strong>Description:</strong> {{if .Task.Description}}{{.Task.Description}}{{else}}No description provided{{end}}</li>
  <li><strong>Deadline:</strong> {{.Deadline}}</li>
  {{- if .Task.Notes}}
  <li><strong>Notes:</strong> {{.Task.Notes}}</li>
  {{- end}}
</ul>
<p>Please log in to the task management system to view more details and update the task status.</p>
<p>Best regards,<br>Task Management System</p>`)),
	},
	NotificationReminder: {
		subject: "Task Reminder: %s",
		body: template.Must(template.New("reminder").Parse(`<h2>Task Reminder</h2>
<p>Hello {{.Recipient.FullName}},</p>
<p>This is a reminder about your upcoming task deadline.</p>
<h3>Task Details:</h3>
<ul>
  <li><strong>Title:</strong> {{.Task.Title}}</li>
  <li><strong>Deadline:</strong> {{.Deadline}}</li>
  <li><strong>Current Status:</strong> {{.Task.Status}}</li>
</ul>
<p>Please ensure to update the task status and complete it before the deadline.</p>
<p>Best regards,<br>Task Management System</p>`)),
	},
	NotificationStatusUpdate: {
		subject: "Task Status Update: %s",
		body: template.Must(template.New("status_update").Parse(`<h2>Task Status Update</h2>
<p>Hello {{.Recipient.FullName}},</p>
<p>{{if .Actor}}{{.Actor.FullName}}{{else}}A user{{end}} has updated the status of a task you assigned.</p>
<h3>Task Details:</h3>
<ul>
  <li><strong>Title:</strong> {{.Task.Title}}</li>
  <li><strong>New Status:</strong> {{.Task.Status}}</li>
  <li><strong>Updated At:</strong> {{.UpdatedAt}}</li>
</ul>
<p>You can log in to the task management system to view more details.</p>
<p>Best regards,<br>Task Management System</p>`)),
	},
}

// ComposeNotification renders the subject and HTML body for kind.
func ComposeNotification(kind NotificationKind, task *models.Task, recipient, actor *models.User) (string, string, error) {
	tmpl, ok := emailTemplates[kind]
	if !ok {
		return "", "", fmt.Errorf("unknown notification kind %q", kind)
	}
	if task == nil || recipient == nil {
		return "", "", fmt.Errorf("notification %s requires a task and a recipient", kind)
	}

	data := emailData{
		Task:      task,
		Recipient: recipient,
		Actor:     actor,
		Deadline:  task.Deadline.UTC().Format(time.RFC1123),
		UpdatedAt: task.UpdatedAt.UTC().Format(time.RFC1123),
	}

	var buf bytes.Buffer
	if err := tmpl.body.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("failed to render %s email: %w", kind, err)
	}
	return fmt.Sprintf(tmpl.subject, task.Title), buf.String(), nil
}
