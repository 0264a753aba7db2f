package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/dmitrijs2005/formvault/internal/formschema"
	"github.com/dmitrijs2005/formvault/internal/logging"
	"github.com/dmitrijs2005/formvault/internal/server/models"
)

const fallbackSubject = "New submission received"

var templateToken = regexp.MustCompile(`\{\{\s*(\w+)\s*\}\}`)

// Notification is one rendered submission alert.
type Notification struct {
	Recipients []string
	Subject    string
	Message    string
	Data       map[string]any
}

// Notifier renders submission alerts and writes them to an output stream
// and the structured log. No mail is sent.
type Notifier struct {
	logger logging.Logger
	out    io.Writer
}

func NewNotifier(l logging.Logger, out io.Writer) *Notifier {
	return &Notifier{logger: l.With("module", "notifier"), out: out}
}

// RenderTemplate replaces {{ key }} tokens with values from vars; unknown
// keys render as "".
func RenderTemplate(tmpl string, vars map[string]string) string {
	return templateToken.ReplaceAllStringFunc(tmpl, func(m string) string {
		key := templateToken.FindStringSubmatch(m)[1]
		return vars[key]
	})
}

// Dispatch emits the alert for sub when the form has notifications enabled
// and at least one recipient. It reports whether anything was emitted.
func (n *Notifier) Dispatch(ctx context.Context, form models.Form, sub models.Submission, ws *models.Workspace) (*Notification, bool) {
	settings := form.Settings.Notifications
	if !settings.Enabled {
		return nil, false
	}
	recipients := make([]string, 0, len(settings.Recipients))
	for _, r := range settings.Recipients {
		if r != "" {
			recipients = append(recipients, r)
		}
	}
	if len(recipients) == 0 {
		return nil, false
	}

	vars := map[string]string{
		"formName":      firstNonEmpty(form.Name, "Form"),
		"submissionId":  sub.ID,
		"workspaceName": "",
		"submittedAt":   sub.SubmittedAt,
	}
	if ws != nil {
		vars["workspaceName"] = ws.Name
	}

	note := &Notification{
		Recipients: recipients,
		Subject:    RenderTemplate(firstNonEmpty(settings.Subject, fallbackSubject), vars),
		Message:    RenderTemplate(firstNonEmpty(settings.Message, formschema.DefaultMessage), vars),
	}
	if settings.IncludeSubmission {
		note.Data = formschema.CloneMap(sub.Data)
	}

	n.write(note)
	n.logger.Info(ctx, "Submission notification",
		"form_id", form.ID,
		"submission_id", sub.ID,
		"recipients", strings.Join(recipients, ", "),
		"subject", note.Subject,
	)
	return note, true
}

func (n *Notifier) write(note *Notification) {
	if n.out == nil {
		return
	}
	banner := strings.Repeat("-", 60)
	var b strings.Builder
	fmt.Fprintln(&b, banner)
	fmt.Fprintln(&b, "[Notification] Submission alert")
	fmt.Fprintln(&b, "Recipients:", strings.Join(note.Recipients, ", "))
	fmt.Fprintln(&b, "Subject:", note.Subject)
	fmt.Fprintln(&b, "Message:", note.Message)
	if note.Data != nil {
		data, err := json.MarshalIndent(note.Data, "", "  ")
		if err == nil {
			fmt.Fprintln(&b, "Submission Data:", string(data))
		}
	}
	fmt.Fprintln(&b, banner)
	_, _ = io.WriteString(n.out, b.String())
}
