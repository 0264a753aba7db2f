// Package export renders form submissions as CSV.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/formvault/internal/common"
	"github.com/dmitrijs2005/formvault/internal/server/models"
)

// DurationHeader titles the computed duration column.
const DurationHeader = "Duration (minutes)"

// Filename is the attachment name for a form's export.
func Filename(form models.Form) string {
	name := form.Slug
	if name == "" {
		name = form.ID
	}
	return name + "-submissions.csv"
}

// Header returns the column titles: submission id, submission time, one
// column per field (its label, or its id when unlabelled) and the duration
// column when the form calculates durations.
func Header(form models.Form) []string {
	row := []string{"Submission ID", "Submitted At"}
	for _, f := range form.Fields {
		label := f.Label
		if label == "" {
			label = f.ID
		}
		row = append(row, label)
	}
	if form.Settings.AutoCalculateDuration.Enabled() {
		row = append(row, DurationHeader)
	}
	return row
}

// Row renders one submission in Header order.
func Row(form models.Form, sub models.Submission) []string {
	row := []string{sub.ID, sub.SubmittedAt}
	for _, f := range form.Fields {
		row = append(row, FormatValue(sub.Data[f.ID]))
	}
	if form.Settings.AutoCalculateDuration.Enabled() {
		row = append(row, FormatValue(sub.Data[common.DurationMinutesKey]))
	}
	return row
}

// FormatValue renders a submitted value as a cell: lists are joined with
// "; ", objects become JSON and missing values are empty.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	case []any:
		parts := make([]string, len(t))
		for i, item := range t {
			parts[i] = FormatValue(item)
		}
		return strings.Join(parts, "; ")
	case []string:
		return strings.Join(t, "; ")
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// WriteCSV writes the header and one row per submission.
func WriteCSV(w io.Writer, form models.Form, subs []models.Submission) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header(form)); err != nil {
		return err
	}
	for _, sub := range subs {
		if err := cw.Write(Row(form, sub)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
