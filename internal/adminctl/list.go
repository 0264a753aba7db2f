package adminctl

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/formvault/internal/server/export"
	"github.com/dustin/go-humanize"
)

func (a *App) table() *tabwriter.Writer {
	return tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
}

// ago renders an ISO timestamp relative to now, e.g. "3 hours ago".
func (a *App) ago(iso string) string {
	t, err := time.Parse(time.RFC3339Nano, iso)
	if err != nil {
		return "-"
	}
	return humanize.RelTime(t, a.now(), "ago", "from now")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func (a *App) forms() error {
	w := a.table()
	fmt.Fprintln(w, "ID\tNAME\tWORKSPACE\tVERSION\tPUBLISHED\tSUBMISSIONS\tLAST SUBMISSION")
	for _, f := range a.store.ListFormsSummary("") {
		last := "never"
		if f.LastSubmissionAt != nil {
			last = a.ago(*f.LastSubmissionAt)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			f.ID, f.Name, f.WorkspaceID, f.Version, yesNo(f.IsShared()),
			humanize.Comma(int64(f.SubmissionCount)), last)
	}
	return w.Flush()
}

func (a *App) users() error {
	w := a.table()
	fmt.Fprintln(w, "ID\tEMAIL\tROLE\tWORKSPACE\tCREATED")
	for _, u := range a.store.ListUsers() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Email, u.Role, u.WorkspaceID, a.ago(u.CreatedAt))
	}
	return w.Flush()
}

func limit(v *int) string {
	if v == nil {
		return "unlimited"
	}
	return humanize.Comma(int64(*v))
}

func (a *App) packages() error {
	w := a.table()
	fmt.Fprintln(w, "ID\tNAME\tMONTHLY\tANNUAL\tFORMS\tSUBMISSIONS")
	for _, p := range a.store.ListPackages() {
		fmt.Fprintf(w, "%s\t%s\t$%s\t$%s\t%s\t%s\n", p.ID, p.Name,
			humanize.CommafWithDigits(p.PriceMonthly, 2),
			humanize.CommafWithDigits(p.PriceAnnual, 2),
			limit(p.FormLimit), limit(p.SubmissionLimit))
	}
	return w.Flush()
}

func (a *App) export(formID string) error {
	form := a.store.GetForm(formID)
	if form == nil {
		return fmt.Errorf("form %q not found", formID)
	}
	return export.WriteCSV(a.out, *form, a.store.ListSubmissions(form.ID))
}
