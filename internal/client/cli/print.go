package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/notehub/internal/client/models"
	"github.com/dmitrijs2005/notehub/internal/client/services"
)

// printTable writes rows as aligned columns.
func printTable(w io.Writer, header []string, rows [][]string) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(r, "\t"))
	}
	_ = tw.Flush()
}

func printNotes(w io.Writer, notes []models.Note, withStatus bool) {
	if len(notes) == 0 {
		fmt.Fprintln(w, "No notes found")
		return
	}
	header := []string{"ID", "TITLE", "SUBJECT", "SEM", "BRANCH", "BY"}
	if withStatus {
		header = append(header, "STATUS")
	}
	rows := make([][]string, 0, len(notes))
	for _, n := range notes {
		by := ""
		if n.UploadedBy != nil {
			by = n.UploadedBy.Name
		}
		r := []string{n.ID, n.Title, n.Subject, n.Semester, n.Branch, by}
		if withStatus {
			r = append(r, string(n.Status))
		}
		rows = append(rows, r)
	}
	printTable(w, header, rows)
}

func printPapers(w io.Writer, cat *services.Catalog) {
	if len(cat.Papers) == 0 {
		fmt.Fprintln(w, "No question papers found")
		return
	}
	rows := make([][]string, 0, len(cat.Papers))
	for _, p := range cat.Papers {
		state := fmt.Sprintf("₹%d", p.Price)
		switch {
		case p.Purchased:
			state = "owned"
		case !cat.CanPurchase(p):
			state += " (insufficient balance)"
		}
		rows = append(rows, []string{p.ID, p.Title, p.Semester, p.Branch, state})
	}
	printTable(w, []string{"ID", "TITLE", "SEM", "BRANCH", "PRICE"}, rows)
}

func printUsers(w io.Writer, users []models.AdminUser) {
	if len(users) == 0 {
		fmt.Fprintln(w, "No users found")
		return
	}
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		role := "student"
		if u.IsAdmin {
			role = "admin"
		}
		rows = append(rows, []string{u.ID, u.Name, u.Email, role, fmt.Sprintf("₹%d", u.Wallet)})
	}
	printTable(w, []string{"ID", "NAME", "EMAIL", "ROLE", "WALLET"}, rows)
}

func printStats(w io.Writer, st models.Stats) {
	fmt.Fprintf(w, "Users: %d  Notes: %d  Pending: %d  Approved: %d\n",
		st.TotalUsers, st.TotalNotes, st.PendingNotes, st.ApprovedNotes)
}

// argument returns the first argument or an error naming what is missing.
func argument(args []string, what string) (string, error) {
	if len(args) == 0 || args[0] == "" {
		return "", fmt.Errorf("missing %s", what)
	}
	return args[0], nil
}

func joinComma(s []string) string { return strings.Join(s, ", ") }
