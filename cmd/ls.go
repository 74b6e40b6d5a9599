package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/evanofslack/domain-sync/internal/domain"
)

var (
	lsExactDates bool
	lsOutput     string
)

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List tracked domains",
	RunE:  runLs,
}

func init() {
	lsCmd.Flags().BoolVar(&lsExactDates, "exact-dates", false, "print exact timestamps instead of relative times")
	lsCmd.Flags().StringVarP(&lsOutput, "output", "o", "table", "output format, table or json")
	rootCmd.AddCommand(lsCmd)
}

func runLs(cmd *cobra.Command, args []string) error {
	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.close()

	domains, err := a.store.AllDomains(cmd.Context())
	if err != nil {
		return fmt.Errorf("load domains: %w", err)
	}

	switch lsOutput {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(domains)
	case "table":
		renderTable(domains)
		return nil
	default:
		return fmt.Errorf("unknown output format %q", lsOutput)
	}
}

func renderTable(domains []domain.Record) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Name", "Provider", "Status", "Expires", "Registered", "Auto Renew"})
	for _, d := range domains {
		table.Append([]string{
			d.Name,
			d.Provider,
			d.Status(),
			formatDate(d.ExpiresAt),
			formatDate(d.RegisteredAt),
			formatBool(d.AutoRenew),
		})
	}
	table.Render()
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	if lsExactDates {
		return t.UTC().Format("2006-01-02 15:04:05")
	}
	return humanize.Time(*t)
}

func formatBool(b *bool) string {
	if b == nil {
		return "-"
	}
	if *b {
		return "Yes"
	}
	return "No"
}
