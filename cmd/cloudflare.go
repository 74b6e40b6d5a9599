package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	cloudflareNoDomains bool
	cloudflareNoDNS     bool
)

var cloudflareCmd = &cobra.Command{
	Use:   "cloudflare",
	Short: "Cloudflare registrar operations",
}

var cloudflareIndexCmd = &cobra.Command{
	Use:   "index",
	Short: "Run a one-off sync against cloudflare",
	RunE:  runCloudflareIndex,
}

func init() {
	cloudflareIndexCmd.Flags().BoolVar(&cloudflareNoDomains, "no-domains", false, "skip syncing domains")
	cloudflareIndexCmd.Flags().BoolVar(&cloudflareNoDNS, "no-dns", false, "skip listing DNS records")
	cloudflareCmd.AddCommand(cloudflareIndexCmd)
	rootCmd.AddCommand(cloudflareCmd)
}

func runCloudflareIndex(cmd *cobra.Command, args []string) error {
	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.close()

	if a.cloudflare == nil {
		return fmt.Errorf("cloudflare is not configured, set an api token")
	}

	ctx := cmd.Context()
	if !cloudflareNoDomains {
		a.syncProvider(ctx, a.cloudflare)
	}
	if !cloudflareNoDNS {
		records, err := a.cloudflare.DNSRecords(ctx)
		if err != nil {
			return fmt.Errorf("list DNS records: %w", err)
		}
		for _, rr := range records {
			fmt.Printf("%s\t%s\t%s\t%s\n", rr.Name, rr.TTL, rr.Type, rr.Data)
		}
	}
	return nil
}
