package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

var (
	porkbunNoDomains bool
	porkbunNoDNS     bool
	porkbunNoPricing bool
)

var porkbunCmd = &cobra.Command{
	Use:   "porkbun",
	Short: "Porkbun registrar operations",
}

var porkbunIndexCmd = &cobra.Command{
	Use:   "index",
	Short: "Run a one-off sync against porkbun",
	RunE:  runPorkbunIndex,
}

func init() {
	porkbunIndexCmd.Flags().BoolVar(&porkbunNoDomains, "no-domains", false, "skip syncing domains")
	porkbunIndexCmd.Flags().BoolVar(&porkbunNoDNS, "no-dns", false, "skip listing DNS records")
	porkbunIndexCmd.Flags().BoolVar(&porkbunNoPricing, "no-pricing", false, "skip refreshing TLD prices")
	porkbunCmd.AddCommand(porkbunIndexCmd)
	rootCmd.AddCommand(porkbunCmd)
}

func runPorkbunIndex(cmd *cobra.Command, args []string) error {
	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.close()

	if a.porkbun == nil {
		return fmt.Errorf("porkbun is not configured, set api and secret keys")
	}

	ctx := cmd.Context()
	ip, err := a.porkbun.Ping(ctx)
	if err != nil {
		return fmt.Errorf("verify porkbun credentials: %w", err)
	}
	slog.Debug("Porkbun credentials verified", "ip", ip)

	if !porkbunNoDomains {
		a.syncProvider(ctx, a.porkbun)
	}
	if !porkbunNoDNS {
		stored, err := a.store.DomainsByProvider(ctx, a.porkbun.Provider())
		if err != nil {
			return fmt.Errorf("load porkbun domains: %w", err)
		}
		names := make([]string, 0, len(stored))
		for _, d := range stored {
			names = append(names, d.Name)
		}

		records, err := a.porkbun.DNSRecords(ctx, names)
		if err != nil {
			return fmt.Errorf("list DNS records: %w", err)
		}
		for _, rr := range records {
			fmt.Printf("%s\t%s\t%s\t%s\n", rr.Name, rr.TTL, rr.Type, rr.Data)
		}
	}
	if !porkbunNoPricing && a.cfg.Porkbun.Pricing.Enabled {
		if err := a.porkbun.IngestTLDPrices(ctx); err != nil {
			return fmt.Errorf("ingest TLD prices: %w", err)
		}
		slog.Info("Refreshed TLD prices")
	}
	return nil
}
