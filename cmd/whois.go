package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evanofslack/domain-sync/internal/whois"
)

var whoisJSON bool

var whoisCmd = &cobra.Command{
	Use:   "whois <domain>",
	Short: "Look up whois data for a domain",
	Args:  cobra.ExactArgs(1),
	RunE:  runWhois,
}

func init() {
	whoisCmd.Flags().BoolVar(&whoisJSON, "json", false, "print parsed whois data as JSON")
	rootCmd.AddCommand(whoisCmd)
}

func runWhois(cmd *cobra.Command, args []string) error {
	result, err := whois.Lookup(args[0])
	if err != nil {
		return fmt.Errorf("whois lookup: %w", err)
	}

	if whoisJSON {
		out, err := result.JSON()
		if err != nil {
			return fmt.Errorf("parse whois response: %w", err)
		}
		fmt.Println(out)
		return nil
	}
	fmt.Println(result.String())
	return nil
}
