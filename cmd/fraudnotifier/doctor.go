package main

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"fraudnotifier/internal/config"

	"github.com/spf13/cobra"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Run diagnostic checks on the notifier configuration",
		Long: `Verifies that configuration, secrets, the Slack webhook URL, the listen
port and the Stripe API key are set up correctly. Reports pass/fail for each check.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("fraudnotifier doctor v%s\n", version)
			fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

			passed := 0
			failed := 0
			warned := 0

			// 1. Config loads and validates
			cfg, err := loadConfig()
			if err != nil {
				printFail("Config", err.Error())
				fmt.Printf("\nSet %s and %s, or run 'fraudnotifier init'.\n", config.EnvWebhookSecret, config.EnvSlackWebhookURL)
				return fmt.Errorf("config invalid")
			}
			printPass("Config", "valid")
			passed++

			// 2. Signing secret shape
			if strings.HasPrefix(cfg.Stripe.WebhookSecret, "whsec_") {
				printPass("Signing secret", "whsec_ prefix present")
				passed++
			} else {
				printWarn("Signing secret", "does not start with whsec_")
				warned++
			}

			// 3. Slack incoming webhook URL
			if u, err := url.Parse(cfg.Slack.WebhookURL); err == nil && u.Scheme == "https" && u.Host == "hooks.slack.com" {
				printPass("Slack webhook", u.Host+"/…")
				passed++
			} else {
				printWarn("Slack webhook", "not a https://hooks.slack.com URL")
				warned++
			}

			// 4. Listen port
			if err := checkPort(cfg.Server.Host, cfg.Server.Port); err != nil {
				printWarn("Listen port", fmt.Sprintf("port %d may be in use: %v", cfg.Server.Port, err))
				warned++
			} else {
				printPass("Listen port", fmt.Sprintf(":%d available", cfg.Server.Port))
				passed++
			}

			// 5. Stripe API key
			if cfg.Stripe.APIKey == "" {
				printWarn("Stripe API key", "not configured (not needed for verification)")
				warned++
			} else {
				configureStripe(cfg.Stripe)
				if livemode, err := checkStripeAPI(); err != nil {
					printFail("Stripe API key", err.Error())
					failed++
				} else {
					printPass("Stripe API key", "accepted (livemode="+strconv.FormatBool(livemode)+")")
					passed++
				}
			}

			// Summary
			fmt.Printf("\n━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
			fmt.Printf("Results: %d passed, %d warnings, %d failed\n", passed, warned, failed)
			if failed > 0 {
				return fmt.Errorf("%d check(s) failed", failed)
			}
			return nil
		},
	}
}

func checkPort(host string, port int) error {
	ln, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return err
	}
	ln.Close()
	return nil
}

func printPass(check, detail string) {
	fmt.Printf("  [PASS] %-20s %s\n", check, detail)
}

func printFail(check, detail string) {
	fmt.Printf("  [FAIL] %-20s %s\n", check, detail)
}

func printWarn(check, detail string) {
	fmt.Printf("  [WARN] %-20s %s\n", check, detail)
}
