package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"fraudnotifier/internal/webhook"

	"github.com/spf13/cobra"
	stripewebhook "github.com/stripe/stripe-go/v82/webhook"
)

func signCmd() *cobra.Command {
	var postURL string

	cmd := &cobra.Command{
		Use:   "sign [file|-]",
		Short: "Sign a webhook payload with the configured signing secret",
		Long:  "Prints the Stripe-Signature header for a payload file (or stdin). With --post, delivers the signed payload to a running receiver.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			var payload []byte
			if args[0] == "-" {
				payload, err = io.ReadAll(os.Stdin)
			} else {
				payload, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read payload: %w", err)
			}

			signed := stripewebhook.GenerateTestSignedPayload(&stripewebhook.UnsignedPayload{
				Payload:   payload,
				Secret:    cfg.Stripe.WebhookSecret,
				Timestamp: time.Now(),
			})

			if postURL == "" {
				fmt.Printf("%s: %s\n", webhook.SignatureHeader, signed.Header)
				return nil
			}

			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost, postURL, bytes.NewReader(payload))
			if err != nil {
				return fmt.Errorf("build request: %w", err)
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set(webhook.SignatureHeader, signed.Header)

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return fmt.Errorf("post: %w", err)
			}
			defer resp.Body.Close()
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			fmt.Printf("%s\n%s\n", resp.Status, bytes.TrimSpace(body))
			return nil
		},
	}

	cmd.Flags().StringVar(&postURL, "post", "", "deliver the signed payload to this URL (e.g. http://localhost:8080/webhook)")
	return cmd
}
