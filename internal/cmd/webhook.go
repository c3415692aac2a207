package cmd

import (
	"fmt"
	"net/http"

	"pragent/internal/config"
	"pragent/internal/logger"
	"pragent/internal/webhook"

	"github.com/spf13/cobra"
)

var (
	webhookAddr   string
	webhookSecret string
)

var webhookCmd = &cobra.Command{
	Use:   "webhook",
	Short: "Start the GitHub Actions webhook receiver",
	Long: `Start the HTTP receiver that collects GitHub Actions webhook events.

Each delivery is verified against the configured webhook secret
(X-Hub-Signature-256) and appended to the shared event log that the
get_recent_actions_events and get_workflow_status tools read.

Examples:
  pragent webhook                         # Listen on the configured address
  pragent webhook --addr :9000            # Override the listen address
  pragent webhook --secret "$WEBHOOK_SECRET"`,
	RunE: runWebhook,
}

func init() {
	rootCmd.AddCommand(webhookCmd)
	webhookCmd.Flags().StringVar(&webhookAddr, "addr", "", "Listen address (default: configured addr)")
	webhookCmd.Flags().StringVar(&webhookSecret, "secret", "", "Webhook secret for signature verification (default: configured secret)")
}

func runWebhook(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(".")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	addr := cfg.Webhook.Addr
	if webhookAddr != "" {
		addr = webhookAddr
	}
	secret := cfg.Webhook.Secret
	if webhookSecret != "" {
		secret = webhookSecret
	}

	logLevel := cfg.Log.Level
	if verbose {
		logLevel = "debug"
	}
	log := logger.NewStderr(logLevel, cfg.Log.Format)

	rcv := webhook.NewReceiver(cfg.Events.File, secret, log)

	mux := http.NewServeMux()
	mux.Handle(cfg.Webhook.Path, rcv)
	mux.HandleFunc("/healthz", webhook.Healthz)

	log.Infof("webhook receiver listening on %s (path %s, events file %s)",
		addr, cfg.Webhook.Path, cfg.Events.File)

	return http.ListenAndServe(addr, mux)
}
