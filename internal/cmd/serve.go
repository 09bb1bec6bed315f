package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lunaryorn/tagship/internal/trigger"
	"github.com/lunaryorn/tagship/internal/webhook"
)

var (
	serveAddr      string
	serveSecretEnv string
	serveVerbose   bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Listen for tag-push webhooks and run pipelines",
	Long: `Starts an HTTP listener that accepts push webhooks from the hosting
platform. Tag pushes matching the trigger pattern start a pipeline run;
everything else is ignored. Each tag runs at most once; completed tags are
skipped.

Webhook payloads are verified with HMAC-SHA256 when a webhook secret is
configured in the named environment variable.

Examples:
  tagship serve                                  # Listen on :8976
  tagship serve --addr 127.0.0.1:9000
  tagship serve --secret-env MY_WEBHOOK_SECRET`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8976", "Listen address")
	serveCmd.Flags().StringVar(&serveSecretEnv, "secret-env", "TAGSHIP_WEBHOOK_SECRET", "Environment variable holding the webhook secret")
	serveCmd.Flags().BoolVarP(&serveVerbose, "verbose", "v", false, "Show detailed output")
}

func runServe(cmd *cobra.Command, args []string) error {
	root, config, err := loadWorkspace()
	if err != nil {
		return err
	}

	store, err := trigger.OpenStore(root)
	if err != nil {
		return err
	}

	secret := []byte(os.Getenv(serveSecretEnv))
	if len(secret) == 0 {
		fmt.Printf("⚠️  %s not set, webhook signatures will not be verified\n", serveSecretEnv)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runFunc := func(event trigger.Event) {
		go func() {
			defer store.End(event.Tag)
			fmt.Printf("🔔 Tag push received: %s\n", event.Tag)
			_, err := executePipeline(ctx, root, config, store, event.Tag, executeOptions{verbose: serveVerbose})
			if err != nil {
				fmt.Printf("❌ Run for %s failed: %v\n", event.Tag, err)
				return
			}
			fmt.Printf("✅ Released %s\n", event.Tag)
		}()
	}

	handler := webhook.NewHandler(config.Trigger.TagPattern, secret, store, runFunc)
	server := &http.Server{
		Addr:              serveAddr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Printf("🌐 Listening on %s for tag pushes matching %q\n", serveAddr, config.Trigger.TagPattern)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	fmt.Println("\n👋 Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
