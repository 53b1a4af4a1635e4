package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/permit-sheriff/sheriff/internal/api"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the sheriff API daemon",
	Long: `Start the HTTP API daemon serving the compliance dashboard, the
enforcement workflow, and the ledger endpoints.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	st, err := buildStack()
	if err != nil {
		return err
	}
	defer st.Close()

	server := api.NewServer(st.source, st.controller, st.ledger, st.renderer, st.profile)
	server.SetVersion(Version)
	server.SetTimeout(st.cfg.APITimeout())
	if st.cfg.Metrics.Enabled {
		server.EnableMetrics()
	}

	log := slog.With("component", "daemon")

	httpServer := &http.Server{
		Addr:    st.cfg.ListenAddr(),
		Handler: server.Handler(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("api listening",
			"addr", httpServer.Addr,
			"registry", st.cfg.Registry.Source,
			"ledger", st.cfg.Ledger.Backend)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
