package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/peta-ikm/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interactive map over HTTP",
	Long: `Starts a local web server that rebuilds the map on every page load.
The page, the region GeoJSON and the overview chart are served at /,
/regions.geojson and /overview.svg.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("port") {
			cfg.Server.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("open") {
			cfg.Server.Open, _ = cmd.Flags().GetBool("open")
		}

		srv := server.New(server.Config{
			Port:    cfg.Server.Port,
			Verbose: verbose,
		}, cfg)

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			srv.Shutdown(context.Background())
		}()

		fmt.Fprintf(os.Stderr, "petaikm %s serving %s at %s\n", Version, cfg.Path(cfg.Archive), srv.URL())
		fmt.Fprintln(os.Stderr, "Press Ctrl+C to stop.")

		if cfg.Server.Open {
			if err := server.OpenBrowser(cfg.Server.BrowserCommand, srv.URL()); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: could not open browser: %v\n", err)
			}
		}

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().Int("port", 8501, "port to listen on (overrides config)")
	serveCmd.Flags().Bool("open", false, "open the map in a browser")
	rootCmd.AddCommand(serveCmd)
}
