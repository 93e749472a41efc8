package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AI2HU/geolens/internal/api"
	"github.com/AI2HU/geolens/internal/report"
	"github.com/AI2HU/geolens/internal/scheduler"
	"github.com/AI2HU/geolens/internal/services"
)

var (
	apiHost string
	apiPort int
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the Geolens REST API server",
	Long: `Start the HTTP API: sessions, brand discovery, query generation,
GEO analyses (blocking and streaming), reports and schedules. Enabled
schedules run in the background while the server is up.`,
	RunE: runAPI,
}

func init() {
	apiCmd.Flags().StringVarP(&apiHost, "host", "H", "", "Host to bind to (overrides config)")
	apiCmd.Flags().IntVarP(&apiPort, "port", "p", 0, "Port to listen on (overrides config)")
}

func runAPI(cmd *cobra.Command, args []string) error {
	if apiHost != "" {
		cfg.Server.Host = apiHost
	}
	if apiPort != 0 {
		cfg.Server.Port = apiPort
	}

	ctx := context.Background()
	if err := connectSQL(ctx); err != nil {
		return err
	}
	if err := connectNoSQL(ctx); err != nil {
		return err
	}

	fmt.Println(FormatHeader("🚀 Starting Geolens API Server"))
	fmt.Println(FormatHeader("=============================="))
	fmt.Println(FormatLabelValue("Address:", cfg.Server.Addr()))
	fmt.Println(FormatLabelValue("Providers:", fmt.Sprintf("%v", llmRegistry.Names())))
	fmt.Println()

	server := api.NewServer(
		cfg,
		sqlStore,
		nosqlStore,
		llmRegistry,
		analyzer,
		services.NewBrandService(llmRegistry, cfg.LLM.DiscoveryModel, cfg.LLM.DefaultProvider),
		services.NewQueryService(llmRegistry, cfg.LLM.DiscoveryModel, cfg.LLM.DefaultProvider),
		report.NewMailer(cfg.SMTP),
	)

	sched := scheduler.New(sqlStore, nosqlStore, analyzer)
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		fmt.Println("\n🛑 Shutting down API server...")
		sched.Stop()
		sqlStore.Disconnect(ctx)
		nosqlStore.Disconnect(ctx)
		os.Exit(0)
	}()

	fmt.Println(FormatSuccess("🌐 API server is running, press Ctrl+C to stop"))
	return server.Run()
}
