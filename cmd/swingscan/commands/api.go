package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/swingscan/internal/api"
	"github.com/wonny/swingscan/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

Endpoints:
  GET  /health                     - Health check
  POST /api/scan                   - 스캔 실행 (수집 + 스코어링 + 랭킹)
  GET  /api/quote/{symbol}         - Alpha Vantage Global Quote 패스스루
  GET  /api/fundamentals/{symbol}  - Alpha Vantage Overview 패스스루

Example:
  go run ./cmd/swingscan api
  go run ./cmd/swingscan api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default: PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	// Override port if flag is set
	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	h := api.Handlers{
		Health: handlers.NewHealthHandler(a.db, a.redis),
		Scan: handlers.NewScanHandler(a.orchestrator, handlers.ScanDefaults{
			Symbols:    a.cfg.Scan.Symbols,
			MaxSymbols: a.cfg.Scan.MaxSymbols,
			Capital:    a.cfg.Scan.Capital,
			Limit:      a.defaultLimit(),
			MinScore:   a.defaultMinScore(),
			Profile:    a.defaultProfile(),
			Sector:     a.profile.Scan.Sector,
			Demo:       a.cfg.AlphaVantage.APIKey == "" && a.cfg.Scan.DemoMode,
		}, a.log),
		Market: handlers.NewMarketHandler(a.alphaVantage, a.cfg.AlphaVantage.PassthroughWait, a.log),
	}

	server := api.New(a.cfg, a.log, api.NewRouter(h, a.log))

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  POST /api/scan")
	fmt.Println("  GET  /api/quote/{symbol}")
	fmt.Println("  GET  /api/fundamentals/{symbol}")
	fmt.Println("\nPress Ctrl+C to stop")

	return server.Run(ctx)
}
