package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/hh-screener/internal/logger"
	"github.com/spigell/hh-screener/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the screening API over HTTP",
	PreRun: func(cmd *cobra.Command, _ []string) {
		viper.BindPFlag("batch.concurrency", cmd.Flags().Lookup("concurrency"))
	},
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default :8080)")
	serveCmd.Flags().IntP("concurrency", "c", 0, "candidates analyzed in parallel per request (1-8, default 4)")

	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	svc, err := newService(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the screening pipeline", zap.Error(err))
	}
	logStrategies(logger, svc.Chain().Strategies())

	srvCfg := server.Config{Version: version}
	if config.Server != nil {
		srvCfg.Addr = config.Server.Addr
		srvCfg.TrustedProxies = config.Server.TrustedProxies
		srvCfg.RateLimit = config.Server.RateLimit
	}

	srv := server.New(srvCfg, svc, logger)
	if err := srv.ListenAndServe(ctx); err != nil {
		logger.Fatal("serving", zap.Error(err))
	}
}
