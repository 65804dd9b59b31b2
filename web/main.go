package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/df07/go-analytic-raytracer/pkg/config"
	"github.com/df07/go-analytic-raytracer/pkg/logger"
	"github.com/df07/go-analytic-raytracer/web/server"
)

func main() {
	os.Exit(realMain())
}

// realMain serves until the server stops and returns the exit code
func realMain() int {
	flags := config.RegisterFlags(flag.CommandLine)
	flag.Parse()

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	log := logger.New(cfg.Logging.Level, logger.DefaultFileConfig(cfg.Logging.LogFile), true)
	defer log.Sync()

	webServer := server.NewServer(cfg, log)
	log.Info("analytic raytracer web server", zap.String("url", fmt.Sprintf("http://localhost:%d", cfg.Web.Port)))

	if err := webServer.Start(); err != nil {
		log.Error("server stopped", zap.Error(err))
		return 1
	}
	return 0
}
