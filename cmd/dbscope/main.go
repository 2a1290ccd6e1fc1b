package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/kweron/dbscope/internal/credentials"
	"github.com/kweron/dbscope/internal/errs"
	"github.com/kweron/dbscope/internal/logger"
	"github.com/kweron/dbscope/internal/metadata"
	"github.com/kweron/dbscope/internal/query"
	"github.com/kweron/dbscope/internal/server"
)

func main() {
	var (
		addr      = flag.String("addr", envOr("DBSCOPE_ADDR", "127.0.0.1:7831"), "listen address")
		logLevel  = flag.String("log-level", envOr("DBSCOPE_LOG_LEVEL", "info"), "log level (debug, info, warn, error)")
		logFormat = flag.String("log-format", envOr("DBSCOPE_LOG_FORMAT", "console"), "log format (json, console)")
		connsPath = flag.String("connections", os.Getenv("DBSCOPE_CONNECTIONS"), "encrypted connections file (optional)")
	)
	flag.Parse()

	log := logger.New(&logger.Config{
		Level:  *logLevel,
		Format: *logFormat,
		Output: os.Stdout,
	})

	store := credentials.NewStore()
	if *connsPath != "" {
		password := os.Getenv("DBSCOPE_CONNECTIONS_PASSWORD")
		if err := credentials.LoadFile(*connsPath, password, store); err != nil {
			if errs.IsNotFound(err) {
				log.Infof("connections file %s not found, starting empty", *connsPath)
			} else {
				log.Errorf("failed to load connections: %v", err)
				os.Exit(1)
			}
		}
	}

	meta := metadata.NewService(store, log)
	runner := query.NewRunner(store)
	srv := server.New(store, meta, runner, log)

	log.Infof("dbscope listening on %s", *addr)
	if err := http.ListenAndServe(*addr, srv.Router()); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
