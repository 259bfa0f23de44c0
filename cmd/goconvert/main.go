package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	goConvert "github.com/MrEthical07/goConvert"
	"github.com/MrEthical07/goConvert/metrics/export/prometheus"
)

func main() {
	_ = godotenv.Load()

	opts, err := parseOptions(os.Args[1:], os.Getenv, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := run(opts); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(opts options) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	con := newConsole(os.Stdout)
	builder := goConvert.New().
		WithConfig(opts.config()).
		WithNavigator(goConvert.NavigatorFunc(con.navigate))

	if opts.storage == goConvert.StorageRedis {
		addr := opts.redisAddr
		if addr == "" {
			mr, err := miniredis.Run()
			if err != nil {
				return fmt.Errorf("start miniredis: %w", err)
			}
			defer mr.Close()
			addr = mr.Addr()
			fmt.Printf("using miniredis at %s\n", addr)
		}
		rdb := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		defer rdb.Close()
		builder = builder.WithRedis(rdb)
	}

	if opts.auditLog != "" {
		f, err := os.OpenFile(opts.auditLog, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("open audit log: %w", err)
		}
		defer f.Close()
		builder = builder.WithAuditSink(goConvert.NewJSONWriterSink(f))
	}

	client, err := builder.Build()
	if err != nil {
		return err
	}
	defer client.Close()

	if opts.metricsAddr != "" {
		srv := &http.Server{
			Addr:              opts.metricsAddr,
			Handler:           prometheus.NewExporter(client).Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				fmt.Fprintf(os.Stderr, "metrics server: %v\n", err)
			}
		}()
		defer srv.Close()
	}

	if _, err := client.Restore(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "restore: %v\n", err)
	}

	if err := con.attach(client, opts.destination, opts.currencies); err != nil {
		return err
	}
	if err := con.conv.Start(); err != nil {
		return err
	}
	return con.run(ctx, os.Stdin)
}
