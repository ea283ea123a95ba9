package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"knightarena/server"
)

// Serve knightarena serve
func Serve() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Host a single game until it is won or a player leaves",
		Args:  cobra.NoArgs,
		Long: heredoc.Doc(`serve hosts exactly one game for the lifetime of the process.

			The first connection plays White, the second plays Black and
			every later connection is a spectator. Clients connect over TCP
			(newline-delimited JSON) or over WebSocket at /ws on the HTTP
			address, which also serves /state, /metrics and /healthz.

			The process exits with status 0 once a side wins, and with
			status 1 as soon as either player disconnects.

			Flags override the KNIGHTS_* environment variables, which may
			also be set in a .env file in the working directory.
		`),

		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := server.LoadConfig()
			if err != nil {
				return err
			}
			applyFlags(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			if err := server.InitLogger(cfg.LogFile, cfg.LogLevel, cfg.LogStderr); err != nil {
				return err
			}
			defer server.SyncLogger()

			return serve(cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("addr", server.DefaultAddr, "TCP listen address")
	flags.String("http-addr", server.DefaultHTTPAddr, "HTTP listen address for /ws and admin endpoints (empty disables)")
	flags.String("log-file", "", "log file path (default under the XDG state directory)")
	flags.String("log-level", server.DefaultLogLevel, "log level: debug, info, warn or error")
	flags.Bool("log-stderr", false, "also write logs to stderr")

	return cmd
}

// applyFlags 只有显式给出的参数才覆盖环境变量
func applyFlags(cmd *cobra.Command, cfg *server.Config) {
	flags := cmd.Flags()
	if flags.Changed("addr") {
		cfg.Addr, _ = flags.GetString("addr")
	}
	if flags.Changed("http-addr") {
		cfg.HTTPAddr, _ = flags.GetString("http-addr")
	}
	if flags.Changed("log-file") {
		cfg.LogFile, _ = flags.GetString("log-file")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-stderr") {
		cfg.LogStderr, _ = flags.GetBool("log-stderr")
	}
}

type result struct {
	winner string
	err    error
}

// serve 启动接入循环与引擎；任何一方出错即返回
func serve(cfg *server.Config) error {
	log := server.Log
	room := server.NewRoom(log)

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Addr, err)
	}

	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error { return room.Serve(ln) })

	var srv *http.Server
	if cfg.HTTPAddr != "" {
		srv = &http.Server{Addr: cfg.HTTPAddr, Handler: server.NewHTTPHandler(room)}
		g.Go(func() error {
			log.Infow("http listening", "addr", cfg.HTTPAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http: %w", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		_ = ln.Close()
		if srv != nil {
			_ = srv.Close()
		}
		return nil
	})

	failed := make(chan error, 1)
	go func() { failed <- g.Wait() }()

	done := make(chan result, 1)
	go func() {
		winner, err := room.Run()
		done <- result{winner: winner.String(), err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return res.err
		}
		log.Infow("winner", "side", res.winner)
		fmt.Printf("Winner is %s\n", res.winner)
		return nil
	case err := <-failed:
		return err
	}
}
