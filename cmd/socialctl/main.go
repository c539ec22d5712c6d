// Command socialctl inspects provider configuration, builds authorization URLs,
// redeems callbacks, and runs a demo callback server.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeremyhahn/go-social/internal/logging"
	"github.com/jeremyhahn/go-social/internal/metrics"
	"github.com/jeremyhahn/go-social/internal/server"
	"github.com/jeremyhahn/go-social/internal/statestore"
	"github.com/jeremyhahn/go-social/pkg/social"
)

type globals struct {
	configPath string
	envFiles   []string
	logLevel   string
	logFormat  string

	logger *zap.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:           "socialctl",
		Short:         "Sign users in through GitHub, Google and Facebook",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := logging.New(logging.Config{Level: g.logLevel, Format: g.logFormat})
			if err != nil {
				return err
			}
			g.logger = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if g.logger != nil {
				_ = g.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&g.configPath, "config", "", "YAML file with a providers section")
	root.PersistentFlags().StringSliceVar(&g.envFiles, "env-file", nil, "dotenv file(s) with SOCIAL_<PROVIDER>_<KEY> variables")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "info", "debug|info|warn|error")
	root.PersistentFlags().StringVar(&g.logFormat, "log-format", logging.FormatConsole, "console|json")

	root.AddCommand(
		newProvidersCmd(),
		newAuthURLCmd(g),
		newUserCmd(g),
		newServeCmd(g),
	)
	return root
}

// loadManager builds the Manager from the YAML file (if any) overlaid with
// environment variables.
func (g *globals) loadManager(opts ...social.Option) (*social.Manager, error) {
	cfg := social.Config{}
	if g.configPath != "" {
		fromFile, err := social.LoadConfig(g.configPath)
		if err != nil {
			return nil, err
		}
		cfg = fromFile
	}
	fromEnv, err := social.LoadEnv(g.envFiles...)
	if err != nil {
		return nil, err
	}
	cfg = cfg.Merge(fromEnv)

	opts = append([]social.Option{social.WithLogger(g.logger)}, opts...)
	return social.NewManager(cfg, opts...)
}

func newProvidersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List supported providers and their required keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, name := range social.Registered() {
				keys, _ := social.RequiredKeys(name)
				fmt.Fprintf(out, "%-10s %s\n", name, strings.Join(keys, ", "))
			}
			return nil
		},
	}
}

func newAuthURLCmd(g *globals) *cobra.Command {
	var provider, state string

	cmd := &cobra.Command{
		Use:   "authurl",
		Short: "Print the authorization URL for a provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := g.loadManager()
			if err != nil {
				return err
			}
			p, err := m.Provider(provider)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if state == "" {
				state = uuid.NewString()
				fmt.Fprintf(out, "state: %s\n", state)
			}
			fmt.Fprintln(out, p.AuthURL(state))
			return nil
		},
	}
	cmd.Flags().StringVar(&provider, "provider", "", "provider name")
	cmd.Flags().StringVar(&state, "state", "", "state to embed (random when empty)")
	_ = cmd.MarkFlagRequired("provider")
	return cmd
}

func newUserCmd(g *globals) *cobra.Command {
	var (
		provider, state, callback string
		timeout                   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "user",
		Short: "Redeem a callback URI and print the user as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := g.loadManager(social.WithHTTPClient(&http.Client{Timeout: timeout}))
			if err != nil {
				return err
			}
			p, err := m.Provider(provider)
			if err != nil {
				return err
			}

			user, err := p.GetUser(cmd.Context(), callback, state)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(user)
		},
	}
	cmd.Flags().StringVar(&provider, "provider", "", "provider name")
	cmd.Flags().StringVar(&state, "state", "", "state issued with the authorization URL")
	cmd.Flags().StringVar(&callback, "callback", "", "full callback URI the provider redirected to")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "timeout for each provider request")
	_ = cmd.MarkFlagRequired("provider")
	_ = cmd.MarkFlagRequired("callback")
	return cmd
}

func newServeCmd(g *globals) *cobra.Command {
	var (
		addr      string
		redisAddr string
		redisDB   int
		stateTTL  time.Duration
		timeout   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the demo callback server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := g.loadManager(social.WithHTTPClient(&http.Client{Timeout: timeout}))
			if err != nil {
				return err
			}

			var store statestore.Store = statestore.NewMemory(stateTTL, time.Minute)
			if redisAddr != "" {
				rs := statestore.NewRedis(redisAddr, redisDB)
				defer rs.Close()
				if err := rs.Ping(cmd.Context()); err != nil {
					return fmt.Errorf("redis: %w", err)
				}
				store = rs
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			met, err := metrics.New(reg)
			if err != nil {
				return err
			}

			srv, err := server.New(server.Config{
				Manager:  m,
				Store:    store,
				Metrics:  met,
				Gatherer: reg,
				Logger:   g.logger,
				StateTTL: stateTTL,
			})
			if err != nil {
				return err
			}

			return listen(cmd.Context(), g.logger, addr, srv.Handler(), m.Names())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "Redis address for shared state storage (in-memory when empty)")
	cmd.Flags().IntVar(&redisDB, "redis-db", 0, "Redis database")
	cmd.Flags().DurationVar(&stateTTL, "state-ttl", statestore.DefaultTTL, "how long an issued state stays valid")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "timeout for each provider request")
	return cmd
}

func listen(ctx context.Context, logger *zap.Logger, addr string, h http.Handler, providers []string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	hs := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", addr), zap.Strings("providers", providers))
		errCh <- hs.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return hs.Shutdown(shutdownCtx)
}
