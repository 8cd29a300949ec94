package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"iitubot/app"
	"iitubot/config"
)

func main() {
	var configPath string

	root := &cobra.Command{
		Use:   "iitubot",
		Short: "University website assistant: crawl, index and answer",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")

	setup := &cobra.Command{
		Use:   "setup",
		Short: "Build the knowledge base, reusing cached crawl data",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, ctx, err := buildApp(configPath, true)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Setup(ctx)
		},
	}

	update := &cobra.Command{
		Use:   "update",
		Short: "Discard caches and rebuild the knowledge base from a fresh crawl",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, ctx, err := buildApp(configPath, true)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Update(ctx)
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show knowledge base and cache state",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, ctx, err := buildApp(configPath, false)
			if err != nil {
				return err
			}
			defer a.Close()
			out, err := a.Status(ctx)
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		},
	}

	botCmd := &cobra.Command{
		Use:   "bot",
		Short: "Serve the assistant over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, ctx, err := buildApp(configPath, true)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.RunBot(ctx)
		},
	}

	root.AddCommand(setup, update, status, botCmd)
	if err := root.Execute(); err != nil {
		log.Fatalf("iitubot: %v", err)
	}
}

// buildApp loads configuration and constructs the application with a
// signal-aware context. Commands that call the model require validated
// credentials; status does not.
func buildApp(configPath string, validate bool) (*app.App, context.Context, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	if validate {
		if err := cfg.Validate(); err != nil {
			return nil, nil, err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		stop()
	}()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return a, ctx, nil
}
