package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aouyang1/go-inflation/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the data, analysis and dashboard over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		server := settings.Server
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			server.Addr = addr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return api.NewServer(newPipeline(), baseCfg, server).ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default: server.addr)")
}
