package main

import (
	"github.com/spf13/cobra"

	"github.com/docpipeops/docpipe/docpipe/webserver"
)

func newServeCmd() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			addr := cfg.Serve.Listen
			if listen != "" {
				addr = listen
			}

			server := webserver.New(buildRunner(cfg), logger)
			return server.ListenAndServe(addr)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (default from config)")

	return cmd
}
