package main

import (
	"errors"
	"net/http"

	"github.com/cwbudde/metaopt/internal/server"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP job server",
	Long: `Starts an HTTP server that accepts optimization jobs, runs them in
the background and streams progress over SSE.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := server.NewServer(serveAddr)
		if err := s.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	rootCmd.AddCommand(serveCmd)
}
