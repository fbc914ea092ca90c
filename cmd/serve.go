package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cwbudde/qfmsurface/internal/server"
	"github.com/cwbudde/qfmsurface/internal/store"
)

var (
	serveAddr    string
	serveDataDir string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the solve job server",
	Long:  `Starts the HTTP server managing asynchronous solve jobs over a JSON API.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	serveCmd.Flags().StringVar(&serveDataDir, "data-dir", "./data", "Base directory for run records")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	st, err := store.NewFSStore(serveDataDir)
	if err != nil {
		return fmt.Errorf("failed to create run store: %w", err)
	}

	s := server.NewServer(serveAddr, st, serveDataDir)
	return s.Start()
}
