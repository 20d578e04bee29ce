package main

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tilemaps/internal/config"
	"github.com/vovakirdan/tilemaps/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagServeDir    string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the map browser over SSH",
	Long: `Start an SSH server that lets level designers browse converted maps
without a local checkout.

Each SSH connection gets its own browser. Maps are reloaded for every new
session, so the latest build is always shown.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.mapgen/host_key

Examples:
  mapgen serve                           # Listen on :23235, serve the output directory
  mapgen serve --ssh :2222               # Listen on port 2222
  mapgen serve --dir ./src/maps          # Serve a specific directory

Users can connect with:
  ssh localhost -p 23235`,
	Args: cobra.NoArgs,
	Run:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23235", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().StringVar(&flagServeDir, "dir", "", "Directory of map records (default: configured output directory)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
}

func runServe(_ *cobra.Command, _ []string) {
	cfg := mustLoadConfig()

	dir := cfg.OutputDir
	if flagServeDir != "" {
		dir = config.ExpandHome(flagServeDir)
	}

	srvCfg := tui.SSHServerConfig{
		Address:     flagSSHAddr,
		HostKeyPath: config.ExpandHome(flagHostKey),
		MapsDir:     dir,
		Suffix:      cfg.OutputSuffix,
		IdleTimeout: time.Duration(flagIdleTimeout) * time.Minute,
	}

	server, err := tui.NewSSHServer(srvCfg, newLogger(cfg.LogLevel))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating server: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Map browser listening on %s\n", server.Addr())
	fmt.Printf("Connect with: ssh localhost -p %s\n", portOf(server.Addr()))
	fmt.Println("Press Ctrl+C to stop")

	if err := server.ListenAndServe(); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

// portOf returns the port part of a host:port address.
func portOf(addr string) string {
	if _, port, err := net.SplitHostPort(addr); err == nil {
		return port
	}
	return addr
}
