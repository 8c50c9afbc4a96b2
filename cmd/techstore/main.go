package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "techstore",
	Short: "Retail storefront chat bot",
	Long: `techstore runs the storefront bot: catalog browsing, carts,
purchase requests and admin broadcasts, plus a small operations HTTP server.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, catalogCmd, usersCmd, hashTokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
