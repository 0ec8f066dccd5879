// File: cmd/hioload-irc/main.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// hioload-irc connects to the configured IRC servers on one reactor and
// bridges stdin lines to them.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/momentics/hioload-irc/api"
)

var (
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "hioload-irc",
	Short: "Single-goroutine IRC client reactor",
	Long: `hioload-irc drives any number of IRC sessions from one goroutine.

Every received message is logged. Lines typed on stdin in the form
"<server-name> <raw IRC line>" are sent to the named server.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "hioload-irc %s (%s)\n", api.Version, api.Homepage)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "irc.yaml", "configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log.level from the configuration")
	rootCmd.AddCommand(runCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
