package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kbukum/httpservice/version"
)

// NewRootCommand builds the httpservice command tree.
func NewRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "httpservice",
		Short: "Send HTTP/1.x requests over tcp, udp, unix or tls transports",
		Long: `httpservice issues a single HTTP request through a configured service.

Settings are read from httpservice.yml (or --config) and HTTPSERVICE_*
environment variables, e.g. HTTPSERVICE_SERVICE_HOST.

Examples:
  httpservice send GET /users --data 'id=5' --host api.example
  httpservice send POST /items --data '{"name":"pen"}' --type json --return response`,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to configuration file")

	root.AddCommand(newSendCommand(&configPath))
	root.AddCommand(newVersionCommand())
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
