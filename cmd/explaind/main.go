package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sqlmentor/explaind/serv"
)

const version = "0.1.0"

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "explaind",
		Short: "SQL explanation service",
		Long: `explaind serves natural-language explanations of SQL queries.
It memoizes explanations per request content so repeated identical
requests do not re-invoke the paid completion service.`,
	}

	root.AddCommand(serveCmd(), versionCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "serve",
		Short: "Start the explanation HTTP service",
		Long: `Start the HTTP service. Requires an upstream credential in
OPENAI_API_KEY; the process refuses to start without one.

Exit codes:
  0 - Clean shutdown
  1 - Startup or serve failure`,
		Run: cmdServe,
	}
	c.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file (optional)")
	return c
}

func cmdServe(cmd *cobra.Command, args []string) {
	conf, err := serv.ReadInConfig(configPath)
	if err != nil {
		fatal(err)
	}

	s, err := serv.NewExplainService(conf)
	if err != nil {
		fatal(err)
	}

	if err := s.Start(); err != nil {
		fatal(err)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "ERR %s\n", err)
	os.Exit(1)
}
