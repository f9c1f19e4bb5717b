package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"

	"github.com/mlowell/cnav"
	"github.com/mlowell/cnav/internal/lsp"
)

var version = "dev"

var (
	flagFormat   string
	flagSnapshot string
	flagExt      string
	flagAliases  []string
)

// errorHandled is set by outputError so main() doesn't double-print.
var errorHandled bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errorHandled {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "cnav",
	Short:         "Code navigation over C AST snapshots",
	Long:          "Cnav answers navigation queries (definitions, references, call hierarchy, hover) against a SQLite AST snapshot, as a language server or from the command line.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return validateFormat(flagFormat)
	},
	// No Run — prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "json", "output format: json|text")
	rootCmd.PersistentFlags().StringVar(&flagSnapshot, "snapshot", "", "snapshot database path")
	rootCmd.PersistentFlags().StringVar(&flagExt, "snapshot-ext", "", "extension appended when deriving snapshot paths from source paths")
	rootCmd.PersistentFlags().StringArrayVar(&flagAliases, "alias", nil, "path prefix rewrite old=new applied when deriving snapshot paths")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(queryCmd)
}

var flagVerbose int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the language server over stdio",
	Long:  "Speaks the Language Server Protocol on stdin/stdout. The snapshot is taken from --snapshot or derived per request from --snapshot-ext and --alias.",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().CountVarP(&flagVerbose, "verbose", "v", "increase log verbosity (repeatable)")
}

func runServe(cmd *cobra.Command, args []string) error {
	// Logs go to stderr; stdout carries the protocol.
	commonlog.Configure(flagVerbose, nil)

	session := cnav.NewSession()
	defer session.Close()

	rule, err := buildRule()
	if err != nil {
		return err
	}
	session.SetRule(rule)

	if flagSnapshot != "" {
		if err := session.SetSnapshotPath(flagSnapshot); err != nil {
			return fmt.Errorf("opening snapshot: %w", err)
		}
	}

	return lsp.NewServer(session, version).RunStdio()
}

// buildRule assembles the snapshot derivation rule from CLI flags.
func buildRule() (cnav.SnapshotRule, error) {
	aliases, err := cnav.ParseAliases(flagAliases)
	if err != nil {
		return cnav.SnapshotRule{}, err
	}
	return cnav.SnapshotRule{
		Aliases:   aliases,
		Extension: flagExt,
	}, nil
}
