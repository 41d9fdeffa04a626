package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	apperrors "github.com/2015xli/jqassistant-graph-rag/internal/errors"
	"github.com/2015xli/jqassistant-graph-rag/internal/logging"
)

var (
	// Version information (set by build flags)
	Version = "dev"

	graphURI      string
	graphUser     string
	graphPassword string
	logLevel      string
	logFile       string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps error kinds to the documented process exit codes.
func exitCode(err error) int {
	switch apperrors.GetKind(err) {
	case apperrors.KindConfig:
		return 1
	case apperrors.KindGraphUnavailable:
		return 2
	default:
		return 3
	}
}

var rootCmd = &cobra.Command{
	Use:   "graphrag",
	Short: "Enrich a jQAssistant code graph into a summarized knowledge graph",
	Long: `graphrag normalizes the raw graph produced by a jQAssistant scan and
builds a hierarchical, LLM-summarized, embedded knowledge graph on top of
it, suitable for retrieval-augmented code exploration.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Initialize(logging.Config{
			Level:      logging.ParseLevel(logLevel),
			OutputFile: logFile,
		})
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&graphURI, "graph-uri", "", "graph database URI (default: GRAPH_URI env var or bolt://localhost:7687)")
	rootCmd.PersistentFlags().StringVar(&graphUser, "graph-user", "", "graph database user (default: GRAPH_USER env var or neo4j)")
	rootCmd.PersistentFlags().StringVar(&graphPassword, "graph-password", "", "graph database password (default: GRAPH_PASSWORD env var)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "INFO", "log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "log file path (default: stdout only)")

	rootCmd.AddCommand(enrichCmd)
	rootCmd.AddCommand(schemaCmd)
}
