package main

import (
	"github.com/spf13/cobra"

	"github.com/2015xli/jqassistant-graph-rag/internal/config"
	"github.com/2015xli/jqassistant-graph-rag/internal/graph"
	"github.com/2015xli/jqassistant-graph-rag/internal/schema"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Inspect the labels, relationships and properties of the scanned graph",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(".")
		if err != nil {
			return err
		}
		applyFlags(cfg)

		ctx := cmd.Context()
		gateway, err := graph.NewClient(ctx, cfg.Graph.URI, cfg.Graph.User, cfg.Graph.Password)
		if err != nil {
			return err
		}
		defer gateway.Close(ctx)

		return schema.NewAnalyzer(gateway).Run(ctx)
	},
}
