package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSchemaCmd(opts *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the feature schema of the artifact set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			rt, err := opts.open(ctx, opts.logger(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			defer rt.Close()

			schema, err := rt.describe.Execute(ctx)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if output == "json" {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(schema)
			}

			fmt.Fprintf(w, "model:     %s (%s)\n", schema.ModelVersion, schema.ModelType)
			fmt.Fprintf(w, "threshold: %.2f\n", schema.Threshold)
			fmt.Fprintf(w, "numeric:   %s\n", strings.Join(schema.NumericFields, ", "))
			fmt.Fprintf(w, "columns:   %d\n", len(schema.Columns))
			for i, col := range schema.Columns {
				fmt.Fprintf(w, "  %2d  %s\n", i, col)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format (text, json)")
	return cmd
}
