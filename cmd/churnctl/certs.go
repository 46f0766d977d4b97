package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/streamwise/churn/pkg/tlsutil"
)

func newCertsCmd() *cobra.Command {
	opts := tlsutil.SelfSignedOptions{}

	cmd := &cobra.Command{
		Use:   "certs",
		Short: "Generate a self-signed CA and server pair for gRPC TLS",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := tlsutil.GenerateSelfSigned(opts); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote certificates to %s\n", opts.OutDir)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringSliceVar(&opts.Hosts, "host", []string{"localhost", "127.0.0.1"}, "DNS name or IP, repeatable")
	f.StringVar(&opts.OutDir, "out", "certs", "Output directory")
	f.StringVar(&opts.Organization, "org", "Streamwise", "Certificate organization")
	f.DurationVar(&opts.ValidFor, "valid-for", 365*24*time.Hour, "Certificate lifetime")
	return cmd
}
