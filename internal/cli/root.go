// Package cli implements routectl, an offline front end to the aggregation
// engine: quotes and executions against a YAML workspace, and ancillary data
// encoding.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

type rootOptions struct {
	debug  bool
	output string
	rpcURL string
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "routectl",
		Short: "Quote, execute and encode split-route swap plans offline",
		Long: `routectl loads a workspace of venues, pools and balances into an
in-memory engine and runs plans against it. Plans and workspaces are YAML.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			} else {
				zerolog.SetGlobalLevel(zerolog.WarnLevel)
			}
		},
	}
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")
	cmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "yaml", "output format: yaml or json")
	cmd.PersistentFlags().StringVar(&opts.rpcURL, "rpc-url", "", "RPC endpoint for concentrated venues and token decimals")

	cmd.AddCommand(
		newQuoteCmd(opts),
		newExecuteCmd(opts),
		newEncodeCmd(opts),
		newDecodeCmd(opts),
		newFingerprintCmd(opts),
	)
	return cmd
}

func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func (o *rootOptions) print(w io.Writer, v interface{}) error {
	var (
		raw []byte
		err error
	)
	switch o.output {
	case "json":
		raw, err = sonic.ConfigStd.MarshalIndent(v, "", "  ")
		if err == nil {
			raw = append(raw, '\n')
		}
	case "yaml":
		raw, err = yaml.Marshal(v)
	default:
		return fmt.Errorf("unknown output format %q", o.output)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(raw)
	return err
}
