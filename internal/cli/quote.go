package cli

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"
	"github.com/spf13/cobra"

	"github.com/hxuan190/route-aggregator/internal/aggregator"
	"github.com/hxuan190/route-aggregator/internal/domain"
)

type planFlags struct {
	workspace string
	plan      string
}

func (f *planFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.workspace, "workspace", "w", "", "workspace YAML with venues, pools and balances")
	cmd.Flags().StringVarP(&f.plan, "plan", "p", "", "plan YAML")
	_ = cmd.MarkFlagRequired("workspace")
	_ = cmd.MarkFlagRequired("plan")
}

func (f *planFlags) load(ctx context.Context, opts *rootOptions) (*aggregator.Service, domain.Plan, error) {
	ws, err := LoadWorkspace(f.workspace)
	if err != nil {
		return nil, domain.Plan{}, err
	}
	plan, err := LoadPlan(f.plan)
	if err != nil {
		return nil, domain.Plan{}, err
	}
	svc, err := ws.Build(ctx, opts.rpcURL)
	if err != nil {
		return nil, domain.Plan{}, err
	}
	return svc, plan, nil
}

func parsePositive(name, s string) (*uint256.Int, error) {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", name, err)
	}
	if v.IsZero() {
		return nil, fmt.Errorf("--%s: %w", name, domain.ErrZeroAmount)
	}
	return v, nil
}

func newQuoteCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Quote a plan forward or in reverse",
	}
	cmd.AddCommand(
		newQuoteDirectionCmd(opts, domain.DirectionForward),
		newQuoteDirectionCmd(opts, domain.DirectionReverse),
	)
	return cmd
}

func newQuoteDirectionCmd(opts *rootOptions, dir domain.Direction) *cobra.Command {
	var (
		flags  planFlags
		amount string
	)
	use, short, amountHelp := "forward", "Output of the plan for an exact input", "exact input in smallest units"
	if dir == domain.DirectionReverse {
		use, short, amountHelp = "reverse", "Input the plan needs for an exact output", "desired output in smallest units"
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			amt, err := parsePositive("amount", amount)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			svc, plan, err := flags.load(ctx, opts)
			if err != nil {
				return err
			}

			var q *domain.Quote
			if dir == domain.DirectionForward {
				q, err = svc.QuoteForward(ctx, plan, amt)
			} else {
				q, err = svc.QuoteReverse(ctx, plan, amt)
			}
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), q.View())
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&amount, "amount", "a", "", amountHelp)
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

// ExecuteOutput is the result of an offline execution with the balances it
// left behind.
type ExecuteOutput struct {
	Result   domain.ExecuteResponse `json:"result" yaml:"result"`
	Balances []BalanceSpec          `json:"balances" yaml:"balances"`
}

func newExecuteCmd(opts *rootOptions) *cobra.Command {
	var (
		flags     planFlags
		amountIn  string
		payer     string
		recipient string
		minOut    string
		deadline  int64
	)
	cmd := &cobra.Command{
		Use:   "execute",
		Short: "Execute a plan against the workspace and print the resulting balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := parsePositive("amount-in", amountIn)
			if err != nil {
				return err
			}
			payerKey, err := solana.PublicKeyFromBase58(payer)
			if err != nil {
				return fmt.Errorf("--payer: %w", err)
			}
			recipientKey := payerKey
			if recipient != "" {
				if recipientKey, err = solana.PublicKeyFromBase58(recipient); err != nil {
					return fmt.Errorf("--recipient: %w", err)
				}
			}
			var minAmount *uint256.Int
			if minOut != "" {
				if minAmount, err = uint256.FromDecimal(minOut); err != nil {
					return fmt.Errorf("--min-out: %w", err)
				}
			}

			ctx := cmd.Context()
			svc, plan, err := flags.load(ctx, opts)
			if err != nil {
				return err
			}
			req := domain.ExecuteRequest{
				TokenIn:      plan.TokenIn(),
				TokenOut:     plan.TokenOut(),
				AmountIn:     in,
				Payer:        payerKey,
				Recipient:    recipientKey,
				Plan:         plan,
				Deadline:     deadline,
				MinAmountOut: minAmount,
			}
			res, err := svc.Execute(ctx, req)
			if err != nil {
				return err
			}

			out := ExecuteOutput{Result: res.View()}
			for _, b := range []struct {
				owner, token solana.PublicKey
			}{
				{payerKey, req.TokenIn},
				{recipientKey, req.TokenOut},
			} {
				bal, err := svc.BalanceOf(ctx, b.token, b.owner)
				if err != nil {
					return err
				}
				out.Balances = append(out.Balances, BalanceSpec{
					Owner:  b.owner.String(),
					Token:  domain.FormatToken(b.token),
					Amount: bal.Dec(),
				})
			}
			return opts.print(cmd.OutOrStdout(), out)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&amountIn, "amount-in", "", "exact input in smallest units")
	cmd.Flags().StringVar(&payer, "payer", "", "account debited for the input")
	cmd.Flags().StringVar(&recipient, "recipient", "", "account credited with the output (default: payer)")
	cmd.Flags().StringVar(&minOut, "min-out", "", "minimum acceptable output")
	cmd.Flags().Int64Var(&deadline, "deadline", 0, "unix deadline in seconds (default: now plus 60s)")
	_ = cmd.MarkFlagRequired("amount-in")
	_ = cmd.MarkFlagRequired("payer")
	return cmd
}
