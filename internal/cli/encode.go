package cli

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/hxuan190/route-aggregator/internal/domain"
	"github.com/hxuan190/route-aggregator/internal/services/exchange"
)

func newEncodeCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode venue ancillary data as base58",
	}

	var (
		pool        string
		cpFee       uint16
		stableFee   uint16
		weightedFee uint16
		indexIn     uint8
		indexOut    uint8
		weightIn    uint32
		weightOut   uint32
		feeTier     uint32
	)
	encodeWith := func(build func(solana.PublicKey) interface{}) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			key, err := solana.PublicKeyFromBase58(pool)
			if err != nil {
				return fmt.Errorf("--pool: %w", err)
			}
			data, err := exchange.EncodeAncillary(build(key))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), data.String())
			return err
		}
	}
	sub := func(use, short string, build func(solana.PublicKey) interface{}) *cobra.Command {
		c := &cobra.Command{Use: use, Short: short, Args: cobra.NoArgs, RunE: encodeWith(build)}
		c.Flags().StringVar(&pool, "pool", "", "pool address")
		_ = c.MarkFlagRequired("pool")
		return c
	}

	cp := sub("constant-product", "x*y=k pool", func(k solana.PublicKey) interface{} {
		return &exchange.ConstantProductData{Pool: k, FeeBps: cpFee}
	})
	cp.Flags().Uint16Var(&cpFee, "fee-bps", 30, "swap fee in basis points")

	stable := sub("stable", "stable-swap pool", func(k solana.PublicKey) interface{} {
		return &exchange.StableSwapData{Pool: k, IndexIn: indexIn, IndexOut: indexOut, FeeBps: stableFee}
	})
	stable.Flags().Uint16Var(&stableFee, "fee-bps", 4, "swap fee in basis points")
	stable.Flags().Uint8Var(&indexIn, "index-in", 0, "pool index of the input token")
	stable.Flags().Uint8Var(&indexOut, "index-out", 1, "pool index of the output token")

	weighted := sub("weighted", "weighted pool", func(k solana.PublicKey) interface{} {
		return &exchange.WeightedPoolData{Pool: k, WeightIn: weightIn, WeightOut: weightOut, FeeBps: weightedFee}
	})
	weighted.Flags().Uint16Var(&weightedFee, "fee-bps", 30, "swap fee in basis points")
	weighted.Flags().Uint32Var(&weightIn, "weight-in", 50, "weight of the input token")
	weighted.Flags().Uint32Var(&weightOut, "weight-out", 50, "weight of the output token")

	concentrated := sub("concentrated", "concentrated-liquidity pool", func(k solana.PublicKey) interface{} {
		return &exchange.ConcentratedData{Pool: k, FeeTier: feeTier}
	})
	concentrated.Flags().Uint32Var(&feeTier, "fee-tier", 500, "pool fee tier")

	cmd.AddCommand(cp, stable, weighted, concentrated)
	return cmd
}

// DecodedAncillary is the readable form of an ancillary payload.
type DecodedAncillary struct {
	Family string            `json:"family" yaml:"family"`
	Fields map[string]string `json:"fields" yaml:"fields"`
}

func decodeAncillary(data domain.AncillaryData) (*DecodedAncillary, error) {
	out := &DecodedAncillary{Family: data.Family().String(), Fields: map[string]string{}}
	switch data.Family() {
	case domain.FamilyConstantProduct:
		var v exchange.ConstantProductData
		if err := exchange.DecodeAncillary(data, &v); err != nil {
			return nil, err
		}
		out.Fields["pool"] = v.Pool.String()
		out.Fields["feeBps"] = fmt.Sprint(v.FeeBps)
	case domain.FamilyStableSwap:
		var v exchange.StableSwapData
		if err := exchange.DecodeAncillary(data, &v); err != nil {
			return nil, err
		}
		out.Fields["pool"] = v.Pool.String()
		out.Fields["indexIn"] = fmt.Sprint(v.IndexIn)
		out.Fields["indexOut"] = fmt.Sprint(v.IndexOut)
		out.Fields["feeBps"] = fmt.Sprint(v.FeeBps)
	case domain.FamilyWeightedPool:
		var v exchange.WeightedPoolData
		if err := exchange.DecodeAncillary(data, &v); err != nil {
			return nil, err
		}
		out.Fields["pool"] = v.Pool.String()
		out.Fields["weightIn"] = fmt.Sprint(v.WeightIn)
		out.Fields["weightOut"] = fmt.Sprint(v.WeightOut)
		out.Fields["feeBps"] = fmt.Sprint(v.FeeBps)
	case domain.FamilyConcentratedLiquidity:
		var v exchange.ConcentratedData
		if err := exchange.DecodeAncillary(data, &v); err != nil {
			return nil, err
		}
		out.Fields["pool"] = v.Pool.String()
		out.Fields["feeTier"] = fmt.Sprint(v.FeeTier)
	case domain.FamilyGenericMulticall:
		var v exchange.MulticallData
		if err := exchange.DecodeAncillary(data, &v); err != nil {
			return nil, err
		}
		out.Fields["calls"] = fmt.Sprint(len(v.Calls))
		for i, c := range v.Calls {
			out.Fields[fmt.Sprintf("call%d.target", i)] = c.Target.String()
			out.Fields[fmt.Sprintf("call%d.bytes", i)] = fmt.Sprint(len(c.CallData))
		}
	default:
		return nil, fmt.Errorf("%w: unknown family tag", domain.ErrInvalidAncillaryData)
	}
	return out, nil
}

func newDecodeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "decode <base58>",
		Short: "Decode base58 ancillary data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := domain.ParseAncillaryData(args[0])
			if err != nil {
				return err
			}
			decoded, err := decodeAncillary(data)
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), decoded)
		},
	}
}

func newFingerprintCmd(opts *rootOptions) *cobra.Command {
	var plan string
	cmd := &cobra.Command{
		Use:   "fingerprint",
		Short: "Print the hash of a plan's canonical encoding",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := LoadPlan(plan)
			if err != nil {
				return err
			}
			hash, err := p.FingerprintHex()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}
	cmd.Flags().StringVarP(&plan, "plan", "p", "", "plan YAML")
	_ = cmd.MarkFlagRequired("plan")
	return cmd
}
