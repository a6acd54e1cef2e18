package exchange

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"github.com/hxuan190/route-aggregator/internal/domain"
)

const AncillaryVersion uint8 = 1

const bpsDenominator = 10_000

type ConstantProductData struct {
	Pool   solana.PublicKey
	FeeBps uint16
}

type ConcentratedData struct {
	Pool    solana.PublicKey
	FeeTier uint32
}

type StableSwapData struct {
	Pool     solana.PublicKey
	IndexIn  uint8
	IndexOut uint8
	FeeBps   uint16
}

type WeightedPoolData struct {
	Pool      solana.PublicKey
	WeightIn  uint32
	WeightOut uint32
	FeeBps    uint16
}

type MulticallData struct {
	Calls []Call
}

func familyOf(payload interface{}) (domain.VenueFamily, error) {
	switch payload.(type) {
	case ConstantProductData, *ConstantProductData:
		return domain.FamilyConstantProduct, nil
	case ConcentratedData, *ConcentratedData:
		return domain.FamilyConcentratedLiquidity, nil
	case StableSwapData, *StableSwapData:
		return domain.FamilyStableSwap, nil
	case WeightedPoolData, *WeightedPoolData:
		return domain.FamilyWeightedPool, nil
	case MulticallData, *MulticallData:
		return domain.FamilyGenericMulticall, nil
	}
	return domain.FamilyUnknown, fmt.Errorf("%w: unsupported payload %T", domain.ErrInvalidAncillaryData, payload)
}

// EncodeAncillary serialises a family payload as [family][version][borsh].
func EncodeAncillary(payload interface{}) (domain.AncillaryData, error) {
	family, err := familyOf(payload)
	if err != nil {
		return nil, err
	}
	switch v := payload.(type) {
	case *ConstantProductData:
		payload = *v
	case *ConcentratedData:
		payload = *v
	case *StableSwapData:
		payload = *v
	case *WeightedPoolData:
		payload = *v
	case *MulticallData:
		payload = *v
	}
	var buf bytes.Buffer
	buf.WriteByte(byte(family))
	buf.WriteByte(AncillaryVersion)
	if err := bin.NewBorshEncoder(&buf).Encode(payload); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidAncillaryData, err)
	}
	return buf.Bytes(), nil
}

// DecodeAncillary fills out, which must be a pointer to a family payload.
func DecodeAncillary(data domain.AncillaryData, out interface{}) error {
	family, err := familyOf(out)
	if err != nil {
		return err
	}
	if len(data) < 2 {
		return fmt.Errorf("%w: %d bytes", domain.ErrInvalidAncillaryData, len(data))
	}
	if domain.VenueFamily(data[0]) != family {
		return fmt.Errorf("%w: family %s, expected %s", domain.ErrInvalidAncillaryData, domain.VenueFamily(data[0]), family)
	}
	if data[1] != AncillaryVersion {
		return fmt.Errorf("%w: version %d", domain.ErrInvalidAncillaryData, data[1])
	}
	dec := bin.NewBorshDecoder(data[2:])
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidAncillaryData, err)
	}
	if dec.HasRemaining() {
		return fmt.Errorf("%w: trailing bytes", domain.ErrInvalidAncillaryData)
	}
	return nil
}

func checkFee(feeBps uint16) error {
	if feeBps >= bpsDenominator {
		return fmt.Errorf("%w: fee %d bps", domain.ErrInvalidAncillaryData, feeBps)
	}
	return nil
}

func decodeConstantProduct(data domain.AncillaryData) (*ConstantProductData, error) {
	var d ConstantProductData
	if err := DecodeAncillary(data, &d); err != nil {
		return nil, err
	}
	return &d, checkFee(d.FeeBps)
}

func decodeStableSwap(data domain.AncillaryData) (*StableSwapData, error) {
	var d StableSwapData
	if err := DecodeAncillary(data, &d); err != nil {
		return nil, err
	}
	if d.IndexIn == d.IndexOut {
		return nil, fmt.Errorf("%w: indexIn == indexOut", domain.ErrInvalidAncillaryData)
	}
	return &d, checkFee(d.FeeBps)
}

func decodeWeighted(data domain.AncillaryData) (*WeightedPoolData, error) {
	var d WeightedPoolData
	if err := DecodeAncillary(data, &d); err != nil {
		return nil, err
	}
	if d.WeightIn == 0 || d.WeightOut == 0 {
		return nil, fmt.Errorf("%w: zero weight", domain.ErrInvalidAncillaryData)
	}
	return &d, checkFee(d.FeeBps)
}

func decodeConcentrated(data domain.AncillaryData) (*ConcentratedData, error) {
	var d ConcentratedData
	if err := DecodeAncillary(data, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func decodeMulticall(data domain.AncillaryData) (*MulticallData, error) {
	var d MulticallData
	if err := DecodeAncillary(data, &d); err != nil {
		return nil, err
	}
	if len(d.Calls) == 0 {
		return nil, fmt.Errorf("%w: no calls", domain.ErrInvalidAncillaryData)
	}
	return &d, nil
}
