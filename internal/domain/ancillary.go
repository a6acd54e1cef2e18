package domain

import (
	"encoding/json"
	"fmt"

	"github.com/mr-tron/base58"
)

// AncillaryData is the opaque venue payload of a path, base58 on the wire.
type AncillaryData []byte

func (a AncillaryData) String() string {
	return base58.Encode(a)
}

func ParseAncillaryData(s string) (AncillaryData, error) {
	if s == "" {
		return AncillaryData{}, nil
	}
	raw, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAncillaryData, err)
	}
	return raw, nil
}

func (a AncillaryData) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *AncillaryData) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseAncillaryData(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func (a AncillaryData) MarshalYAML() (interface{}, error) {
	return a.String(), nil
}

func (a *AncillaryData) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseAncillaryData(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Family reads the family tag without decoding the payload.
func (a AncillaryData) Family() VenueFamily {
	if len(a) == 0 {
		return FamilyUnknown
	}
	return VenueFamily(a[0])
}
