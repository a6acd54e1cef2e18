package domain

import "github.com/gagliardetto/solana-go"

var (
	// NativeMint marks native-currency legs. Venues never see it; the engine
	// maps it to WrappedNativeMint before pricing or execution.
	NativeMint        = solana.SystemProgramID
	WrappedNativeMint = solana.SolMint
)

const NativeDecimals uint8 = 9

func IsNative(token solana.PublicKey) bool {
	return token.Equals(NativeMint)
}

// WrapIfNative maps the native sentinel to its wrapped mint.
func WrapIfNative(token solana.PublicKey) solana.PublicKey {
	if IsNative(token) {
		return WrappedNativeMint
	}
	return token
}

// SameToken compares two tokens, treating native and wrapped native as equal.
func SameToken(a, b solana.PublicKey) bool {
	return WrapIfNative(a).Equals(WrapIfNative(b))
}

const nativeAlias = "native"

// ParseToken accepts a base58 mint or "native" for the native sentinel.
func ParseToken(s string) (solana.PublicKey, error) {
	if s == nativeAlias {
		return NativeMint, nil
	}
	return solana.PublicKeyFromBase58(s)
}

func FormatToken(t solana.PublicKey) string {
	if IsNative(t) {
		return nativeAlias
	}
	return t.String()
}
