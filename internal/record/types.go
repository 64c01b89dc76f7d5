package record

import "strings"

// =============================================================================
// REFERENCE TYPE
// =============================================================================

// ReferenceType is the structured-reference regime of a payment.
type ReferenceType int

const (
	// ReferenceUnknown is any value outside the three defined regimes.
	ReferenceUnknown ReferenceType = iota

	// ReferenceQRR is a 27-digit QR reference protected by the Swiss MOD-10.
	ReferenceQRR

	// ReferenceSCOR is an ISO 11649 creditor reference protected by MOD 97-10.
	ReferenceSCOR

	// ReferenceNON means no structured reference; only a free-text message.
	ReferenceNON
)

// ParseReferenceType maps a reference-type field to its enum value. The
// comparison is case-insensitive.
func ParseReferenceType(value string) ReferenceType {
	switch strings.ToUpper(value) {
	case "QRR":
		return ReferenceQRR
	case "SCOR":
		return ReferenceSCOR
	case "NON":
		return ReferenceNON
	default:
		return ReferenceUnknown
	}
}

func (t ReferenceType) String() string {
	switch t {
	case ReferenceQRR:
		return "QRR"
	case ReferenceSCOR:
		return "SCOR"
	case ReferenceNON:
		return "NON"
	default:
		return "UNKNOWN"
	}
}

// =============================================================================
// ADDRESS TYPE
// =============================================================================

// AddressType selects which address lines of a party are used.
type AddressType int

const (
	// AddressUnknown is any value other than "S" or "K".
	AddressUnknown AddressType = iota

	// AddressStructured ("S") keeps street, house number, postcode and city
	// in separate lines.
	AddressStructured

	// AddressCombined ("K") uses two free-form lines; postcode and city must
	// be empty.
	AddressCombined
)

// ParseAddressType maps an address-type field to its enum value. Only the
// upper-case codes are defined by the standard.
func ParseAddressType(value string) AddressType {
	switch value {
	case "S":
		return AddressStructured
	case "K":
		return AddressCombined
	default:
		return AddressUnknown
	}
}

func (t AddressType) String() string {
	switch t {
	case AddressStructured:
		return "S"
	case AddressCombined:
		return "K"
	default:
		return "UNKNOWN"
	}
}
