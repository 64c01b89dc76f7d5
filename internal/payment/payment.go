// =============================================================================
// Swiss QR Reader - Outgoing Payment Adapter
// =============================================================================
//
// This module turns a validated QR-bill record into the outgoing-payment
// object accepted by accounting systems (bexio outgoing payment layout). Only
// creditor data is carried over; the debtor is the party paying the bill.
//
// MAPPING:
//   Reference type QRR or SCOR -> payment_type "QR", reference_no = reference
//   Reference type NON         -> payment_type "IBAN", message = communication
//   Address type K             -> line 2 is split into postcode and city
//   Address type S             -> house number, postcode and city as given
//   IBAN country = home        -> fee_type "NO_FEE", otherwise "BREAKDOWN"
//
// =============================================================================

package payment

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/swissqr/internal/record"
	"github.com/ginjaninja78/swissqr/internal/schema"
	"github.com/ginjaninja78/swissqr/internal/validation"
)

var (
	// ErrInvalidRecord is returned for records that did not pass validation.
	ErrInvalidRecord = errors.New("record is not valid")

	// ErrBadAmount is returned when the amount field is not a decimal number.
	ErrBadAmount = errors.New("invalid amount")
)

// DefaultHomeCountry is used when Options.HomeCountry is empty.
const DefaultHomeCountry = "CH"

// emptyStreet stands in for a missing street line.
const emptyStreet = "-"

// PaymentType selects how the receiving bank identifies the payment.
type PaymentType string

const (
	PaymentTypeQR   PaymentType = "QR"
	PaymentTypeIBAN PaymentType = "IBAN"
)

// FeeType selects who carries the transfer fees.
type FeeType string

const (
	FeeTypeNoFee     FeeType = "NO_FEE"
	FeeTypeBreakdown FeeType = "BREAKDOWN"
)

// OutgoingPayment is the payment object produced from one QR-bill.
type OutgoingPayment struct {
	BillID          string              `json:"bill_id,omitempty"`
	PaymentType     PaymentType         `json:"payment_type"`
	ReferenceNo     string              `json:"reference_no,omitempty"`
	Message         string              `json:"message,omitempty"`
	CurrencyCode    string              `json:"currency_code"`
	Amount          decimal.NullDecimal `json:"amount"`
	IsSalaryPayment bool                `json:"is_salary_payment"`

	ReceiverIBAN        string `json:"receiver_iban"`
	ReceiverName        string `json:"receiver_name"`
	ReceiverCountryCode string `json:"receiver_country_code"`
	ReceiverStreet      string `json:"receiver_street"`
	ReceiverHouseNo     string `json:"receiver_house_no,omitempty"`
	ReceiverPostcode    string `json:"receiver_postcode"`
	ReceiverCity        string `json:"receiver_city"`

	FeeType FeeType `json:"fee_type"`
}

// Options tunes the adapter.
type Options struct {
	// BillID links the payment to an existing bill, when set.
	BillID string

	// HomeCountry is the two-letter country of the paying account. Transfers
	// to an IBAN of the same country are domestic and carry no fee split.
	HomeCountry string
}

// FromPayload validates raw and adapts it in one step. The validation result
// is returned even when adaptation fails so callers can report the failure.
func FromPayload(raw record.Raw, opts Options) (*OutgoingPayment, *validation.Result, error) {
	result := validation.Validate(raw)
	p, err := FromResult(result, opts)
	return p, result, err
}

// FromResult builds the outgoing payment for a validated record.
//
// PARAMETERS:
//   - result: The validation result; it must be valid.
//   - opts: Adapter options.
//
// RETURNS:
//   - The outgoing payment.
//   - ErrInvalidRecord (wrapping the validation failure) for invalid records,
//     or ErrBadAmount when the amount cannot be parsed.
func FromResult(result *validation.Result, opts Options) (*OutgoingPayment, error) {
	if result == nil {
		return nil, ErrInvalidRecord
	}
	if !result.Valid() {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, result.Err)
	}

	n := result.Record

	amount, err := parseAmount(n.Get(schema.Amount))
	if err != nil {
		return nil, err
	}

	p := &OutgoingPayment{
		BillID:              opts.BillID,
		CurrencyCode:        n.Get(schema.Currency),
		Amount:              amount,
		IsSalaryPayment:     false,
		ReceiverIBAN:        n.Get(schema.IBAN),
		ReceiverName:        n.Get(schema.CreditorName),
		ReceiverCountryCode: n.Get(schema.CreditorCountry),
	}

	switch n.ReferenceType() {
	case record.ReferenceQRR, record.ReferenceSCOR:
		p.PaymentType = PaymentTypeQR
		p.ReferenceNo = n.Get(schema.Reference)
	case record.ReferenceNON:
		p.PaymentType = PaymentTypeIBAN
		p.Message = n.Get(schema.Message)
	default:
		return nil, fmt.Errorf("%w: unknown reference type %q", ErrInvalidRecord, n.Get(schema.ReferenceType))
	}

	setReceiverAddress(p, n)
	p.FeeType = feeType(p.ReceiverIBAN, opts.HomeCountry)

	return p, nil
}

// setReceiverAddress copies the creditor address onto p.
func setReceiverAddress(p *OutgoingPayment, n record.Normalized) {
	block := schema.Creditor

	p.ReceiverStreet = n.Get(block.Street)
	if p.ReceiverStreet == "" {
		p.ReceiverStreet = emptyStreet
	}

	if n.AddressType(block) == record.AddressCombined {
		postcode, city, _ := strings.Cut(n.Get(block.House), " ")
		p.ReceiverPostcode = strings.TrimSpace(postcode)
		p.ReceiverCity = strings.TrimSpace(city)
		return
	}

	p.ReceiverHouseNo = n.Get(block.House)
	p.ReceiverPostcode = n.Get(block.Postal)
	p.ReceiverCity = n.Get(block.City)
}

// feeType compares the IBAN country prefix with the home country.
func feeType(iban, home string) FeeType {
	if home == "" {
		home = DefaultHomeCountry
	}
	if len(iban) >= 2 && strings.EqualFold(iban[:2], home) {
		return FeeTypeNoFee
	}
	return FeeTypeBreakdown
}

// parseAmount reads the optional amount field. An empty field leaves the
// amount open for the payer to fill in.
func parseAmount(value string) (decimal.NullDecimal, error) {
	if value == "" {
		return decimal.NullDecimal{}, nil
	}

	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("%w %q: %w", ErrBadAmount, value, err)
	}
	if d.IsNegative() {
		return decimal.NullDecimal{}, fmt.Errorf("%w %q: must not be negative", ErrBadAmount, value)
	}

	return decimal.NewNullDecimal(d), nil
}
