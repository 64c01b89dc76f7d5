package validation

import (
	"strings"
	"testing"

	"github.com/ginjaninja78/swissqr/internal/record"
	"github.com/ginjaninja78/swissqr/internal/schema"
	"github.com/ginjaninja78/swissqr/internal/testutil"
)

func TestValidateAcceptsValidRecords(t *testing.T) {
	tests := []struct {
		name   string
		fields testutil.Fields
	}{
		{name: "minimal NON record", fields: testutil.MinimalFields()},
		{name: "QRR record", fields: testutil.QRRFields()},
		{name: "SCOR record", fields: testutil.SCORFields()},
		{name: "forward compatible version", fields: testutil.MinimalFields().With(schema.Version, "0299")},
		{name: "lower case reference type", fields: testutil.QRRFields().With(schema.ReferenceType, "qrr")},
		{name: "lower case currency", fields: testutil.QRRFields().With(schema.Currency, "eur")},
		{name: "lower case country", fields: testutil.MinimalFields().With(schema.DebtorCountry, "de")},
		{name: "no amount", fields: testutil.MinimalFields().With(schema.Amount, "")},
		{name: "no street", fields: testutil.MinimalFields().With(schema.CreditorStreet, "")},
		{
			name: "combined address",
			fields: testutil.MinimalFields().
				With(schema.CreditorType, "K").
				With(schema.CreditorStreet, "Rue du Lac 1268").
				With(schema.CreditorHouse, "2501 Biel").
				With(schema.CreditorPostal, "").
				With(schema.CreditorCity, ""),
		},
		{name: "message at cap", fields: testutil.MinimalFields().With(schema.Message, strings.Repeat("x", 140))},
		{name: "multibyte message at cap", fields: testutil.MinimalFields().With(schema.Message, strings.Repeat("é", 140))},
		{name: "alternative procedure at cap", fields: testutil.MinimalFields().With(schema.AltProcedure1, strings.Repeat("x", 100))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.fields.Raw())
			if !result.Valid() {
				t.Fatalf("Validate() = %v, want valid", result.Err)
			}
			if result.Error() != nil {
				t.Errorf("Error() = %v, want nil", result.Error())
			}
			if result.Schema == nil || result.Schema.Version() != schema.DefaultVersion {
				t.Errorf("Schema = %v, want version %s", result.Schema, schema.DefaultVersion)
			}
		})
	}
}

func TestValidateRejections(t *testing.T) {
	long := func(n int) string { return strings.Repeat("a", n) }

	tests := []struct {
		name       string
		fields     testutil.Fields
		wantField  schema.Field
		wantReason Reason
	}{
		// Header.
		{"bad sentinel", testutil.MinimalFields().With(schema.QRType, "SPX"), schema.QRType, ReasonBadValue},
		{"missing version", testutil.MinimalFields().With(schema.Version, ""), schema.Version, ReasonMissing},
		{"unsupported version", testutil.MinimalFields().With(schema.Version, "0100"), schema.Version, ReasonUnsupported},
		{"bad coding", testutil.MinimalFields().With(schema.Coding, "2"), schema.Coding, ReasonBadValue},
		{"missing coding", testutil.MinimalFields().With(schema.Coding, ""), schema.Coding, ReasonMissing},
		{"empty trailer", testutil.MinimalFields().With(schema.Trailer, ""), schema.Trailer, ReasonMissing},
		{"lower case trailer", testutil.MinimalFields().With(schema.Trailer, "epd"), schema.Trailer, ReasonBadValue},

		// Mandatory fields, in check order.
		{"missing iban", testutil.MinimalFields().With(schema.IBAN, ""), schema.IBAN, ReasonMissing},
		{"missing currency", testutil.MinimalFields().With(schema.Currency, ""), schema.Currency, ReasonMissing},
		{"missing creditor type", testutil.MinimalFields().With(schema.CreditorType, ""), schema.CreditorType, ReasonMissing},
		{"missing debtor type", testutil.MinimalFields().With(schema.DebtorType, ""), schema.DebtorType, ReasonMissing},
		{"missing creditor name", testutil.MinimalFields().With(schema.CreditorName, ""), schema.CreditorName, ReasonMissing},
		{"missing debtor name", testutil.MinimalFields().With(schema.DebtorName, ""), schema.DebtorName, ReasonMissing},
		{"missing creditor country", testutil.MinimalFields().With(schema.CreditorCountry, ""), schema.CreditorCountry, ReasonMissing},
		{"missing debtor country", testutil.MinimalFields().With(schema.DebtorCountry, ""), schema.DebtorCountry, ReasonMissing},

		// IBAN.
		{"iban checksum", testutil.MinimalFields().With(schema.IBAN, "CH9300762011623852958"), schema.IBAN, ReasonBadChecksum},
		{"iban with spaces", testutil.MinimalFields().With(schema.IBAN, "CH93 0076 2011 6238 5295 7"), schema.IBAN, ReasonMalformed},

		// Reference types.
		{"unknown reference type", testutil.MinimalFields().With(schema.ReferenceType, "IBAN"), schema.ReferenceType, ReasonBadType},
		{"empty reference type", testutil.MinimalFields().With(schema.ReferenceType, ""), schema.ReferenceType, ReasonBadType},
		{"NON with reference", testutil.MinimalFields().With(schema.Reference, testutil.CredReference), schema.Reference, ReasonNotEmpty},
		{"QRR without qr-iban", testutil.QRRFields().With(schema.IBAN, testutil.IBAN), schema.IBAN, ReasonBadValue},
		{"QRR in USD", testutil.QRRFields().With(schema.Currency, "USD"), schema.Currency, ReasonBadValue},
		{"QRR too short", testutil.QRRFields().With(schema.Reference, "21000000000313947143000901"), schema.Reference, ReasonBadLength},
		{"QRR bad check digit", testutil.QRRFields().With(schema.Reference, "210000000003139471430009018"), schema.Reference, ReasonBadChecksum},
		{"QRR non digits", testutil.QRRFields().With(schema.Reference, "21000000000313947143000901A"), schema.Reference, ReasonMalformed},
		{"SCOR too short", testutil.SCORFields().With(schema.Reference, "RF18"), schema.Reference, ReasonBadLength},
		{"SCOR too long", testutil.SCORFields().With(schema.Reference, "RF18"+long(22)), schema.Reference, ReasonBadLength},
		{"SCOR bad checksum", testutil.SCORFields().With(schema.Reference, "RF18539007547035"), schema.Reference, ReasonBadChecksum},

		// Address blocks.
		{"creditor name too long", testutil.MinimalFields().With(schema.CreditorName, long(71)), schema.CreditorName, ReasonTooLong},
		{"creditor country three letters", testutil.MinimalFields().With(schema.CreditorCountry, "CHE"), schema.CreditorCountry, ReasonBadLength},
		{"creditor unknown address type", testutil.MinimalFields().With(schema.CreditorType, "X"), schema.CreditorType, ReasonBadType},
		{"creditor lower case address type", testutil.MinimalFields().With(schema.CreditorType, "s"), schema.CreditorType, ReasonBadType},
		{"S missing postcode", testutil.MinimalFields().With(schema.CreditorPostal, ""), schema.CreditorPostal, ReasonMissing},
		{"S postcode too long", testutil.MinimalFields().With(schema.CreditorPostal, long(17)), schema.CreditorPostal, ReasonTooLong},
		{"S missing city", testutil.MinimalFields().With(schema.CreditorCity, ""), schema.CreditorCity, ReasonMissing},
		{"S city too long", testutil.MinimalFields().With(schema.CreditorCity, long(36)), schema.CreditorCity, ReasonTooLong},
		{"S missing house", testutil.MinimalFields().With(schema.CreditorHouse, ""), schema.CreditorHouse, ReasonMissing},
		{"S house too long", testutil.MinimalFields().With(schema.CreditorHouse, long(17)), schema.CreditorHouse, ReasonTooLong},
		{"S street too long", testutil.MinimalFields().With(schema.CreditorStreet, long(71)), schema.CreditorStreet, ReasonTooLong},
		{"K with postcode", testutil.MinimalFields().With(schema.CreditorType, "K"), schema.CreditorPostal, ReasonNotEmpty},
		{"K with city", testutil.MinimalFields().With(schema.CreditorType, "K").With(schema.CreditorPostal, ""), schema.CreditorCity, ReasonNotEmpty},
		{
			"K missing line 2",
			testutil.MinimalFields().With(schema.CreditorType, "K").With(schema.CreditorPostal, "").With(schema.CreditorCity, "").With(schema.CreditorHouse, ""),
			schema.CreditorHouse, ReasonMissing,
		},
		{
			"K line 2 too long",
			testutil.MinimalFields().With(schema.CreditorType, "K").With(schema.CreditorPostal, "").With(schema.CreditorCity, "").With(schema.CreditorHouse, long(71)),
			schema.CreditorHouse, ReasonTooLong,
		},
		{"debtor name too long", testutil.MinimalFields().With(schema.DebtorName, long(71)), schema.DebtorName, ReasonTooLong},
		{"debtor K with postcode", testutil.MinimalFields().With(schema.DebtorType, "K"), schema.DebtorPostal, ReasonNotEmpty},
		{"debtor unknown address type", testutil.MinimalFields().With(schema.DebtorType, "Z"), schema.DebtorType, ReasonBadType},

		// Free text.
		{"message too long", testutil.MinimalFields().With(schema.Message, long(141)), schema.Message, ReasonTooLong},
		{"additional info too long", testutil.MinimalFields().With(schema.AdditionalInfo, long(141)), schema.AdditionalInfo, ReasonTooLong},
		{"alt procedure 1 too long", testutil.MinimalFields().With(schema.AltProcedure1, long(101)), schema.AltProcedure1, ReasonTooLong},
		{"alt procedure 2 too long", testutil.MinimalFields().With(schema.AltProcedure2, long(101)), schema.AltProcedure2, ReasonTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.fields.Raw())
			if result.Valid() {
				t.Fatalf("Validate() = valid, want %s/%s", tt.wantField, tt.wantReason)
			}
			if result.Err.Field != tt.wantField || result.Err.Reason != tt.wantReason {
				t.Errorf("Validate() = %s/%s (%s), want %s/%s",
					result.Err.Field, result.Err.Reason, result.Err.Message, tt.wantField, tt.wantReason)
			}
		})
	}
}

func TestValidateReservedLines(t *testing.T) {
	s, _ := schema.Resolve(schema.DefaultVersion)

	for _, line := range s.Reserved() {
		raw := testutil.MinimalFields().Raw()
		raw[line] = "Ultimate Creditor AG"

		result := Validate(raw)
		if result.Valid() || result.Err.Field != schema.Reserved || result.Err.Reason != ReasonNotEmpty {
			t.Errorf("reserved line %d: Validate() = %v, want _RESERVED/NOT_EMPTY", line, result.Err)
		}
	}
}

func TestValidateFirstFailureWins(t *testing.T) {
	// Broken trailer, IBAN and debtor name at once: the trailer is checked first.
	fields := testutil.MinimalFields().
		With(schema.Trailer, "").
		With(schema.IBAN, "CH9300762011623852958").
		With(schema.DebtorName, "")

	for i := 0; i < 3; i++ {
		result := Validate(fields.Raw())
		if result.Valid() || result.Err.Field != schema.Trailer {
			t.Fatalf("run %d: Validate() = %v, want EPD", i, result.Err)
		}
	}
}

func TestValidateShortRecord(t *testing.T) {
	tests := []struct {
		name      string
		raw       record.Raw
		wantField schema.Field
	}{
		{name: "empty", raw: record.Raw{}, wantField: schema.QRType},
		{name: "sentinel only", raw: record.Raw{"SPC"}, wantField: schema.Version},
		{name: "header only", raw: record.Raw{"SPC", "0200", "1"}, wantField: schema.Trailer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.raw)
			if result.Valid() || result.Err.Field != tt.wantField {
				t.Errorf("Validate(%q) = %v, want %s", tt.raw, result.Err, tt.wantField)
			}
		})
	}
}

func TestValidateNormalized(t *testing.T) {
	s, _ := schema.Resolve(schema.DefaultVersion)

	n := record.Normalize(testutil.QRRFields().With(schema.Currency, "chf").Raw(), s)
	result := ValidateNormalized(n)
	if !result.Valid() {
		t.Fatalf("ValidateNormalized() = %v, want valid", result.Err)
	}
	if got := result.Record.Get(schema.Currency); got != "CHF" {
		t.Errorf("Record currency = %q, want CHF", got)
	}

	if result := ValidateNormalized(record.Normalized{}); result.Valid() || result.Err.Field != schema.QRType {
		t.Errorf("ValidateNormalized(zero) = %v, want SPC failure", result.Err)
	}
}

func TestValidationErrorMessage(t *testing.T) {
	result := Validate(testutil.MinimalFields().With(schema.IBAN, "CH9300762011623852958").Raw())
	if result.Valid() {
		t.Fatal("Validate() = valid, want IBAN failure")
	}

	msg := result.Error().Error()
	for _, want := range []string{"BAD_CHECKSUM", "IBAN", "CH9300762011623852958"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, want it to contain %q", msg, want)
		}
	}

	if got := FormatResult(Validate(testutil.MinimalFields().Raw())); got != "valid (version 0200)" {
		t.Errorf("FormatResult(valid) = %q", got)
	}
}
