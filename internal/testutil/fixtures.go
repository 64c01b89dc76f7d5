// Package testutil provides sample QR-bill payloads for tests.
package testutil

import (
	"strings"

	"github.com/ginjaninja78/swissqr/internal/record"
	"github.com/ginjaninja78/swissqr/internal/schema"
)

// Sample account and reference values. Every value passes its checksum.
const (
	IBAN          = "CH9300762011623852957"
	QRIBAN        = "CH4431999123000889012"
	QRReference   = "210000000003139471430009017"
	CredReference = "RF18539007547034"
)

// Fields is a payload keyed by field name. Fields not present are empty.
type Fields map[schema.Field]string

// MinimalFields returns a valid payload with reference type NON and
// structured addresses for both parties.
func MinimalFields() Fields {
	return Fields{
		schema.QRType:          "SPC",
		schema.Version:         "0200",
		schema.Coding:          "1",
		schema.IBAN:            IBAN,
		schema.CreditorType:    "S",
		schema.CreditorName:    "Robert Schneider AG",
		schema.CreditorStreet:  "Rue du Lac",
		schema.CreditorHouse:   "1268",
		schema.CreditorPostal:  "2501",
		schema.CreditorCity:    "Biel",
		schema.CreditorCountry: "CH",
		schema.Amount:          "1949.75",
		schema.Currency:        "CHF",
		schema.DebtorType:      "S",
		schema.DebtorName:      "Pia-Maria Rutschmann-Schnyder",
		schema.DebtorStreet:    "Grosse Marktgasse",
		schema.DebtorHouse:     "28",
		schema.DebtorPostal:    "9400",
		schema.DebtorCity:      "Rorschach",
		schema.DebtorCountry:   "CH",
		schema.ReferenceType:   "NON",
		schema.Message:         "Order of 15 June 2020",
		schema.Trailer:         "EPD",
	}
}

// QRRFields returns a valid payload using a QR-IBAN and a QR reference.
func QRRFields() Fields {
	f := MinimalFields()
	f[schema.IBAN] = QRIBAN
	f[schema.ReferenceType] = "QRR"
	f[schema.Reference] = QRReference
	return f
}

// SCORFields returns a valid payload using a creditor reference.
func SCORFields() Fields {
	f := MinimalFields()
	f[schema.ReferenceType] = "SCOR"
	f[schema.Reference] = CredReference
	f[schema.Currency] = "EUR"
	return f
}

// With returns a copy of f with the given field replaced.
func (f Fields) With(field schema.Field, value string) Fields {
	out := make(Fields, len(f)+1)
	for k, v := range f {
		out[k] = v
	}
	out[field] = value
	return out
}

// Raw lays the fields out on the 0200 record lines.
func (f Fields) Raw() record.Raw {
	s, err := schema.Resolve(schema.DefaultVersion)
	if err != nil {
		panic(err)
	}

	raw := make(record.Raw, s.Lines())
	for field, value := range f {
		raw[s.MustIndex(field)] = value
	}
	return raw
}

// Text returns the payload as decoded QR text with "\n" line breaks.
func (f Fields) Text() string {
	return strings.Join(f.Raw(), "\n")
}
