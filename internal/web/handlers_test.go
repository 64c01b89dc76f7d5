package web

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/ginjaninja78/swissqr/internal/schema"
	"github.com/ginjaninja78/swissqr/internal/testutil"
)

func newTestServer() *Server {
	gin.SetMode(gin.TestMode)
	return NewServer(Options{
		HomeCountry: "CH",
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func parseJSONResponse(t *testing.T, body *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse response %q: %v", body.String(), err)
	}
	return result
}

func jsonBody(t *testing.T, payload string) *bytes.Buffer {
	t.Helper()
	data, err := json.Marshal(payloadRequest{Payload: payload})
	if err != nil {
		t.Fatal(err)
	}
	return bytes.NewBuffer(data)
}

func TestHandleValidate(t *testing.T) {
	s := newTestServer()

	tests := []struct {
		name           string
		body           *bytes.Buffer
		contentType    string
		expectedStatus int
		expectedValid  bool
		expectedField  string
		expectedReason string
	}{
		{
			name:           "valid plain text",
			body:           bytes.NewBufferString(testutil.QRRFields().Text()),
			contentType:    "text/plain",
			expectedStatus: http.StatusOK,
			expectedValid:  true,
		},
		{
			name:           "valid JSON",
			body:           jsonBody(t, testutil.MinimalFields().Text()),
			contentType:    "application/json",
			expectedStatus: http.StatusOK,
			expectedValid:  true,
		},
		{
			name:           "missing trailer",
			body:           bytes.NewBufferString(testutil.MinimalFields().With(schema.Trailer, "").Text()),
			contentType:    "text/plain",
			expectedStatus: http.StatusOK,
			expectedField:  "EPD",
			expectedReason: "MISSING",
		},
		{
			name:           "QRR without QR-IBAN",
			body:           jsonBody(t, testutil.QRRFields().With(schema.IBAN, testutil.IBAN).Text()),
			contentType:    "application/json",
			expectedStatus: http.StatusOK,
			expectedField:  "IBAN",
			expectedReason: "BAD_VALUE",
		},
		{
			name:           "empty body",
			body:           bytes.NewBufferString("  \n"),
			contentType:    "text/plain",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid JSON",
			body:           bytes.NewBufferString("invalid json"),
			contentType:    "application/json",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "oversized body",
			body:           bytes.NewBufferString(strings.Repeat("x", maxPayloadSize+1)),
			contentType:    "text/plain",
			expectedStatus: http.StatusRequestEntityTooLarge,
		},
		{
			name:           "oversized JSON body",
			body:           jsonBody(t, strings.Repeat("x", maxPayloadSize+1)),
			contentType:    "application/json",
			expectedStatus: http.StatusRequestEntityTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/validate", tt.body)
			req.Header.Set("Content-Type", tt.contentType)
			w := httptest.NewRecorder()

			s.Handler().ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.expectedStatus, w.Body.String())
			}
			if w.Code != http.StatusOK {
				return
			}

			resp := parseJSONResponse(t, w.Body)
			if resp["valid"] != tt.expectedValid {
				t.Errorf("valid = %v, want %v", resp["valid"], tt.expectedValid)
			}
			if !tt.expectedValid && (resp["field"] != tt.expectedField || resp["reason"] != tt.expectedReason) {
				t.Errorf("failure = %v/%v, want %s/%s", resp["field"], resp["reason"], tt.expectedField, tt.expectedReason)
			}
			if resp["version"] != "0200" {
				t.Errorf("version = %v, want 0200", resp["version"])
			}
		})
	}
}

func TestHandlePayment(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/api/payment?bill_id=99", bytes.NewBufferString(testutil.SCORFields().Text()))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}
	resp := parseJSONResponse(t, w.Body)
	if resp["payment_type"] != "QR" || resp["reference_no"] != testutil.CredReference {
		t.Errorf("payment = %v", resp)
	}
	if resp["bill_id"] != "99" || resp["fee_type"] != "NO_FEE" || resp["amount"] != "1949.75" {
		t.Errorf("payment = %v", resp)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/payment", jsonBody(t, testutil.MinimalFields().With(schema.DebtorName, "").Text()))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	resp = parseJSONResponse(t, w.Body)
	if resp["valid"] != false || resp["field"] != "ADDR_DEBITOR_NAME" {
		t.Errorf("failure = %v", resp)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/payment", bytes.NewBufferString(testutil.MinimalFields().With(schema.Amount, "abc").Text()))
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	if resp := parseJSONResponse(t, w.Body); !strings.Contains(resp["error"].(string), "invalid amount") {
		t.Errorf("error = %v", resp["error"])
	}
}

func TestHandleCheckDigits(t *testing.T) {
	s := newTestServer()

	tests := []struct {
		name           string
		query          string
		expectedStatus int
		expectedDigits string
		expectedResult string
	}{
		{
			name:           "iban default algorithm",
			query:          "value=CH0000762011623852957",
			expectedStatus: http.StatusOK,
			expectedDigits: "93",
			expectedResult: "CH9300762011623852957",
		},
		{
			name:           "creditor reference",
			query:          "value=RF00539007547034&algorithm=mod97",
			expectedStatus: http.StatusOK,
			expectedDigits: "18",
			expectedResult: "RF18539007547034",
		},
		{
			name:           "qr reference",
			query:          "value=21000000000313947143000901&algorithm=mod10",
			expectedStatus: http.StatusOK,
			expectedDigits: "7",
			expectedResult: "210000000003139471430009017",
		},
		{name: "missing value", query: "", expectedStatus: http.StatusBadRequest},
		{name: "unknown algorithm", query: "value=123&algorithm=luhn", expectedStatus: http.StatusBadRequest},
		{name: "mod10 with letters", query: "value=12A&algorithm=mod10", expectedStatus: http.StatusBadRequest},
		{name: "mod97 too short", query: "value=CH", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/checkdigits?"+tt.query, nil)
			w := httptest.NewRecorder()
			s.Handler().ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.expectedStatus, w.Body.String())
			}
			if w.Code != http.StatusOK {
				return
			}

			resp := parseJSONResponse(t, w.Body)
			if resp["check_digits"] != tt.expectedDigits || resp["result"] != tt.expectedResult {
				t.Errorf("got %v/%v, want %s/%s", resp["check_digits"], resp["result"], tt.expectedDigits, tt.expectedResult)
			}
		})
	}
}

func TestHandleSchema(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/schema/0201", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}

	var resp struct {
		Version  string        `json:"version"`
		Lines    int           `json:"lines"`
		Reserved []int         `json:"reserved"`
		Fields   []schemaField `json:"fields"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Version != schema.DefaultVersion || resp.Lines != 34 || len(resp.Reserved) != 7 {
		t.Errorf("layout = %s/%d/%v", resp.Version, resp.Lines, resp.Reserved)
	}
	if len(resp.Fields) != 27 {
		t.Fatalf("fields = %d, want 27", len(resp.Fields))
	}
	if first, last := resp.Fields[0], resp.Fields[len(resp.Fields)-1]; first.Name != string(schema.QRType) || first.Line != 0 || last.Line != 33 {
		t.Errorf("first/last field = %+v/%+v", first, last)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/schema/0100", nil)
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("unsupported version status = %d, want 404", w.Code)
	}
}

func TestHealthAndRequestID(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if resp := parseJSONResponse(t, w.Body); resp["status"] != "ok" {
		t.Errorf("status = %v, want ok", resp["status"])
	}
	if w.Header().Get(requestIDHeader) == "" {
		t.Error("response has no request id")
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if got := w.Header().Get(requestIDHeader); got != "abc-123" {
		t.Errorf("request id = %q, want abc-123", got)
	}
}
