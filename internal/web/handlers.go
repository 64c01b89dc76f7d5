package web

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ginjaninja78/swissqr/internal/checksum"
	"github.com/ginjaninja78/swissqr/internal/payment"
	"github.com/ginjaninja78/swissqr/internal/record"
	"github.com/ginjaninja78/swissqr/internal/schema"
	"github.com/ginjaninja78/swissqr/internal/validation"
)

// A QR-bill holds at most 997 characters; anything far larger is not a bill.
const maxPayloadSize = 16 << 10 // 16KB

// payloadRequest is the JSON form of a payload submission.
type payloadRequest struct {
	Payload string `json:"payload"`
}

// validateResponse reports a validation outcome.
type validateResponse struct {
	Valid   bool   `json:"valid"`
	Field   string `json:"field,omitempty"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message,omitempty"`
	Version string `json:"version,omitempty"`
}

func newValidateResponse(r *validation.Result) validateResponse {
	resp := validateResponse{Valid: r.Valid()}
	if r.Schema != nil {
		resp.Version = r.Schema.Version()
	}
	if r.Err != nil {
		resp.Field = string(r.Err.Field)
		resp.Reason = string(r.Err.Reason)
		resp.Message = r.Err.Message
	}
	return resp
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleValidate accepts the decoded QR text either as the raw body or as
// {"payload": "..."} and reports whether it is a valid QR-bill.
func (s *Server) handleValidate(c *gin.Context) {
	raw, ok := readPayload(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, newValidateResponse(validation.Validate(raw)))
}

// handlePayment validates the payload and returns the outgoing payment.
func (s *Server) handlePayment(c *gin.Context) {
	raw, ok := readPayload(c)
	if !ok {
		return
	}

	p, result, err := payment.FromPayload(raw, payment.Options{
		BillID:      c.Query("bill_id"),
		HomeCountry: s.homeCountry,
	})
	switch {
	case err == nil:
		c.JSON(http.StatusOK, p)
	case errors.Is(err, payment.ErrInvalidRecord):
		c.JSON(http.StatusUnprocessableEntity, newValidateResponse(result))
	default:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	}
}

// handleCheckDigits computes check digits for ?value= with
// ?algorithm=mod97 (default) or mod10.
func (s *Server) handleCheckDigits(c *gin.Context) {
	value := c.Query("value")
	if value == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "value is required"})
		return
	}

	switch algorithm := c.DefaultQuery("algorithm", "mod97"); algorithm {
	case "mod97":
		digits, err := checksum.CheckDigits(value)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"algorithm":    algorithm,
			"value":        value,
			"check_digits": digits,
			"result":       value[:2] + digits + value[4:],
		})

	case "mod10":
		digit, err := checksum.Mod10CheckDigit(value)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		d := strconv.Itoa(digit)
		c.JSON(http.StatusOK, gin.H{
			"algorithm":    algorithm,
			"value":        value,
			"check_digits": d,
			"result":       value + d,
		})

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "algorithm must be mod97 or mod10"})
	}
}

// schemaField is one entry of the schema layout response.
type schemaField struct {
	Name string `json:"name"`
	Line int    `json:"line"`
}

// handleSchema describes the line layout of a payload version.
func (s *Server) handleSchema(c *gin.Context) {
	sch, err := schema.Resolve(c.Param("version"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	fields := make([]schemaField, 0)
	for _, f := range sch.Fields() {
		fields = append(fields, schemaField{Name: string(f), Line: sch.MustIndex(f)})
	}

	c.JSON(http.StatusOK, gin.H{
		"version":  sch.Version(),
		"lines":    sch.Lines(),
		"reserved": sch.Reserved(),
		"fields":   fields,
	})
}

// readPayload extracts the payload lines from the request body. On failure
// it writes a 400 or 413 response and returns false.
func readPayload(c *gin.Context) (record.Raw, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxPayloadSize)

	var text string
	if strings.HasPrefix(c.ContentType(), "application/json") {
		var req payloadRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "payload too large"})
				return nil, false
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
			return nil, false
		}
		text = req.Payload
	} else {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "payload too large"})
			return nil, false
		}
		text = string(body)
	}

	if strings.TrimSpace(text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payload is required"})
		return nil, false
	}

	return record.Parse(text), true
}
