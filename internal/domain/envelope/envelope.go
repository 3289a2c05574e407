package envelope

import (
	"encoding/json"
	"fmt"
	"time"

	domainErrors "github.com/cassiomorais/caseflow/internal/domain/errors"
	"github.com/go-playground/validator/v10"
)

// Classification determines the processing path of an envelope.
type Classification string

const (
	NewApplication               Classification = "NEW_APPLICATION"
	Exception                    Classification = "EXCEPTION"
	SupplementaryEvidence        Classification = "SUPPLEMENTARY_EVIDENCE"
	SupplementaryEvidenceWithOcr Classification = "SUPPLEMENTARY_EVIDENCE_WITH_OCR"
)

// IsKnown reports whether the classification is one of the four supported values.
func (c Classification) IsKnown() bool {
	switch c {
	case NewApplication, Exception, SupplementaryEvidence, SupplementaryEvidenceWithOcr:
		return true
	}
	return false
}

// Document is a single scanned document inside an envelope.
type Document struct {
	FileName      string    `json:"file_name" validate:"required"`
	ControlNumber string    `json:"control_number"`
	Type          string    `json:"type"`
	Subtype       string    `json:"subtype"`
	ScannedAt     time.Time `json:"scanned_at"`
	URL           string    `json:"url" validate:"required"`
	DeliveryDate  time.Time `json:"delivery_date"`
}

// PaymentLine is one payment item carried by an envelope, identified by its
// document control number.
type PaymentLine struct {
	DocumentControlNumber string `json:"document_control_number" validate:"required"`
}

// OcrDataField is a single key/value pair extracted by OCR.
type OcrDataField struct {
	Name  string `json:"metadata_field_name"`
	Value string `json:"metadata_field_value"`
}

// Envelope is a single unit of scanned-document metadata submitted for
// processing. It is produced by the upstream ingestion pipeline and consumed
// read-only by this service.
type Envelope struct {
	ID                        string         `json:"id" validate:"required"`
	CaseRef                   string         `json:"case_ref"`
	LegacyCaseRef             string         `json:"previous_service_case_ref"`
	PoBox                     string         `json:"po_box" validate:"required"`
	Jurisdiction              string         `json:"jurisdiction" validate:"required"`
	Container                 string         `json:"container" validate:"required"`
	ZipFileName               string         `json:"zip_file_name" validate:"required"`
	FormType                  string         `json:"form_type"`
	DeliveryDate              time.Time      `json:"delivery_date" validate:"required"`
	OpeningDate               time.Time      `json:"opening_date" validate:"required"`
	Classification            Classification `json:"classification" validate:"required"`
	Documents                 []Document     `json:"documents" validate:"required"`
	Payments                  []PaymentLine  `json:"payments"`
	OcrData                   []OcrDataField `json:"ocr_data"`
	OcrDataValidationWarnings []string       `json:"ocr_data_validation_warnings"`
}

// HasPayments reports whether the envelope carries any payment line items.
func (e *Envelope) HasPayments() bool {
	return len(e.Payments) > 0
}

var validate = validator.New()

// Parse decodes and validates an envelope message body.
func Parse(body []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, domainErrors.NewValidationError("body", "invalid envelope JSON: "+err.Error())
	}
	if err := validate.Struct(&env); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok && len(ve) > 0 {
			return nil, domainErrors.NewValidationError(ve[0].Field(), ve[0].Tag()+" validation failed")
		}
		return nil, domainErrors.NewValidationError("body", err.Error())
	}
	if !env.Classification.IsKnown() {
		return nil, fmt.Errorf("parse envelope %s: %w", env.ID,
			&domainErrors.UnknownClassificationError{Classification: string(env.Classification)})
	}
	return &env, nil
}
