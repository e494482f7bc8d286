package domain

import (
	"context"
	"errors"
	"regexp"
	"strconv"

	"gorm.io/gorm"
)

// DocumentType identifies which sequence a number is drawn from.
type DocumentType string

const (
	DocumentTypeJob       DocumentType = "job"
	DocumentTypeQuotation DocumentType = "quotation"
	DocumentTypeInvoice   DocumentType = "invoice"
	DocumentTypeReceipt   DocumentType = "receipt"
)

// Prefix returns the human-readable document prefix.
func (t DocumentType) Prefix() (string, bool) {
	switch t {
	case DocumentTypeJob:
		return "JS", true
	case DocumentTypeQuotation:
		return "QT", true
	case DocumentTypeInvoice:
		return "INV", true
	case DocumentTypeReceipt:
		return "RC", true
	default:
		return "", false
	}
}

type Service interface {
	// Allocate issues the next number for a document type, formatted
	// PREFIX-YYYY-NNNNNN. Calls are serialized; two concurrent calls
	// never receive the same sequence.
	Allocate(ctx context.Context, docType DocumentType) (string, error)
	// AllocateTx issues a number inside an existing transaction so the
	// caller's entity insert and the counter advance commit together.
	AllocateTx(ctx context.Context, tx *gorm.DB, docType DocumentType) (string, error)
	// Current reads a counter without incrementing it.
	Current(ctx context.Context, docType DocumentType) (int64, error)
}

type Repository interface {
	Get(ctx context.Context, db *gorm.DB) (*NumberingState, error)
	Save(ctx context.Context, db *gorm.DB, state *NumberingState) error
}

var ErrUnknownDocumentType = errors.New("unknown_document_type")

// ParsedNumber is the decomposition of a formatted document number.
type ParsedNumber struct {
	Prefix   string
	Year     int
	Sequence int64
}

var numberPattern = regexp.MustCompile(`^([A-Z]+)-(\d{4})-(\d+)$`)

// ParseNumber splits PREFIX-YYYY-NNNNNN into its parts. Returns false
// when the input does not match the format.
func ParseNumber(docNo string) (ParsedNumber, bool) {
	match := numberPattern.FindStringSubmatch(docNo)
	if match == nil {
		return ParsedNumber{}, false
	}
	year, _ := strconv.Atoi(match[2])
	sequence, _ := strconv.ParseInt(match[3], 10, 64)
	return ParsedNumber{Prefix: match[1], Year: year, Sequence: sequence}, true
}
