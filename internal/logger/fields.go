package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldListing is the structured log field key for the listing preset name.
	FieldListing = "listing"
	// FieldCollection is the structured log field key for the document collection.
	FieldCollection = "collection"
	// FieldKey is the dedup key of a candidate.
	FieldKey = "key"
	// FieldName is the display name of a candidate.
	FieldName = "name"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields safely attaches the provided fields to the logger.
// If the logger is nil or no fields are supplied, the input logger is returned
// unchanged, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// ListingFields returns the fields identifying a listing session.
func ListingFields(listing, collection string) []zap.Field {
	return StringFields(
		StringField{Key: FieldListing, Value: listing},
		StringField{Key: FieldCollection, Value: collection},
	)
}

// CandidateFields identifies a single college or product in a log entry.
func CandidateFields(key, name string) []zap.Field {
	return StringFields(
		StringField{Key: FieldKey, Value: key},
		StringField{Key: FieldName, Value: name},
	)
}
