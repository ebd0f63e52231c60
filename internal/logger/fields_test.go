package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStringFields(t *testing.T) {
	fields := StringFields(
		StringField{Key: "  collection  ", Value: "  colleges  "},
		StringField{Key: "ignored", Value: "   "},
		StringField{Key: "   ", Value: "empty key"},
	)

	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}

	if fields[0].Key != "collection" || fields[0].String != "colleges" {
		t.Fatalf("unexpected collection field: %+v", fields[0])
	}

	empty := StringFields()
	if len(empty) != 0 {
		t.Fatalf("expected empty fields, got %d", len(empty))
	}
}

func TestWithFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	enriched := WithFields(logger, zap.String("foo", "bar"))
	enriched.Info("test log")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx["foo"] != "bar" {
		t.Fatalf("expected field to be bar, got %q", ctx["foo"])
	}

	enriched = WithFields(nil, zap.String("baz", "qux"))
	if enriched == nil {
		t.Fatalf("expected fallback logger when nil provided")
	}

	// Ensure logging with the fallback logger does not panic.
	enriched.Info("another log")
}

func TestListingFields(t *testing.T) {
	fields := ListingFields("  products  ", "products")
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}

	if fields[0].Key != FieldListing || fields[0].String != "products" {
		t.Fatalf("unexpected listing field: %+v", fields[0])
	}

	if fields[1].Key != FieldCollection || fields[1].String != "products" {
		t.Fatalf("unexpected collection field: %+v", fields[1])
	}

	core, observed := observer.New(zapcore.InfoLevel)
	WithFields(zap.New(core), ListingFields("", "colleges")...).Info("test log")

	ctx := observed.All()[0].ContextMap()
	if _, ok := ctx[FieldListing]; ok {
		t.Fatalf("expected empty listing to be omitted")
	}
	if ctx[FieldCollection] != "colleges" {
		t.Fatalf("expected collection field to be colleges, got %q", ctx[FieldCollection])
	}
}

func TestCandidateFields(t *testing.T) {
	fields := CandidateFields("doc-1", " AIIMS Delhi ")
	if len(fields) != 2 || fields[0].Key != FieldKey || fields[1].String != "AIIMS Delhi" {
		t.Fatalf("unexpected fields: %+v", fields)
	}

	if fields := CandidateFields("doc-2", ""); len(fields) != 1 {
		t.Fatalf("expected unnamed candidate to log only its key, got %+v", fields)
	}
}
