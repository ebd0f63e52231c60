// Package seed populates empty listing collections with sample documents.
package seed

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/neetwise/listing/internal/catalog"
	"github.com/neetwise/listing/internal/datasource"
)

// IfEmpty adds the sample documents of listing when its collection holds no
// ordered document yet. It returns the number of documents added.
func IfEmpty(ctx context.Context, source datasource.Source, listing catalog.Listing, logger *zap.Logger) (int, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	page, err := source.QueryPage(ctx, listing.Collection, datasource.Query{OrderBy: listing.OrderBy, Limit: 1})
	if err != nil {
		return 0, fmt.Errorf("checking %s for documents: %w", listing.Collection, err)
	}
	if len(page.Items) > 0 {
		logger.Debug("collection is not empty, skipping samples", zap.String("collection", listing.Collection))
		return 0, nil
	}

	return All(ctx, source, listing, logger)
}

// All adds every sample document of listing under a fresh id.
func All(ctx context.Context, source datasource.Source, listing catalog.Listing, logger *zap.Logger) (int, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	samples := catalog.SampleDocuments(listing)
	for i, doc := range samples {
		id := uuid.NewString()
		if err := source.SetDocument(ctx, listing.Collection, id, doc); err != nil {
			return i, fmt.Errorf("adding sample %s document: %w", listing.Collection, err)
		}
		logger.Info("added sample document",
			zap.String("collection", listing.Collection),
			zap.String("doc_id", id),
			zap.Any("name", doc[listing.NameField]),
		)
	}

	return len(samples), nil
}
