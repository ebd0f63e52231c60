package seed

import (
	"context"
	"testing"

	"github.com/neetwise/listing/internal/catalog"
	"github.com/neetwise/listing/internal/datasource"
	"github.com/neetwise/listing/internal/datasource/memory"
)

func count(t *testing.T, store *memory.Store, listing catalog.Listing) int {
	t.Helper()

	page, err := store.QueryPage(context.Background(), listing.Collection, datasource.Query{OrderBy: listing.OrderBy, Limit: 100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return len(page.Items)
}

func TestIfEmpty(t *testing.T) {
	t.Parallel()

	for _, listing := range []catalog.Listing{catalog.Colleges, catalog.Products} {
		t.Run(listing.Name, func(t *testing.T) {
			t.Parallel()

			store := memory.New("")
			ctx := context.Background()
			want := len(catalog.SampleDocuments(listing))

			added, err := IfEmpty(ctx, store, listing, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if added != want || count(t, store, listing) != want {
				t.Fatalf("expected %d samples, added %d", want, added)
			}

			again, err := IfEmpty(ctx, store, listing, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if again != 0 || count(t, store, listing) != want {
				t.Fatalf("expected no samples on a populated collection, added %d", again)
			}
		})
	}
}

func TestSamplesDecode(t *testing.T) {
	t.Parallel()

	for _, listing := range []catalog.Listing{catalog.Colleges, catalog.Products} {
		for i, doc := range catalog.SampleDocuments(listing) {
			c, err := catalog.FromRecord("sample", doc)
			if err != nil {
				t.Fatalf("%s sample %d: %v", listing.Name, i, err)
			}
			if listing.NameOf(c) == "" || listing.TypeOf(c) == "" {
				t.Fatalf("%s sample %d lacks name or type: %+v", listing.Name, i, doc)
			}
		}
	}
}
