// Package profile loads and saves the signed-in user's profile document.
package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/neetwise/listing/internal/catalog"
	"github.com/neetwise/listing/internal/datasource"
)

// Collection holds one profile document per user id.
const Collection = "userProfiles"

// ErrNotSignedIn is returned by Save when the source has no current user.
var ErrNotSignedIn = errors.New("user not authenticated")

// RequiredFields must be filled for a profile to count as complete.
var RequiredFields = []string{"fullName", "batchName", "domicile", "category", "expectedScoreFrom", "expectedScoreTo"}

// Store reads and writes profiles through a datasource.Source.
type Store struct {
	source datasource.Source
	logger *zap.Logger
	now    func() time.Time
}

func NewStore(source datasource.Source, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{source: source, logger: logger, now: time.Now}
}

// Fetch returns the current user's profile, or nil when nobody is signed in
// or the profile was never saved.
func (s *Store) Fetch(ctx context.Context) (*catalog.UserProfile, error) {
	uid, ok := s.source.CurrentUserID()
	if !ok {
		s.logger.Debug("no authenticated user found")
		return nil, nil
	}

	rec, err := s.source.GetDocument(ctx, Collection, uid)
	if err != nil {
		return nil, fmt.Errorf("get profile of %s: %w", uid, err)
	}
	if rec == nil {
		return nil, nil
	}

	p, err := catalog.ProfileFromRecord(rec.Data)
	if err != nil {
		return nil, err
	}

	return p, nil
}

// Save writes p as the current user's profile. The user id and both
// timestamps are stamped on a copy; p itself is left untouched.
func (s *Store) Save(ctx context.Context, p *catalog.UserProfile) (*catalog.UserProfile, error) {
	uid, ok := s.source.CurrentUserID()
	if !ok {
		return nil, ErrNotSignedIn
	}
	if p == nil {
		return nil, errors.New("profile is required")
	}

	stamped := *p
	stamped.UserID = uid
	now := s.now().UTC().Format(time.RFC3339Nano)
	stamped.CreatedAt = now
	stamped.UpdatedAt = now

	if err := s.source.SetDocument(ctx, Collection, uid, stamped.ToDocument()); err != nil {
		return nil, fmt.Errorf("save profile of %s: %w", uid, err)
	}

	s.logger.Info("profile saved", zap.String("user_id", uid))

	return &stamped, nil
}

// Missing lists the required fields p leaves empty.
func Missing(p *catalog.UserProfile) []string {
	if p == nil {
		return append([]string(nil), RequiredFields...)
	}

	var missing []string
	check := func(name string, present bool) {
		if !present {
			missing = append(missing, name)
		}
	}
	check("fullName", p.FullName != "")
	check("batchName", p.BatchName != "")
	check("domicile", p.Domicile != "")
	check("category", p.Category != "")
	check("expectedScoreFrom", p.ExpectedScoreFrom.Truthy())
	check("expectedScoreTo", p.ExpectedScoreTo.Truthy())

	return missing
}

// Complete reports whether every required field is filled.
func Complete(p *catalog.UserProfile) bool {
	return len(Missing(p)) == 0
}
