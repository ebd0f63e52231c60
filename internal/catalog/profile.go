package catalog

import (
	"fmt"
	"reflect"
	"strings"
)

// UserProfile holds the preferences a student fills in on the profile screen.
type UserProfile struct {
	UserID            string `mapstructure:"userId" json:"userId,omitempty"`
	Email             string `mapstructure:"email" json:"email,omitempty"`
	FullName          string `mapstructure:"fullName" json:"fullName,omitempty"`
	BatchName         string `mapstructure:"batchName" json:"batchName,omitempty"`
	ExpectedScoreFrom Number `mapstructure:"expectedScoreFrom" json:"expectedScoreFrom,omitempty"`
	ExpectedScoreTo   Number `mapstructure:"expectedScoreTo" json:"expectedScoreTo,omitempty"`
	IsNEETRepeater    bool   `mapstructure:"isNEETRepeater" json:"isNEETRepeater"`
	Domicile          string `mapstructure:"domicile" json:"domicile,omitempty"`
	Category          string `mapstructure:"category" json:"category,omitempty"`
	NotifyAdditions   bool   `mapstructure:"notifyAdditions" json:"notifyAdditions"`
	NotifyUpdates     bool   `mapstructure:"notifyUpdates" json:"notifyUpdates"`
	NotifyAdmission   bool   `mapstructure:"notifyAdmission" json:"notifyAdmission"`
	PreferredDistance string `mapstructure:"preferredDistance" json:"preferredDistance,omitempty"`
	CreatedAt         string `mapstructure:"createdAt" json:"createdAt,omitempty"`
	UpdatedAt         string `mapstructure:"updatedAt" json:"updatedAt,omitempty"`
}

// ProfileFromRecord decodes a stored profile document.
func ProfileFromRecord(data map[string]any) (*UserProfile, error) {
	// Notification preferences default to on when never saved.
	p := &UserProfile{NotifyAdditions: true, NotifyUpdates: true}
	if err := decode(data, p); err != nil {
		return nil, fmt.Errorf("decoding user profile: %w", err)
	}
	return p, nil
}

// CategoryKey is the cutoff table key for the profile category.
func (p *UserProfile) CategoryKey() string {
	if p == nil || p.Category == "" {
		return CutoffGeneral
	}
	return strings.ToLower(p.Category)
}

// HasCriteria reports whether the profile constrains eligibility at all.
func (p *UserProfile) HasCriteria() bool {
	if p == nil {
		return false
	}
	return p.ExpectedScoreFrom.Truthy() || p.ExpectedScoreTo.Truthy() || p.Category != ""
}

// Equal reports whether two profiles hold the same data.
func (p *UserProfile) Equal(other *UserProfile) bool {
	return reflect.DeepEqual(p, other)
}

// ToDocument converts the profile to the stored document shape.
func (p *UserProfile) ToDocument() map[string]any {
	return map[string]any{
		"userId":            p.UserID,
		"email":             p.Email,
		"fullName":          p.FullName,
		"batchName":         p.BatchName,
		"expectedScoreFrom": p.ExpectedScoreFrom.Raw(),
		"expectedScoreTo":   p.ExpectedScoreTo.Raw(),
		"isNEETRepeater":    p.IsNEETRepeater,
		"domicile":          p.Domicile,
		"category":          p.Category,
		"notifyAdditions":   p.NotifyAdditions,
		"notifyUpdates":     p.NotifyUpdates,
		"notifyAdmission":   p.NotifyAdmission,
		"preferredDistance": p.PreferredDistance,
		"createdAt":         p.CreatedAt,
		"updatedAt":         p.UpdatedAt,
	}
}
