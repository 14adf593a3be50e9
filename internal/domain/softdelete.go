package domain

import "time"

// State is the lifecycle state of a soft-deletable record.
type State string

const (
	StateActive      State = "ACTIVE"
	StateSoftDeleted State = "SOFT_DELETED"
	// StatePurged is never stored: a purged record no longer exists.
	StatePurged State = "PURGED"
)

// SoftDelete is embedded by every soft-deletable model. The two columns only
// change together, so IsDeleted is true exactly when DeletedAt is set.
type SoftDelete struct {
	DeletedAt *time.Time `gorm:"index" json:"deleted_at"`
	IsDeleted bool       `gorm:"not null;default:false;index" json:"is_deleted"`
}

// MarkDeleted moves the record to SOFT_DELETED. Calling it again refreshes
// the timestamp.
func (s *SoftDelete) MarkDeleted(now time.Time) {
	t := now.UTC()
	s.DeletedAt = &t
	s.IsDeleted = true
}

// Restore moves the record back to ACTIVE. It is safe on an active record.
func (s *SoftDelete) Restore() {
	s.DeletedAt = nil
	s.IsDeleted = false
}

// State reports the lifecycle state.
func (s SoftDelete) State() State {
	if s.IsDeleted {
		return StateSoftDeleted
	}
	return StateActive
}

// ExpiredBefore reports whether the record was soft-deleted before cutoff.
func (s SoftDelete) ExpiredBefore(cutoff time.Time) bool {
	return s.IsDeleted && s.DeletedAt != nil && s.DeletedAt.Before(cutoff)
}

// Columns returns the column/value pair written by a transition.
func (s SoftDelete) Columns() map[string]any {
	return map[string]any{
		"deleted_at": s.DeletedAt,
		"is_deleted": s.IsDeleted,
	}
}
