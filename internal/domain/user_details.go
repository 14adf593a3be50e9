package domain

// UserDetails Model (profile and role, one per user)
type UserDetails struct {
	ID          uint    `gorm:"primaryKey" json:"-"`                       // Primary key
	UserID      uint    `gorm:"uniqueIndex;not null" json:"user_id"`       // Foreign key to User
	PhoneNumber *string `gorm:"size:10" json:"phone_number"`               // Optional phone number
	Role        Role    `gorm:"size:10;not null;default:USER" json:"role"` // Role: USER, GROUPADMIN or SUPERADMIN
	SoftDelete          // deleted_at / is_deleted pair
}

// TableName pins the table name
func (UserDetails) TableName() string {
	return "user_details"
}
