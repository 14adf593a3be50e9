package domain

import "time" // Time for login and join timestamps

// User Model (identity record, owned by the auth gateway)
type User struct {
	ID          uint        `gorm:"primaryKey" json:"id"`                                          // Primary key
	Username    string      `gorm:"size:150;uniqueIndex;not null" json:"username"`                 // Unique, lowercased username
	Email       string      `gorm:"size:254;uniqueIndex;not null" json:"email"`                    // Unique email address
	FirstName   string      `gorm:"size:150" json:"first_name"`                                    // Given name
	LastName    string      `gorm:"size:150" json:"last_name"`                                     // Family name
	Password    string      `gorm:"not null" json:"-"`                                             // Hashed password, never serialized
	IsStaff     bool        `gorm:"not null;default:false" json:"is_staff"`                        // Staff flag
	IsSuperuser bool        `gorm:"not null;default:false" json:"is_superuser"`                    // Superuser flag
	LastLogin   *time.Time  `json:"last_login"`                                                    // Last successful login
	CreatedAt   time.Time   `json:"date_joined"`                                                   // Date joined
	Details     UserDetails `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;" json:"details"` // One-to-one relationship with UserDetails
	Accounts    []Account   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;" json:"-"`       // One-to-many relationship with Account
}
