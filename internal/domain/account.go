package domain

import "time" // Time for row timestamps

// MaxAccountTypeLength is the column width of account_type
const MaxAccountTypeLength = 20

// Account Model (wallet-like record owned by exactly one user)
type Account struct {
	ID           uint   `gorm:"primaryKey" json:"id"`                                                     // Primary key
	UserID       uint   `gorm:"not null;uniqueIndex:idx_accounts_owner_type" json:"user_id"`              // Foreign key to User
	AccountType  string `gorm:"size:20;not null;uniqueIndex:idx_accounts_owner_type" json:"account_type"` // Label, unique per owner
	AccountValue int64  `gorm:"not null;default:0" json:"account_value"`                                  // Integer balance
	SoftDelete          // deleted_at / is_deleted pair

	CreatedAt time.Time `json:"created_at"` // Creation time
	UpdatedAt time.Time `json:"updated_at"` // Last update time
}
