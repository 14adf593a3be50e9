package db

import (
	"context" // Context for database operations
	"errors"  // Error inspection

	"account_system/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus" // Structured logging
	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

// SeedUser describes one initial user
type SeedUser struct {
	ID          uint        // Fixed primary key
	Username    string      // Username
	FirstName   string      // Given name
	LastName    string      // Family name
	Email       string      // Email address
	Password    string      // Plain password, hashed on insert
	PhoneNumber string      // Phone number
	Role        domain.Role // Role on UserDetails
}

// DefaultSeedUsers are the users created by `migrate -seed`
var DefaultSeedUsers = []SeedUser{
	{ID: 1, Username: "superadmin", FirstName: "Super", LastName: "Admin", Email: "superadmin@gmail.com", Password: "Abcd@123", PhoneNumber: "0987654321", Role: domain.RoleSuperAdmin},
	{ID: 2, Username: "groupadmin", FirstName: "Group", LastName: "Admin", Email: "groupadmin@gmail.com", Password: "Abcd@123", PhoneNumber: "0987654322", Role: domain.RoleGroupAdmin},
	{ID: 3, Username: "user1", FirstName: "User", LastName: "One", Email: "user1@gmail.com", Password: "Abcd@123", PhoneNumber: "0987654323", Role: domain.RoleUser},
	{ID: 4, Username: "user2", FirstName: "User", LastName: "Two", Email: "user2@gmail.com", Password: "Abcd@123", PhoneNumber: "0987654324", Role: domain.RoleUser},
}

// Seed creates the given users with their details and default account; existing users are skipped.
// It returns the number of users created.
func Seed(ctx context.Context, db *gorm.DB, users []SeedUser, defaultAccountType string, cost int) (int, error) {
	created := 0 // Number of users inserted
	for _, su := range users {
		var existing domain.User // Lookup by id or username
		err := db.WithContext(ctx).Where("id = ? OR username = ?", su.ID, su.Username).First(&existing).Error
		if err == nil {
			logrus.WithField("username", su.Username).Warn("User already exists.") // Skip existing user
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return created, err // Real database error
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(su.Password), cost) // Hash the password
		if err != nil {
			return created, err
		}
		err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			staff, superuser := su.Role.StaffFlags() // Flags follow the role
			user := domain.User{
				ID:          su.ID,
				Username:    su.Username,
				Email:       su.Email,
				FirstName:   su.FirstName,
				LastName:    su.LastName,
				Password:    string(hash),
				IsStaff:     staff,
				IsSuperuser: superuser,
			}
			if err := tx.Omit("Details", "Accounts").Create(&user).Error; err != nil {
				return err // Rollback on failure
			}
			phone := su.PhoneNumber // Copy for pointer
			details := domain.UserDetails{UserID: user.ID, PhoneNumber: &phone, Role: su.Role}
			if err := tx.Create(&details).Error; err != nil {
				return err // Rollback on failure
			}
			account := domain.Account{UserID: user.ID, AccountType: defaultAccountType}
			return tx.Create(&account).Error // Default account
		})
		if err != nil {
			return created, err
		}
		created++
		logrus.WithFields(logrus.Fields{
			"username": su.Username, // Username
			"role":     su.Role,     // Role
		}).Info("Seeded user") // Log seeded user
	}
	return created, nil
}
