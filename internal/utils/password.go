package utils

import (
	"fmt"     // Message formatting
	"regexp"  // Regular expressions
	"strings" // String manipulation
	"unicode" // Character classes

	"golang.org/x/crypto/bcrypt" // Password hashing
)

// usernamePattern allows letters, digits and @ . + - _
var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9@.+_-]{1,150}$`)

// emailPattern is a light sanity check, not RFC 5322
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// phonePattern accepts up to 10 digits
var phonePattern = regexp.MustCompile(`^[0-9]{1,10}$`)

// IsValidUsername checks the username charset and length
func IsValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

// IsValidEmail checks the rough shape of an email address
func IsValidEmail(email string) bool {
	return len(email) <= 254 && emailPattern.MatchString(email)
}

// IsValidPhone checks a phone number of at most 10 digits
func IsValidPhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// NormalizeUsername lowercases and trims a username to keep it unique
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// PasswordPolicy holds the complexity requirements for new passwords
type PasswordPolicy struct {
	MinLength  int // Minimum number of characters
	MinUpper   int // Minimum uppercase letters
	MinDigit   int // Minimum digits
	MinSpecial int // Minimum non-alphanumeric characters
}

// Validate returns one message per violated rule, or nil if the password is acceptable
func (p PasswordPolicy) Validate(password string) []string {
	var upper, digit, special int // Character class counters
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper++ // Uppercase letter
		case unicode.IsDigit(r):
			digit++ // Digit
		case !unicode.IsLetter(r) && !unicode.IsNumber(r):
			special++ // Special character
		}
	}
	var problems []string // Collected violations
	if n := len([]rune(password)); n < p.MinLength {
		problems = append(problems, fmt.Sprintf("This password is too short. It must contain at least %d characters.", p.MinLength))
	}
	if upper < p.MinUpper {
		problems = append(problems, fmt.Sprintf("This password must contain at least %d uppercase letters.", p.MinUpper))
	}
	if digit < p.MinDigit {
		problems = append(problems, fmt.Sprintf("This password must contain at least %d digits.", p.MinDigit))
	}
	if special < p.MinSpecial {
		problems = append(problems, fmt.Sprintf("This password must contain at least %d special characters.", p.MinSpecial))
	}
	return problems
}

// HashPassword hashes a password with bcrypt
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost // Fall back for unset cost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(b), err
}

// CheckPassword compares a bcrypt hash with a plain password
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
