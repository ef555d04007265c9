// Package validation holds the field and cross-field rules shared by the services.
// Every rule is a pure function returning a domain validation error.
package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"inventory-service/internal/domain"

	"github.com/shopspring/decimal"
)

const (
	MinUsernameLength    = 3
	MaxUsernameLength    = 50
	MinPasswordLength    = 8
	MaxPasswordBytes     = 72 // bcrypt input limit
	MinNameLength        = 3
	MaxNameLength        = 100
	MaxDescriptionLength = 1000
	MaxStock             = 10000
	maxEmailLength       = 254
	maxEmailLocalLength  = 64
	maxEmailDomainLength = 255
)

var (
	emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	MaxPrice     = decimal.NewFromInt(1000000)
)

// Email checks the address against the pattern and the length and dot/hyphen rules
func Email(email string) error {
	if !emailPattern.MatchString(email) {
		return domain.Invalid("Invalid email format")
	}
	if len(email) > maxEmailLength {
		return domain.Invalid("Email must not exceed %d characters", maxEmailLength)
	}

	at := strings.LastIndex(email, "@")
	local, host := email[:at], email[at+1:]

	if len(local) > maxEmailLocalLength {
		return domain.Invalid("Email local part must not exceed %d characters", maxEmailLocalLength)
	}
	if len(host) > maxEmailDomainLength {
		return domain.Invalid("Email domain must not exceed %d characters", maxEmailDomainLength)
	}
	if strings.Contains(email, "..") {
		return domain.Invalid("Email must not contain consecutive dots")
	}
	if strings.HasPrefix(local, ".") || strings.HasSuffix(local, ".") {
		return domain.Invalid("Email local part must not start or end with a dot")
	}
	for _, label := range strings.Split(host, ".") {
		if strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
			return domain.Invalid("Email domain must not start or end with a hyphen")
		}
	}

	return nil
}

// NormalizeEmail trims and lower-cases an address before validation and storage
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Username expects an already trimmed value
func Username(username string) error {
	n := utf8.RuneCountInString(username)
	if n < MinUsernameLength {
		return domain.Invalid("Username must be at least %d characters long", MinUsernameLength)
	}
	if n > MaxUsernameLength {
		return domain.Invalid("Username must not exceed %d characters", MaxUsernameLength)
	}
	return nil
}

func Password(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return domain.Invalid("Password must be at least %d characters long", MinPasswordLength)
	}
	if len(password) > MaxPasswordBytes {
		return domain.Invalid("Password must not exceed %d bytes", MaxPasswordBytes)
	}
	return nil
}

// CategoryName expects an already trimmed value
func CategoryName(name string) error {
	return name3to100("Category name", name)
}

// ProductName expects an already trimmed value. Uniqueness is checked by the service.
func ProductName(name string) error {
	return name3to100("Product name", name)
}

func name3to100(field, name string) error {
	n := utf8.RuneCountInString(name)
	if n < MinNameLength {
		return domain.Invalid("%s must be at least %d characters long", field, MinNameLength)
	}
	if n > MaxNameLength {
		return domain.Invalid("%s must not exceed %d characters", field, MaxNameLength)
	}
	return nil
}

func Description(description string) error {
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return domain.Invalid("Description must not exceed %d characters", MaxDescriptionLength)
	}
	return nil
}

// Price requires 0 < price <= 1,000,000 with at most two decimal places.
// Values are never rounded to fit.
func Price(price decimal.Decimal) error {
	if !price.IsPositive() {
		return domain.Invalid("Price must be greater than 0")
	}
	if price.GreaterThan(MaxPrice) {
		return domain.Invalid("Price must not exceed %s", MaxPrice.String())
	}
	if !price.Equal(price.Truncate(2)) {
		return domain.Invalid("Price must have at most 2 decimal places")
	}
	return nil
}

// Stock requires 0 <= stock <= 10,000
func Stock(stock int) error {
	if stock < 0 {
		return domain.Invalid("Stock cannot be negative")
	}
	if stock > MaxStock {
		return domain.Invalid("Stock must not exceed %d", MaxStock)
	}
	return nil
}

// CartQuantity requires a quantity within [1, 99]
func CartQuantity(quantity int) error {
	if quantity < domain.MinCartQuantity || quantity > domain.MaxCartQuantity {
		return domain.Invalid("Quantity must be between %d and %d", domain.MinCartQuantity, domain.MaxCartQuantity)
	}
	return nil
}

// PositiveQuantity is the looser rule applied to order lines and to the
// increment of a cart add.
func PositiveQuantity(quantity int) error {
	if quantity <= 0 {
		return domain.Invalid("Quantity must be greater than 0")
	}
	return nil
}
