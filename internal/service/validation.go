package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	maxNameLen        = 100
	maxDescriptionLen = 500
	maxCategoryLen    = 50
	priceScale        = 2
)

// maxPrice keeps prices within decimal(18,2) and within the 15 significant
// digits a float64 round-trips exactly, which is how SQLite stores them.
var maxPrice = decimal.New(1, 13)

// itemFields is the normalized form of the mutable item fields.
type itemFields struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Quantity    int
	Category    string
}

// normalizeItem checks every field before returning, so a rejected input
// reports all of its problems at once. Errors wrap ErrInvalidInput.
func normalizeItem(name, description *string, price decimal.Decimal, quantity int, category *string) (itemFields, error) {
	var errs []string

	out := itemFields{
		Name:        trimmed(name),
		Description: trimmed(description),
		Price:       price,
		Quantity:    quantity,
		Category:    trimmed(category),
	}

	if out.Name == "" {
		errs = append(errs, "name is required")
	} else if utf8.RuneCountInString(out.Name) > maxNameLen {
		errs = append(errs, fmt.Sprintf("name must be %d characters or less", maxNameLen))
	}
	if utf8.RuneCountInString(out.Description) > maxDescriptionLen {
		errs = append(errs, fmt.Sprintf("description must be %d characters or less", maxDescriptionLen))
	}
	if price.IsNegative() {
		errs = append(errs, "price cannot be negative")
	} else if price.GreaterThanOrEqual(maxPrice) {
		errs = append(errs, fmt.Sprintf("price must be less than %s", maxPrice))
	}
	if !price.Equal(price.Truncate(priceScale)) {
		errs = append(errs, fmt.Sprintf("price must have at most %d decimal places", priceScale))
	}
	if quantity < 0 {
		errs = append(errs, "quantity cannot be negative")
	}
	if out.Category == "" {
		errs = append(errs, "category is required")
	} else if utf8.RuneCountInString(out.Category) > maxCategoryLen {
		errs = append(errs, fmt.Sprintf("category must be %d characters or less", maxCategoryLen))
	}

	if len(errs) > 0 {
		return itemFields{}, fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(errs, ", "))
	}
	return out, nil
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
