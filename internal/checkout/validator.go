// Package checkout validates customer information before an order is
// placed and an invoice generated.
package checkout

import (
	"fmt"
	"strings"

	"github.com/AZIZABADA10/E-commerce/internal/models"

	"github.com/go-playground/validator/v10"
)

// ValidationError reports the first field that failed validation.
// Validation is fail-fast: one error at a time, in form order.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("champ %s: %s", e.Field, e.Reason)
}

// Validator checks CustomerInfo ahead of checkout.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a checkout form validator.
func NewValidator() *Validator {
	return &Validator{
		validate: validator.New(),
	}
}

// requiredFields lists the mandatory form fields in the order they are
// checked; codePostal is optional.
var requiredFields = []struct {
	name  string
	value func(models.CustomerInfo) string
}{
	{"nom", func(c models.CustomerInfo) string { return c.Nom }},
	{"prenom", func(c models.CustomerInfo) string { return c.Prenom }},
	{"telephone", func(c models.CustomerInfo) string { return c.Telephone }},
	{"email", func(c models.CustomerInfo) string { return c.Email }},
	{"adresse", func(c models.CustomerInfo) string { return c.Adresse }},
	{"ville", func(c models.CustomerInfo) string { return c.Ville }},
}

// Validate checks required fields first (in form order), then the email
// shape, then that the telephone is exactly 10 digits once whitespace is
// stripped. The first failure short-circuits.
func (v *Validator) Validate(info models.CustomerInfo) error {
	for _, field := range requiredFields {
		if strings.TrimSpace(field.value(info)) == "" {
			return &ValidationError{Field: field.name, Reason: "requis"}
		}
	}

	if err := v.validate.Var(info.Email, "email"); err != nil {
		return &ValidationError{Field: "email", Reason: "email invalide"}
	}

	phone := strings.Join(strings.Fields(info.Telephone), "")
	if len(phone) != 10 || !isDigits(phone) {
		return &ValidationError{Field: "telephone", Reason: "10 chiffres requis"}
	}

	return nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
