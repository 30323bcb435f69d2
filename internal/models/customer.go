package models

// CustomerInfo holds the contact details collected at checkout.
// Field names follow the storefront's French form labels; codePostal is
// the only optional field.
type CustomerInfo struct {
	Nom        string `json:"nom" validate:"required"`
	Prenom     string `json:"prenom" validate:"required"`
	Telephone  string `json:"telephone" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Adresse    string `json:"adresse" validate:"required"`
	Ville      string `json:"ville" validate:"required"`
	CodePostal string `json:"codePostal" validate:"omitempty"`
}
