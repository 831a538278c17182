package services

import (
	"errors"
	"net/mail"
	"strconv"
	"strings"

	apierrors "github.com/yukikurage/hoc-admin-api/internal/errors"
	"github.com/yukikurage/hoc-admin-api/internal/models"
	"gorm.io/gorm"
)

// Caller is the authenticated identity a service call runs as.
type Caller struct {
	UserID string
	Email  string
	Role   models.Role
}

// IsAdmin reports whether the caller holds one of the two administrative roles.
func (c Caller) IsAdmin() bool {
	return c.Role == models.RoleAdmin || c.Role == models.RoleAmministratore
}

// storeError translates repository failures. what names the entity in
// NotFound and Conflict messages, e.g. "Operatore".
func storeError(err error, what, op string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apierrors.NotFound(what + " not found")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apierrors.Conflict(what + " already exists")
	default:
		return apierrors.Internal("Failed to "+op, err)
	}
}

// fieldCheck accumulates field-level validation failures.
type fieldCheck struct {
	fields []apierrors.FieldError
}

func (v *fieldCheck) required(field, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		v.add(field, "required", "", "is required")
	}
	return value
}

func (v *fieldCheck) maxLen(field, value string, n int) {
	if len([]rune(value)) > n {
		v.add(field, "max", strconv.Itoa(n), "must be at most "+strconv.Itoa(n))
	}
}

func (v *fieldCheck) email(field, value string) string {
	value = strings.ToLower(v.required(field, value))
	if value == "" {
		return value
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		v.add(field, "email", "", "must be a valid email address")
	}
	return value
}

func (v *fieldCheck) add(field, rule, param, message string) {
	v.fields = append(v.fields, apierrors.FieldError{Field: field, Rule: rule, Param: param, Message: message})
}

func (v *fieldCheck) err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return apierrors.Validation("Invalid request body", v.fields...)
}

// PersonInput carries the editable fields shared by operators, managers and creators.
type PersonInput struct {
	Nome    string
	Cognome string
	Email   string
}

func (in PersonInput) validate(withEmail bool) (PersonInput, error) {
	var v fieldCheck
	out := PersonInput{
		Nome:    v.required("nome", in.Nome),
		Cognome: v.required("cognome", in.Cognome),
	}
	v.maxLen("nome", out.Nome, 100)
	v.maxLen("cognome", out.Cognome, 100)
	if withEmail {
		out.Email = v.email("email", in.Email)
	}
	return out, v.err()
}
