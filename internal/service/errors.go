package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Leganyst/service-marketplace/internal/model"
	"github.com/Leganyst/service-marketplace/internal/repository"
)

// Ошибки бизнес-логики. Транспорт сопоставляет их с кодами ответа.
var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInvalidState    = errors.New("invalid state")
	ErrDomainRule      = errors.New("domain rule violation")
	ErrInvalidArgument = errors.New("invalid argument")
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID uuid.UUID
	Role   model.Role
}

func (a Actor) IsAdmin() bool    { return a.Role == model.RoleAdmin }
func (a Actor) IsProvider() bool { return a.Role == model.RoleProvider }
func (a Actor) IsCustomer() bool { return a.Role == model.RoleCustomer }

func requireRole(a Actor, roles ...model.Role) error {
	for _, r := range roles {
		if a.Role == r {
			return nil
		}
	}
	return fmt.Errorf("%w: role %q may not perform this action", ErrForbidden, a.Role)
}

func invalidArg(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// storeErr maps repository sentinels onto service errors; what names the
// entity for the message.
func storeErr(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	case errors.Is(err, repository.ErrDuplicate):
		return fmt.Errorf("%w: %s already exists", ErrDomainRule, what)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}
