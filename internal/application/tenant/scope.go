// Package tenant implementa la guarda de alcance por empresa: el businessID de cualquier
// operación proviene únicamente del actor autenticado, nunca de parámetros del cliente.
package tenant

import (
	"context"
	"strings"

	"github.com/jhoicas/stock-ledger/internal/domain"
)

// Roles conocidos en el token.
const (
	RoleAdmin     = "admin"
	RoleBodeguero = "bodeguero"
	RoleVendedor  = "vendedor"
)

// Actor identidad autenticada que llega desde la frontera HTTP (claims del JWT).
type Actor struct {
	BusinessID string
	UserID     string
	Role       string
}

// ResolveBusiness devuelve el businessID del actor o ErrUnauthorized.
// Todo caso de uso la invoca antes de tocar el almacenamiento.
func ResolveBusiness(actor Actor) (string, error) {
	id := strings.TrimSpace(actor.BusinessID)
	if id == "" {
		return "", domain.ErrUnauthorized
	}
	return id, nil
}

// ResolveActor como ResolveBusiness pero exige además el usuario (mutaciones del libro).
func ResolveActor(actor Actor) (businessID, userID string, err error) {
	businessID, err = ResolveBusiness(actor)
	if err != nil {
		return "", "", err
	}
	userID = strings.TrimSpace(actor.UserID)
	if userID == "" {
		return "", "", domain.ErrUnauthorized
	}
	return businessID, userID, nil
}

// Owns indica si la fila pertenece a la empresa. Una discrepancia se trata como "no encontrado".
func Owns(businessID, rowBusinessID string) bool {
	return businessID != "" && businessID == rowBusinessID
}

type actorKey struct{}

// WithActor guarda el actor en el contexto (lo usa el middleware de auth).
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// FromContext recupera el actor; ok es falso si no hay actor autenticado.
func FromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok
}
