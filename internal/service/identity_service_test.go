package service

import (
	"context"
	"testing"

	"github.com/Leganyst/service-marketplace/internal/model"
)

func TestRegisterValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	tests := []struct {
		name string
		role model.Role
		in   RegisterInput
		want error
	}{
		{"admin self-registration", model.RoleAdmin, RegisterInput{Email: "a@b.c", FullName: "A", Password: "password123"}, ErrInvalidArgument},
		{"missing name", model.RoleCustomer, RegisterInput{Email: "a@b.c", Password: "password123"}, ErrInvalidArgument},
		{"bad email", model.RoleCustomer, RegisterInput{Email: "not-an-email", FullName: "A", Password: "password123"}, ErrInvalidArgument},
		{"short password", model.RoleCustomer, RegisterInput{Email: "a@b.c", FullName: "A", Password: "short"}, ErrInvalidArgument},
		{"duplicate email", model.RoleProvider, RegisterInput{Email: " CUST@example.com ", FullName: "A", Password: "password123"}, ErrDomainRule},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.identity.Register(ctx, tt.role, tt.in)
			wantErr(t, err, tt.want)
		})
	}
}

func TestLoginAndResolve(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	res, err := e.identity.Login(ctx, "Cust@Example.com", "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Token == "" || res.User.Role != model.RoleCustomer {
		t.Fatalf("login result = %+v", res)
	}

	actor, err := e.identity.ResolveToken(ctx, res.Token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if actor != e.customer {
		t.Fatalf("actor = %+v, want %+v", actor, e.customer)
	}

	_, err = e.identity.Login(ctx, "cust@example.com", "wrong-password")
	wantErr(t, err, ErrUnauthorized)
	_, err = e.identity.Login(ctx, "nobody@example.com", "password123")
	wantErr(t, err, ErrUnauthorized)
	_, err = e.identity.ResolveToken(ctx, "garbage")
	wantErr(t, err, ErrUnauthorized)

	me, err := e.identity.Me(ctx, actor)
	if err != nil {
		t.Fatal(err)
	}
	if me.Email != "cust@example.com" {
		t.Fatalf("me = %s", me.Email)
	}
}
