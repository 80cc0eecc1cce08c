package app

import (
	"context"
	"strings"
	"time"

	"qcm-challenge/internal/domain"
)

// TokenIssuer signs admin bearer tokens.
type TokenIssuer interface {
	Issue(subject string) (token string, expiresAt time.Time, err error)
}

// PasswordVerifier checks a password against a stored hash.
type PasswordVerifier interface {
	Compare(hash, password string) error
}

// AdminCredentials is the single admin account.
type AdminCredentials struct {
	Username     string
	PasswordHash string
}

// Accounts handles student and admin logins and the persisted current user.
type Accounts struct {
	kv       KeyValueStore
	gate     *CompletionGate
	admin    AdminCredentials
	verifier PasswordVerifier
	tokens   TokenIssuer
}

func NewAccounts(kv KeyValueStore, gate *CompletionGate, admin AdminCredentials, verifier PasswordVerifier, tokens TokenIssuer) *Accounts {
	return &Accounts{kv: kv, gate: gate, admin: admin, verifier: verifier, tokens: tokens}
}

// StudentLogin validates the form, refuses identities that already passed and
// records the student as current user.
func (a *Accounts) StudentLogin(ctx context.Context, name, pole, phone string) (domain.User, error) {
	user, err := NewStudent(name, pole, phone)
	if err != nil {
		return domain.User{}, err
	}
	done, err := a.gate.Has(ctx, user.Name)
	if err != nil {
		return domain.User{}, err
	}
	if done {
		return domain.User{}, domain.ErrAlreadyCompleted
	}
	if err := saveJSON(ctx, a.kv, domain.KeyCurrentUser, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// AdminLogin checks the admin credentials and returns a bearer token.
func (a *Accounts) AdminLogin(ctx context.Context, username, password string) (string, time.Time, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", time.Time{}, domain.Invalid("", "please fill all fields")
	}
	if username != a.admin.Username || a.verifier.Compare(a.admin.PasswordHash, password) != nil {
		return "", time.Time{}, domain.ErrInvalidCredentials
	}
	token, expires, err := a.tokens.Issue(username)
	if err != nil {
		return "", time.Time{}, err
	}
	admin := domain.User{Name: "Admin", UserType: domain.UserAdmin}
	if err := saveJSON(ctx, a.kv, domain.KeyCurrentUser, admin); err != nil {
		return "", time.Time{}, err
	}
	return token, expires, nil
}

// Logout forgets the current user.
func (a *Accounts) Logout(ctx context.Context) error {
	return a.kv.Delete(ctx, domain.KeyCurrentUser)
}

// CurrentUser returns the persisted user, if any.
func (a *Accounts) CurrentUser(ctx context.Context) (domain.User, bool, error) {
	return loadOrAbsent[domain.User](ctx, a.kv, domain.KeyCurrentUser)
}

// NewStudent trims and validates the login form fields.
func NewStudent(name, pole, phone string) (domain.User, error) {
	user := domain.User{
		Name:     strings.TrimSpace(name),
		Pole:     strings.TrimSpace(pole),
		Phone:    strings.TrimSpace(phone),
		UserType: domain.UserStudent,
	}
	switch {
	case user.Name == "":
		return user, domain.Invalid("name", "please fill all fields")
	case user.Pole == "":
		return user, domain.Invalid("pole", "please fill all fields")
	case user.Phone == "":
		return user, domain.Invalid("phone", "please fill all fields")
	}
	return user, nil
}
