package adminctl

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/formvault/internal/cryptox"
	"github.com/dmitrijs2005/formvault/internal/server/auth"
	"github.com/dmitrijs2005/formvault/internal/server/store"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

func (a *App) readSecret(prompt string) ([]byte, error) {
	fmt.Fprint(a.out, prompt)
	pw, err := readPassword(a.stdin)
	fmt.Fprintln(a.out)
	return pw, err
}

func (a *App) passwd(ctx context.Context, email string) error {
	user := a.store.GetUserByEmail(email)
	if user == nil {
		return fmt.Errorf("user %q not found", email)
	}

	pw, err := a.readSecret("New password: ")
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	defer cryptox.Wipe(pw)
	if len(pw) == 0 {
		return errors.New("password must not be empty")
	}
	confirm, err := a.readSecret("Repeat password: ")
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	defer cryptox.Wipe(confirm)
	if !bytes.Equal(pw, confirm) {
		return errors.New("passwords do not match")
	}

	hash, err := auth.HashPassword(string(pw))
	if err != nil {
		return err
	}
	if _, err := a.store.UpdateUser(ctx, user.ID, store.UserPatch{PasswordHash: &hash}); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "password updated for %s\n", user.Email)
	return nil
}
