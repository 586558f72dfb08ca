package password

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	h := New(WithCost(bcrypt.MinCost))

	hash, err := h.Hash("Sup3rSecret")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if hash == "Sup3rSecret" {
		t.Fatal("Hash() returned the plaintext password")
	}

	if err := h.Verify("Sup3rSecret", hash); err != nil {
		t.Errorf("Verify() with correct password error = %v", err)
	}
	if err := h.Verify("wrong", hash); !errors.Is(err, ErrPasswordMismatch) {
		t.Errorf("Verify() with wrong password error = %v, want ErrPasswordMismatch", err)
	}
	if err := h.Verify("Sup3rSecret", "not-a-hash"); !errors.Is(err, ErrInvalidHash) {
		t.Errorf("Verify() with bad hash error = %v, want ErrInvalidHash", err)
	}
}

func TestValidate(t *testing.T) {
	h := New()

	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{"valid", "Passw0rd", nil},
		{"too short", "Pw1", ErrPasswordTooShort},
		{"no uppercase", "passw0rd", ErrPasswordNoUppercase},
		{"no lowercase", "PASSW0RD", ErrPasswordNoLowercase},
		{"no number", "Password", ErrPasswordNoNumber},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.Validate(tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate(%q) error = %v, want %v", tt.password, err, tt.wantErr)
			}
		})
	}
}

func TestNeedsRehash(t *testing.T) {
	low := New(WithCost(bcrypt.MinCost))
	hash, err := low.Hash("Passw0rd")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if low.NeedsRehash(hash) {
		t.Error("NeedsRehash() = true for a hash at the current cost")
	}
	if !New(WithCost(bcrypt.MinCost + 1)).NeedsRehash(hash) {
		t.Error("NeedsRehash() = false for a hash below the configured cost")
	}
	if !low.NeedsRehash("garbage") {
		t.Error("NeedsRehash() = false for an invalid hash")
	}
}
