package security

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	h := BcryptHasher{Cost: bcrypt.MinCost}
	hash, err := h.Hash("s3cret-pass")
	if err != nil {
		t.Fatal(err)
	}
	if err := h.Compare(hash, "s3cret-pass"); err != nil {
		t.Fatalf("compare: %v", err)
	}
	if err := h.Compare(hash, "wrong"); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("mismatch err = %v", err)
	}
}

func TestSessionTokens(t *testing.T) {
	g := SessionTokens{Bytes: 16}
	a, err := g.NewToken()
	if err != nil {
		t.Fatal(err)
	}
	b, _ := g.NewToken()
	if a == b || len(a) != len("sig_adm_")+32 {
		t.Fatalf("tokens %q %q", a, b)
	}
	if err := g.Check(a); err != nil {
		t.Fatalf("check issued token: %v", err)
	}
	for _, bad := range []string{"", "Bearer x", "sig_adm_zz", a[:len(a)-2], "sig_usr_" + a[len("sig_adm_"):]} {
		if err := g.Check(bad); !errors.Is(err, ErrMalformedToken) {
			t.Fatalf("check(%q) = %v", bad, err)
		}
	}
}
