package profiles_test

import (
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/outpost-run/outpost/cmd/outpost/config/profiles"
	"github.com/outpost-run/outpost/pkg/utils/try"
)

const dummyPEM = `-----BEGIN CERTIFICATE-----
MIIBhTCCASugAwIBAgIQIRi6zePL6mKjOipn+dNuaTAKBggqhkjOPQQDAjASMRAw
DgYDVQQKEwdBY21lIENvMB4XDTE3MTAyMDE5NDMwNloXDTE4MTAyMDE5NDMwNlow
EjEQMA4GA1UEChMHQWNtZSBDbzBZMBMGByqGSM49AgEGCCqGSM49AwEHA0IABD0d
7VNhbWvZLWPuj/RtHFjvtJBEwOkhbN/BnnE8rnZR8+sbwnc/KhCk3FhnpHZnQz7B
5aETbbIgmuvewdjvSBSjYzBhMA4GA1UdDwEB/wQEAwICpDATBgNVHSUEDDAKBggr
BgEFBQcDATAPBgNVHRMBAf8EBTADAQH/MCkGA1UdEQQiMCCCDmxvY2FsaG9zdDo1
NDUzgg4xMjcuMC4wLjE6NTQ1MzAKBggqhkjOPQQDAgNIADBFAiEA2zpJEPQyz6/l
Wf86aX6PepsntZv2GYlA5UpabfT2EZICICpJ5h/iI+i341gBmLiAFQOyTDT+/wQc
6MF9+Yw1Yy0t
-----END CERTIFICATE-----`

func TestProfile_Verify(t *testing.T) {
	t.Run("when the profile has an absolute apiRoot, it passes", func(t *testing.T) {
		p := &profiles.Profile{ApiRoot: "https://api.outpost.example:8443"}
		if err := p.Verify(); err != nil {
			t.Errorf("unexpected verification error: %s", err)
		}
	})

	t.Run("when apiRoot is not a URL, it fails", func(t *testing.T) {
		p := &profiles.Profile{ApiRoot: "not a url"}
		if err := p.Verify(); !errors.Is(err, profiles.ErrProfileInvalid) {
			t.Errorf("expected ErrProfileInvalid, got: %v", err)
		}
	})

	t.Run("when cert.ca is valid base64 PEM, it passes", func(t *testing.T) {
		p := &profiles.Profile{
			ApiRoot: "https://api.outpost.example",
			Cert: profiles.Cert{
				CA: base64.StdEncoding.EncodeToString([]byte(dummyPEM)),
			},
		}
		if err := p.Verify(); err != nil {
			t.Errorf("unexpected verification error: %s", err)
		}
	})

	t.Run("when cert.ca is garbage, it fails", func(t *testing.T) {
		p := &profiles.Profile{
			ApiRoot: "https://api.outpost.example",
			Cert:    profiles.Cert{CA: "this is no cert"},
		}
		if err := p.Verify(); !errors.Is(err, profiles.ErrProfileInvalid) {
			t.Errorf("expected ErrProfileInvalid, got: %v", err)
		}
	})

	t.Run("when the token is not a JWT, it fails", func(t *testing.T) {
		p := &profiles.Profile{
			ApiRoot: "https://api.outpost.example",
			Token:   "not.a.jwt",
		}
		if err := p.Verify(); !errors.Is(err, profiles.ErrProfileInvalid) {
			t.Errorf("expected ErrProfileInvalid, got: %v", err)
		}
	})
}

func TestProfile_TokenExpiresAt(t *testing.T) {
	t.Run("when the token carries an exp claim, it is returned", func(t *testing.T) {
		exp := jwt.NewNumericDate(time.Now().Add(time.Hour))
		token := try.To(
			jwt.NewWithClaims(
				jwt.SigningMethodHS256,
				jwt.MapClaims{"exp": exp.Unix()},
			).SignedString([]byte("test-secret")),
		).OrFatal(t)

		p := &profiles.Profile{ApiRoot: "https://api.outpost.example", Token: token}
		at, ok := p.TokenExpiresAt()
		if !ok {
			t.Fatal("an expiry should be found")
		}
		if at.Unix() != exp.Unix() {
			t.Errorf("unexpected expiry: %s (expected: %s)", at, exp.Time)
		}
	})

	t.Run("when the profile has no token, there is no expiry", func(t *testing.T) {
		p := &profiles.Profile{ApiRoot: "https://api.outpost.example"}
		if _, ok := p.TokenExpiresAt(); ok {
			t.Error("no expiry should be found")
		}
	})
}

func TestProfileStore(t *testing.T) {
	t.Run("when a store is saved, loading it round-trips", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "store", "profile")
		store := profiles.ProfileStore{
			"default": &profiles.Profile{ApiRoot: "https://api.outpost.example"},
			"staging": &profiles.Profile{
				ApiRoot: "https://staging.outpost.example",
				Token:   "",
			},
		}
		if err := store.Save(path); err != nil {
			t.Fatal(err)
		}

		loaded := try.To(profiles.Load(path)).OrFatal(t)
		if len(loaded) != 2 {
			t.Fatalf("unexpected store content: %+v", loaded)
		}
		if loaded["default"].ApiRoot != "https://api.outpost.example" {
			t.Errorf("unexpected profile: %+v", loaded["default"])
		}

		if runtime.GOOS != "windows" {
			stat := try.To(os.Stat(path)).OrFatal(t)
			if stat.Mode().Perm() != 0600 {
				t.Errorf("the store should be private to the user: %s", stat.Mode())
			}
		}
	})

	t.Run("when the store does not exist, Load returns ErrProfileStoreNotFound", func(t *testing.T) {
		_, err := profiles.Load(filepath.Join(t.TempDir(), "no-such-file"))
		if !errors.Is(err, profiles.ErrProfileStoreNotFound) {
			t.Errorf("expected ErrProfileStoreNotFound, got: %v", err)
		}
	})
}
