// Package profiles stores backend connection profiles of the outpost CLI.
//
// A profile names one backend: its API root, an optional extra CA
// certificate, and the access token. Profiles live together in one
// user-owned store file, kept at permission 0600.
package profiles

import (
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hectane/go-acl"
	yaml "gopkg.in/yaml.v3"
)

var ErrProfileStoreNotFound = errors.New("profile store is not found")
var ErrCannotCreateStore = errors.New("cannot create profile store")
var ErrCannotUpdateStore = errors.New("cannot update profile store")
var ErrProfileInvalid = errors.New("outpost profile is invalid")

// ProfileStore is a map from profile name to Profile.
type ProfileStore map[string]*Profile

type Cert struct {
	// base64 encoded CA certificate
	CA string `yaml:"ca,omitempty"`
}

// Profile points at one Outpost backend.
type Profile struct {
	// endpoint of the backend API
	ApiRoot string `yaml:"apiRoot"`

	Cert Cert `yaml:"cert,omitempty"`

	// access token sent as a bearer token
	Token string `yaml:"token,omitempty"`
}

func verifyUrl(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.IsAbs()
}

func verifyPEM(b64cert string) bool {
	bin, err := base64.StdEncoding.DecodeString(b64cert)
	if err != nil {
		return false
	}
	blk, _ := pem.Decode(bin)
	return blk != nil
}

// Verify the profile.
//
// # Return
//
// nil if it is valid. Otherwise, ErrProfileInvalid error.
func (p *Profile) Verify() error {
	if !verifyUrl(p.ApiRoot) {
		return fmt.Errorf("%w: apiRoot is not URL: %s", ErrProfileInvalid, p.ApiRoot)
	}
	if p.Cert.CA != "" && !verifyPEM(p.Cert.CA) {
		return fmt.Errorf("%w: cert.ca is not PEM", ErrProfileInvalid)
	}
	if p.Token != "" {
		if _, _, err := jwt.NewParser().ParseUnverified(p.Token, jwt.MapClaims{}); err != nil {
			return fmt.Errorf("%w: token is not a well-formed JWT: %s", ErrProfileInvalid, err)
		}
	}

	return nil
}

// TokenExpiresAt extracts the expiry of the profile's token, when it has one.
//
// The token is inspected, not verified; verification is the backend's job.
func (p *Profile) TokenExpiresAt() (time.Time, bool) {
	if p.Token == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(p.Token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Load reads the profile store from file.
func Load(path string) (ProfileStore, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrProfileStoreNotFound, path)
		}
		return nil, err
	}
	return Unmarshal(buf)
}

// Unmarshal the profile store from yaml in a byte array.
func Unmarshal(buf []byte) (ProfileStore, error) {
	ret := map[string]*Profile{}
	if err := yaml.Unmarshal(buf, &ret); err != nil {
		return nil, err
	}
	return ret, nil
}

// newSafeFile creates an empty file accessible only by the current user.
// An existing file is truncated and its permission enforced.
func newSafeFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_TRUNC|os.O_CREATE|os.O_RDWR, os.FileMode(0600))
	if err != nil {
		return nil, err
	}
	if err := acl.Chmod(path, os.FileMode(0600)); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// Save writes the profile store to file, keeping a backup of the previous
// content until the write lands.
func (ps *ProfileStore) Save(path string) error {
	saving := false

	if err := os.MkdirAll(filepath.Dir(path), os.FileMode(0700)); err != nil {
		return err
	}

	bkpath := path + ".backup"
	bk, err := newSafeFile(bkpath)
	if err != nil {
		return err
	}
	defer func() {
		if !saving {
			os.Remove(bkpath)
		}
	}()
	defer bk.Close()

	f, err := os.OpenFile(path, os.O_RDWR, os.FileMode(0600))
	if err == nil {
		// the store may have been created with loose permissions; enforce
		if err := acl.Chmod(path, os.FileMode(0600)); err != nil {
			return err
		}
	} else {
		if os.IsPermission(err) {
			return fmt.Errorf(
				"%w, because no permission to write file at %s",
				ErrCannotUpdateStore, path,
			)
		} else if os.IsNotExist(err) {
			f_, err_ := newSafeFile(path)
			if err_ != nil {
				return fmt.Errorf("%w: cannot create a file at %s", ErrCannotCreateStore, path)
			}
			f = f_
		} else {
			return err
		}
	}
	defer f.Close()

	if _, err := f.Seek(0, 0); err != nil {
		return err
	}
	if _, err := io.Copy(bk, f); err != nil {
		return err
	}

	saving = true
	buf, err := yaml.Marshal(ps)
	if err != nil {
		return err
	}
	if err := f.Truncate(0); err != nil {
		return err
	}
	if _, err := f.Seek(0, 0); err != nil {
		return err
	}
	if _, err := f.Write(buf); err != nil {
		return err
	}

	os.Remove(bkpath)
	return nil
}
