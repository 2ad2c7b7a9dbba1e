// Package storage issues and resolves signed URLs for the external blob store.
// Blobs themselves never pass through this service.
package storage

import (
	"errors"
	"net/url"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	scopeUpload   = "upload"
	scopeDownload = "download"
)

// Upload is a one-shot upload target. Ref is what clients attach to a
// submission once the upload completed.
type Upload struct {
	Ref       string    `json:"storage_ref"`
	URL       string    `json:"upload_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

type blobClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// URLSigner signs blob URLs for a base endpoint.
type URLSigner struct {
	base   string
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewURLSigner constructs a signer.
func NewURLSigner(baseURL, secret string, ttl time.Duration) *URLSigner {
	return &URLSigner{
		base:   strings.TrimRight(baseURL, "/"),
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// IssueUploadURL allocates a storage ref and a signed URL to upload it to.
func (s *URLSigner) IssueUploadURL() (*Upload, error) {
	ref := uuid.NewString()
	signed, exp, err := s.sign(ref, scopeUpload)
	if err != nil {
		return nil, err
	}
	return &Upload{Ref: ref, URL: signed, ExpiresAt: exp}, nil
}

// ResolveURL returns a signed download URL, or nil when ref is empty.
func (s *URLSigner) ResolveURL(ref *string) *string {
	if s == nil || ref == nil || strings.TrimSpace(*ref) == "" {
		return nil
	}
	signed, _, err := s.sign(*ref, scopeDownload)
	if err != nil {
		return nil
	}
	return &signed
}

// Verify checks a token presented back by the blob store.
func (s *URLSigner) Verify(ref, token, scope string) error {
	parsed, err := jwt.ParseWithClaims(token, &blobClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return err
	}
	claims, ok := parsed.Claims.(*blobClaims)
	if !ok || claims.Subject != ref || claims.Scope != scope {
		return errors.New("token does not grant access to this blob")
	}
	return nil
}

func (s *URLSigner) sign(ref, scope string) (string, time.Time, error) {
	issuedAt := s.now()
	exp := issuedAt.Add(s.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &blobClaims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ref,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return s.base + "/" + url.PathEscape(ref) + "?token=" + url.QueryEscape(signed), exp, nil
}
