package utils // package utils provides helpers for session token creation and hashing

import (
	"crypto/rand"   // secure random generation for token IDs
	"crypto/sha256" // SHA-256 hashing of token IDs
	"encoding/hex"  // hex encoding of random bytes and digests
	"errors"        // sentinel parse errors
	"strconv"       // numeric subject claim conversion
	"time"          // expiration handling

	"github.com/golang-jwt/jwt/v5" // JWT library for signed session tokens
)

// SessionToken is a signed HS256 JWT handed to the client after login. The
// embedded jti claim identifies the session; its SHA-256 hash is stored
// server-side so logout can invalidate the token before it expires.
type SessionToken struct {
	Token string    // the serialized JWT string
	JTI   string    // random session identifier carried in the jti claim
	Exp   time.Time // UTC expiration time
}

// ErrInvalidToken is returned when a session token fails parsing, signature
// verification or claim extraction.
var ErrInvalidToken = errors.New("invalid session token")

// NewSessionToken builds and signs a session JWT for a user. Claims: sub
// (user ID), jti (random 32-byte hex), exp and iat.
func NewSessionToken(secret string, userID uint64, ttlMin int) (SessionToken, error) {
	jtiBytes := make([]byte, 32)
	if _, err := rand.Read(jtiBytes); err != nil {
		return SessionToken{}, err
	}
	jti := hex.EncodeToString(jtiBytes)
	exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub": userID,
		"jti": jti,
		"exp": exp.Unix(),
		"iat": time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Token: signed, JTI: jti, Exp: exp}, nil
}

// ParseSessionToken verifies the signature and expiry of a session JWT and
// extracts the user ID and jti. Tokens signed with anything other than HMAC
// are rejected.
func ParseSessionToken(secret, raw string) (userID uint64, jti string, err error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return 0, "", ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", ErrInvalidToken
	}
	switch sub := claims["sub"].(type) {
	case float64:
		userID = uint64(sub)
	case string:
		n, perr := strconv.ParseUint(sub, 10, 64)
		if perr != nil {
			return 0, "", ErrInvalidToken
		}
		userID = n
	default:
		return 0, "", ErrInvalidToken
	}
	jti, ok = claims["jti"].(string)
	if !ok || jti == "" {
		return 0, "", ErrInvalidToken
	}
	return userID, jti, nil
}

// HashJTI returns the SHA-256 hex digest of a session identifier. Only the
// digest is persisted in the session_tokens table.
func HashJTI(jti string) string {
	sum := sha256.Sum256([]byte(jti))
	return hex.EncodeToString(sum[:])
}
