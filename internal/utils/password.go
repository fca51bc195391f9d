package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword derives a bcrypt hash of plain at the given cost. A cost
// outside bcrypt's supported range falls back to the library default so a
// misconfigured cost can never silently weaken hashing below MinCost.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches the stored bcrypt hash. The
// comparison is constant time within bcrypt itself.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
