package services

import (
	"fmt"

	"raffler/domain/interfaces"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// maxRawCodeLength is the longest input bcrypt will hash
const maxRawCodeLength = 72

// bcryptVault hashes verification codes with bcrypt
type bcryptVault struct {
	cost int
}

// NewSecretVault creates a vault hashing at the given bcrypt cost. Costs
// outside bcrypt's accepted range fall back to bcrypt.DefaultCost.
func NewSecretVault(cost int) interfaces.SecretVault {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &bcryptVault{cost: cost}
}

// NewRawCode returns a random UUIDv4 string
func (v *bcryptVault) NewRawCode() (string, error) {
	code, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}
	return code.String(), nil
}

func (v *bcryptVault) Issue(rawCode string) (string, error) {
	if rawCode == "" {
		return "", fmt.Errorf("cannot hash an empty verification code")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(rawCode), v.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash verification code: %w", err)
	}
	return string(hashed), nil
}

func (v *bcryptVault) Verify(rawCode, hashedCode string) bool {
	if rawCode == "" || hashedCode == "" || len(rawCode) > maxRawCodeLength {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashedCode), []byte(rawCode)) == nil
}
