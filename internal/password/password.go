package password

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/gorilla/securecookie"
	"golang.org/x/crypto/bcrypt"
)

const saltLength = 16

var ErrSalt = errors.New("salt generation failed")

// Encoder hashes staff passwords together with a per-member salt.
type Encoder interface {
	CreateSalt() (string, error)
	Encode(password string, salt string) (string, error)
	Verify(hash string, password string, salt string) bool
}

type encoder struct {
	cost int
}

func NewEncoder(cost int) Encoder {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	return encoder{cost: cost}
}

func (e encoder) CreateSalt() (string, error) {
	key := securecookie.GenerateRandomKey(saltLength)
	if key == nil {
		return "", ErrSalt
	}
	return hex.EncodeToString(key), nil
}

func (e encoder) Encode(password string, salt string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(prehash(password, salt), e.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (e encoder) Verify(hash string, password string, salt string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), prehash(password, salt)) == nil
}

// bcrypt принимает не больше 72 байт, поэтому пароль с солью сводится
// к HMAC-SHA256 фиксированной длины (64 hex-символа)
func prehash(password string, salt string) []byte {
	mac := hmac.New(sha256.New, []byte(salt))
	mac.Write([]byte(password))
	sum := mac.Sum(nil)
	out := make([]byte, hex.EncodedLen(len(sum)))
	hex.Encode(out, sum)
	return out
}
