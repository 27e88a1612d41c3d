package utils

import (
    "crypto/rand"
    "math/big"

    "golang.org/x/crypto/bcrypt"
)

// GenerateOTP returns a numeric one-time code of the given length using
// crypto/rand.  Leading zeros are allowed, so a 4-digit code has the
// full 10^4 space.  Length is clamped to [4, 8].
func GenerateOTP(length int) (string, error) {
    if length < 4 {
        length = 4
    }
    if length > 8 {
        length = 8
    }
    digits := make([]byte, length)
    for i := range digits {
        n, err := rand.Int(rand.Reader, big.NewInt(10))
        if err != nil {
            return "", err
        }
        digits[i] = byte('0' + n.Int64())
    }
    return string(digits), nil
}

// HashOTP returns a bcrypt hash of the code.  Only the hash is stored;
// verification compares against it so a leaked otp_events table does not
// expose usable codes.
func HashOTP(code string, cost int) (string, error) {
    b, err := bcrypt.GenerateFromPassword([]byte(code), cost)
    if err != nil {
        return "", err
    }
    return string(b), nil
}

// VerifyOTP safely compares a stored hash against a submitted code.
func VerifyOTP(hash, code string) bool {
    return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}
