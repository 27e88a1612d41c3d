package utils

import (
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "golang.org/x/crypto/bcrypt"
)

func TestGenerateOTPLengthAndDigits(t *testing.T) {
    for _, length := range []int{4, 6, 8} {
        code, err := GenerateOTP(length)
        require.NoError(t, err)
        require.Len(t, code, length)
        for _, r := range code {
            assert.True(t, r >= '0' && r <= '9', "code %q contains non-digit", code)
        }
    }
}

func TestGenerateOTPClampsLength(t *testing.T) {
    code, err := GenerateOTP(1)
    require.NoError(t, err)
    assert.Len(t, code, 4)

    code, err = GenerateOTP(20)
    require.NoError(t, err)
    assert.Len(t, code, 8)
}

func TestHashAndVerifyOTP(t *testing.T) {
    hash, err := HashOTP("4821", bcrypt.MinCost)
    require.NoError(t, err)
    assert.NotEqual(t, "4821", hash)

    assert.True(t, VerifyOTP(hash, "4821"))
    assert.False(t, VerifyOTP(hash, "4822"))
    assert.False(t, VerifyOTP(hash, ""))
    assert.False(t, VerifyOTP("not-a-hash", "4821"))
}
