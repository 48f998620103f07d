package mercadopago

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifySignature(t *testing.T) {
	secret := "webhook-secret"
	v1 := Sign(secret, "req-1", "123456", "1704908010")
	header := "ts=1704908010,v1=" + v1

	assert.NoError(t, VerifySignature(secret, header, "req-1", "123456"))
	assert.NoError(t, VerifySignature(secret, " ts = 1704908010 , v1 = "+v1, "req-1", "123456"))

	assert.ErrorIs(t, VerifySignature(secret, "", "req-1", "123456"), ErrSignatureMissing)
	assert.ErrorIs(t, VerifySignature(secret, "ts=1704908010", "req-1", "123456"), ErrSignatureMalformed)
	assert.ErrorIs(t, VerifySignature(secret, header, "req-2", "123456"), ErrSignatureMismatch)
	assert.ErrorIs(t, VerifySignature(secret, header, "req-1", "999"), ErrSignatureMismatch)
	assert.ErrorIs(t, VerifySignature("other", header, "req-1", "123456"), ErrSignatureMismatch)
}

func TestSignLowercasesDataID(t *testing.T) {
	assert.Equal(t, Sign("s", "r", "abc", "1"), Sign("s", "r", "ABC", "1"))
	assert.NotEqual(t, Sign("s", "r", "abc", "1"), Sign("s", "", "abc", "1"))
}
