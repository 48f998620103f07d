package mercadopago

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

var (
	ErrSignatureMissing   = errors.New("x-signature header missing")
	ErrSignatureMalformed = errors.New("x-signature header malformed")
	ErrSignatureMismatch  = errors.New("x-signature mismatch")
)

// VerifySignature checks the x-signature header MercadoPago sends with
// webhook notifications ("ts=<unix ms>,v1=<hex hmac>"). The signed manifest
// is "id:<data.id>;request-id:<x-request-id>;ts:<ts>;", omitting the parts
// that are empty.
func VerifySignature(secret, header, requestID, dataID string) error {
	if strings.TrimSpace(header) == "" {
		return ErrSignatureMissing
	}

	var ts, v1 string
	for _, part := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch strings.TrimSpace(key) {
		case "ts":
			ts = strings.TrimSpace(value)
		case "v1":
			v1 = strings.TrimSpace(value)
		}
	}
	if ts == "" || v1 == "" {
		return ErrSignatureMalformed
	}

	expected := Sign(secret, requestID, dataID, ts)
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(v1))) {
		return ErrSignatureMismatch
	}
	return nil
}

// Sign computes the v1 value for the given notification fields.
func Sign(secret, requestID, dataID, ts string) string {
	var manifest strings.Builder
	if dataID != "" {
		// alphanumeric ids are signed lower-cased
		manifest.WriteString("id:" + strings.ToLower(dataID) + ";")
	}
	if requestID != "" {
		manifest.WriteString("request-id:" + requestID + ";")
	}
	manifest.WriteString("ts:" + ts + ";")

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(manifest.String()))
	return hex.EncodeToString(mac.Sum(nil))
}
