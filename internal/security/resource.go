package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
)

// SignAttachment binds a stored attachment to its case, object key and
// content checksum. Changing any of the three invalidates the signature.
func SignAttachment(secret, caseID, objectKey string, checksum []byte) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	for _, part := range []string{caseID, objectKey, hex.EncodeToString(checksum)} {
		mac.Write([]byte(part))
		mac.Write([]byte{0})
	}
	sum := mac.Sum(nil)
	out := make([]byte, base64.RawURLEncoding.EncodedLen(len(sum)))
	base64.RawURLEncoding.Encode(out, sum)
	return out
}

func VerifyAttachment(secret string, signature []byte, caseID, objectKey string, checksum []byte) bool {
	return hmac.Equal(signature, SignAttachment(secret, caseID, objectKey, checksum))
}
