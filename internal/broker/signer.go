package broker

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Signed request headers expected by the trading API.
const (
	headerAccessKey        = "BN-ACCESS-KEY"
	headerAccessSign       = "BN-ACCESS-SIGN"
	headerAccessTimestamp  = "BN-ACCESS-TIMESTAMP"
	headerAccessPassphrase = "BN-ACCESS-PASSPHRASE"
)

// Sign computes the hex-encoded HMAC-SHA256 signature over the request
// parameters. Keys are sorted lexicographically and concatenated as
// key=value pairs joined by "&", so the signature is stable regardless
// of map insertion order.
func Sign(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}
	payload := strings.Join(pairs, "&")

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
