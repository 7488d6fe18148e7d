package staticmap

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
)

// Sign appends an HMAC-SHA1 signature of the URL's path and query, keyed
// with the URL-safe base64 key, as the signature parameter.
func Sign(rawURL, key string) (string, error) {
	secret, err := base64.StdEncoding.DecodeString(fromURLSafe(key))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	if len(secret) == 0 {
		return "", fmt.Errorf("%w: empty key", ErrInvalidKey)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("staticmap: parse url: %w", err)
	}

	mac := hmac.New(sha1.New, secret)
	mac.Write([]byte(u.EscapedPath() + "?" + u.RawQuery))
	sig := toURLSafe(base64.StdEncoding.EncodeToString(mac.Sum(nil)))

	return u.Scheme + "://" + u.Host + u.EscapedPath() + "?" + u.RawQuery + "&signature=" + sig, nil
}

func fromURLSafe(s string) string {
	return strings.NewReplacer("-", "+", "_", "/").Replace(s)
}

func toURLSafe(s string) string {
	return strings.NewReplacer("+", "-", "/", "_").Replace(s)
}
