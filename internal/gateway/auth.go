package gateway

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const defaultCulture = "en-US"

// signer builds the "hmac" Authorization header Buckaroo expects on every
// JSON API call.
type signer struct {
	creds Credentials
	now   func() time.Time
	nonce func() string
}

func (s signer) sign(req *http.Request, body []byte) error {
	if s.creds.WebsiteKey == "" || s.creds.SecretKey == "" {
		return fmt.Errorf("website key and secret key are required")
	}

	timestamp := strconv.FormatInt(s.now().Unix(), 10)
	nonce := s.nonce()
	signature := computeSignature(s.creds.WebsiteKey, s.creds.SecretKey, req.Method, requestURI(req.URL), timestamp, nonce, body)

	req.Header.Set("Authorization", fmt.Sprintf("hmac %s:%s:%s:%s", s.creds.WebsiteKey, signature, nonce, timestamp))
	culture := s.creds.Culture
	if culture == "" {
		culture = defaultCulture
	}
	req.Header.Set("Culture", culture)
	return nil
}

// requestURI is the lower-cased, URL-encoded host and path without scheme
func requestURI(u *url.URL) string {
	raw := u.Host + u.EscapedPath()
	if u.RawQuery != "" {
		raw += "?" + u.RawQuery
	}
	return strings.ToLower(url.QueryEscape(raw))
}

func computeSignature(websiteKey, secretKey, method, uri, timestamp, nonce string, body []byte) string {
	var contentHash string
	if len(body) > 0 {
		sum := md5.Sum(body)
		contentHash = base64.StdEncoding.EncodeToString(sum[:])
	}

	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(websiteKey + method + uri + timestamp + nonce + contentHash))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func newNonce() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
