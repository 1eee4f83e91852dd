package employee

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base32"
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var (
	salt    = []byte("myacademy.core.employee.token_gen")
	nowFunc = time.Now // mockable

	b32 = base32.StdEncoding.WithPadding(base32.NoPadding)

	// errors
	errInvalidToken = errors.New("invalid token")
	errTokenExpired = errors.New("token expired")
)

// tokenGenerator issues stateless password reset tokens.
// A token is invalidated as soon as the password hash or the last login changes.
type tokenGenerator struct {
	secretKey []byte
	timeout   time.Duration
}

// encodeUID base64 encodes given Employee ID
func encodeUID(emp Employee) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strconv.FormatInt(emp.ID, 10)))
}

// decodeUID base64 decodes given UID
func decodeUID(uid string) (int64, error) {
	idBytes, err := base64.RawURLEncoding.DecodeString(uid)
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(string(idBytes), 10, 64)
}

// makeToken generates a password reset token for a given Employee.
func (g tokenGenerator) makeToken(emp Employee) string {
	return g.makeTokenWithTimestamp(emp, numDaysSince2001(nowFunc()))
}

// verifyToken checks that a password reset token for a given Employee is valid.
func (g tokenGenerator) verifyToken(emp Employee, token string) error {
	if token == "" {
		return errInvalidToken
	}

	parts := strings.SplitN(token, "-", 2)
	if len(parts) < 2 {
		return errInvalidToken
	}

	data, err := b32.DecodeString(parts[0])
	if err != nil {
		return errInvalidToken
	}
	ts, err := strconv.Atoi(string(data))
	if err != nil {
		return errInvalidToken
	}

	// check that token has not been tampered with
	if subtle.ConstantTimeCompare([]byte(g.makeTokenWithTimestamp(emp, ts)), []byte(token)) == 0 {
		return errInvalidToken
	}

	// check that the timestamp is within limit
	if (numDaysSince2001(nowFunc()) - ts) > int(g.timeout/(24*time.Hour)) {
		return errTokenExpired
	}
	return nil
}

func (g tokenGenerator) makeTokenWithTimestamp(emp Employee, ts int) string {
	tsB32 := b32.EncodeToString([]byte(strconv.Itoa(ts)))
	return fmt.Sprintf("%s-%s", tsB32, g.sign(hashValue(emp, ts)))
}

func (g tokenGenerator) sign(val []byte) string {
	key := sha256.Sum256(append(append([]byte{}, salt...), g.secretKey...))
	h := hmac.New(sha256.New, key[:])
	_, _ = h.Write(val)
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

func numDaysSince2001(t time.Time) int {
	ref := time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)
	return int(math.Ceil(t.Sub(ref).Hours() / 24))
}

func hashValue(emp Employee, ts int) []byte {
	var val bytes.Buffer
	val.WriteString(strconv.FormatInt(emp.ID, 10))
	val.Write(emp.PasswordHash)
	if emp.LastLoginAt.Valid {
		val.WriteString(emp.LastLoginAt.Time.UTC().String())
	}
	val.WriteString(strconv.Itoa(ts))
	return val.Bytes()
}
