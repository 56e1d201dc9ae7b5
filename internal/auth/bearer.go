package auth

import (
	"strings"

	"github.com/modernbank/api-gateway/internal/shared"
)

const bearerPrefix = "Bearer "

// ExtractBearerToken returns everything after the "Bearer " prefix of an
// Authorization header value. The token is neither trimmed nor checked.
func ExtractBearerToken(header string) (string, error) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", shared.NewUnauthenticated()
	}
	return header[len(bearerPrefix):], nil
}
