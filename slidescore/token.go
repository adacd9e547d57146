package slidescore

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// TokenEnv is the environment variable holding the API token when no
// token file is given.
const TokenEnv = "SLIDESCORE_API_KEY"

// ErrNoToken indicates neither a token file nor the environment
// variable provided a token.
var ErrNoToken = errors.New("slidescore: API token not set; pass a token file or set " + TokenEnv)

// LoadToken resolves the API token: a readable file at path wins,
// otherwise the SLIDESCORE_API_KEY environment variable is used.
// The file content is trimmed of surrounding whitespace.
func LoadToken(path string) (string, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			token := strings.TrimSpace(string(data))
			if token == "" {
				return "", fmt.Errorf("%w: token file %s is empty", ErrNoToken, path)
			}

			return token, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("slidescore: reading token file: %w", err)
		}
	}

	if token := strings.TrimSpace(os.Getenv(TokenEnv)); token != "" {
		return token, nil
	}

	return "", ErrNoToken
}
