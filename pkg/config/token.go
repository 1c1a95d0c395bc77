package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/jenkinsbuilder/jenkinsbuilder/pkg/types"
)

// LoadToken reads the release API access token. Surrounding whitespace is
// trimmed; a missing or blank file is a configuration error.
func LoadToken(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", types.NewError(types.KindConfig, "load token", fmt.Errorf("%w: %s", types.ErrTokenMissing, path))
		}
		return "", types.NewError(types.KindConfig, "load token", err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", types.NewError(types.KindConfig, "load token", fmt.Errorf("%w: %s", types.ErrTokenMissing, path))
	}
	return token, nil
}
