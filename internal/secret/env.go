package secret

import (
	"os"
	"strings"
)

// EnvStore maps keys to environment variables: "mysql-prod" is read from
// COLUMN_SECRET_MYSQL_PROD.
type EnvStore struct {
	Prefix string
}

// NewEnvStore creates an EnvStore using the COLUMN_SECRET_ prefix.
func NewEnvStore() *EnvStore {
	return &EnvStore{Prefix: "COLUMN_SECRET_"}
}

// Var returns the environment variable name for key.
func (e *EnvStore) Var(key string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		}
		return '_'
	}, key)
	return e.Prefix + name
}

func (e *EnvStore) Get(key string) ([]byte, error) {
	v, ok := os.LookupEnv(e.Var(key))
	if !ok {
		return nil, nil
	}
	return []byte(v), nil
}

func (e *EnvStore) Set(key string, value []byte) error {
	return os.Setenv(e.Var(key), string(value))
}

func (e *EnvStore) Delete(key string) error {
	return os.Unsetenv(e.Var(key))
}
