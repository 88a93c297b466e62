package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"column/internal/domain"
	"column/internal/secret"
)

// Driver names a document store backend.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverMySQL    Driver = "mysql"
	DriverPostgres Driver = "postgres"
	DriverMongo    Driver = "mongo"
	DriverFile     Driver = "file"
)

// Options selects and addresses a backend. Fields a driver does not use are
// ignored.
type Options struct {
	Driver      Driver `yaml:"driver" validate:"required,oneof=sqlite mysql postgres mongo file"`
	Path        string `yaml:"path"`
	Host        string `yaml:"host" validate:"required_if=Driver mysql,required_if=Driver postgres"`
	Port        int    `yaml:"port" validate:"gte=0,lte=65535"`
	Database    string `yaml:"database" validate:"required_if=Driver mysql,required_if=Driver postgres"`
	Username    string `yaml:"username"`
	SSLMode     string `yaml:"sslMode" validate:"omitempty,oneof=disable require verify-ca verify-full"`
	URI         string `yaml:"uri"`
	PasswordKey string `yaml:"passwordKey"`
	Collection  string `yaml:"collection"`
}

// Backend bundles the document store with the settings table living next
// to it.
type Backend struct {
	Documents domain.DocumentStore
	Settings  domain.KeyValue
	// Files is set for the file driver so callers can watch the directory.
	Files *FileStore
}

// Close releases the underlying connection.
func (b *Backend) Close() error {
	return b.Documents.Close()
}

// Open connects the backend opts describe. Relative paths resolve against
// dataDir. Passwords come from secrets under opts.PasswordKey.
func Open(ctx context.Context, opts Options, dataDir string, secrets secret.SecretStore) (*Backend, error) {
	password, err := lookupPassword(secrets, opts.PasswordKey)
	if err != nil {
		return nil, err
	}

	switch opts.Driver {
	case DriverSQLite, "":
		path := opts.Path
		if path == "" {
			path = "column.db"
		}
		db, err := NewSQLite(resolve(dataDir, path))
		if err != nil {
			return nil, err
		}
		return sqlBackend(db), nil
	case DriverMySQL:
		db, err := NewSQL(DialectMySQL, buildMySQLDSN(opts, password))
		if err != nil {
			return nil, err
		}
		return sqlBackend(db), nil
	case DriverPostgres:
		db, err := NewSQL(DialectPostgres, buildPostgresDSN(opts, password))
		if err != nil {
			return nil, err
		}
		return sqlBackend(db), nil
	case DriverMongo:
		database := opts.Database
		if database == "" {
			database = "column"
		}
		collection := opts.Collection
		if collection == "" {
			collection = "documents"
		}
		store, err := NewMongoStore(ctx, mongoURI(opts, password), database, collection)
		if err != nil {
			return nil, err
		}
		return &Backend{Documents: store, Settings: store.Collection(collection + "_settings")}, nil
	case DriverFile:
		path := opts.Path
		if path == "" {
			path = "documents"
		}
		files, err := NewFileStore(resolve(dataDir, path))
		if err != nil {
			return nil, err
		}
		settings, err := NewFileStore(filepath.Join(files.Dir(), "settings"))
		if err != nil {
			return nil, err
		}
		return &Backend{Documents: files, Settings: settings, Files: files}, nil
	default:
		return nil, fmt.Errorf("unsupported driver: %s", opts.Driver)
	}
}

func sqlBackend(db *DB) *Backend {
	return &Backend{Documents: NewDocumentStore(db), Settings: NewSettingsStore(db)}
}

func lookupPassword(secrets secret.SecretStore, key string) (string, error) {
	if key == "" || secrets == nil {
		return "", nil
	}
	value, err := secrets.Get(key)
	if err != nil {
		return "", fmt.Errorf("read password %q: %w", key, err)
	}
	return string(value), nil
}

func resolve(dataDir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dataDir, path)
}

func buildMySQLDSN(opts Options, password string) string {
	port := opts.Port
	if port == 0 {
		port = 3306
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		opts.Username, password, opts.Host, port, opts.Database,
	)
	if opts.SSLMode == "require" {
		dsn += "&tls=true"
	}
	return dsn
}

func buildPostgresDSN(opts Options, password string) string {
	port := opts.Port
	if port == 0 {
		port = 5432
	}
	sslMode := opts.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		opts.Host, port, opts.Username, quoteConnValue(password), opts.Database, sslMode,
	)
}

// quoteConnValue quotes a libpq keyword/value so spaces and quotes survive.
func quoteConnValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\\`) {
		return v
	}
	var sb strings.Builder
	sb.WriteByte('\'')
	for _, c := range v {
		if c == '\'' || c == '\\' {
			sb.WriteByte('\\')
		}
		sb.WriteRune(c)
	}
	sb.WriteByte('\'')
	return sb.String()
}
