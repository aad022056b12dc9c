// Package factory builds a connection.Connection from a declarative
// Config: it resolves the dialect, assembles a DSN, opens the
// underlying database/sql.DB, runs the dialect's session setup
// statements, and wires the result into a connection.Connection ready
// for use. It is grounded on the teacher's dialect/sql/driver.go
// Open/OpenDB helpers, generalized from a single hardcoded Open call
// into the multi-driver, multi-host, YAML-configurable factory
// spec.md §4.7 describes.
package factory

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/aagamezl/lihtne-go/dialect"
	"github.com/aagamezl/lihtne-go/dialect/sql/sqlerr"
)

// driverAliases maps a config's driver name to the canonical name the
// DriverRegistry is keyed on, per spec.md §4.7 step 1.
var driverAliases = map[string]string{
	"mssql":      dialect.SQLServer,
	"sqlsrv":     dialect.SQLServer,
	"postgres":   dialect.Postgres,
	"postgresql": dialect.Postgres,
	"pgsql":      dialect.Postgres,
	"mysql2":     dialect.MySQL,
	"mysql":      dialect.MySQL,
	"sqlite3":    dialect.SQLite,
	"sqlite":     dialect.SQLite,
}

// CanonicalDriver resolves a config's driver name (possibly an alias)
// to one of the dialect.* constants.
func CanonicalDriver(name string) (string, error) {
	canon, ok := driverAliases[strings.ToLower(name)]
	if !ok {
		return "", sqlerr.NewInvalidArgument("driver", fmt.Sprintf("unknown driver %q", name))
	}
	return canon, nil
}

// Config is a single connection's configuration record, matching
// spec.md §6's configuration options table. It is typically decoded
// from YAML (gopkg.in/yaml.v3, the teacher's config-format dependency)
// alongside a handful of sibling connections keyed by name.
type Config struct {
	Driver   string `yaml:"driver"`
	URL      string `yaml:"url,omitempty"`
	Host     any    `yaml:"host,omitempty"` // string or []string
	Port     int    `yaml:"port,omitempty"`
	Database string `yaml:"database"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`

	Prefix        string `yaml:"prefix,omitempty"`
	PrefixIndexes bool   `yaml:"prefix_indexes,omitempty"`

	Charset   string `yaml:"charset,omitempty"`
	Collation string `yaml:"collation,omitempty"`

	// Postgres-only session setup.
	Schema             string `yaml:"schema,omitempty"`
	ApplicationName    string `yaml:"application_name,omitempty"`
	SynchronousCommit  string `yaml:"synchronous_commit,omitempty"`
	Timezone           string `yaml:"timezone,omitempty"`

	// SQLite-only session setup.
	ForeignKeyConstraints bool `yaml:"foreign_key_constraints,omitempty"`

	Options map[string]string `yaml:"options,omitempty"`

	Read  *Config `yaml:"read,omitempty"`
	Write *Config `yaml:"write,omitempty"`
}

// Hosts returns cfg.Host normalized to a slice, regardless of whether
// it was configured as a single string or a YAML sequence.
func (cfg *Config) Hosts() ([]string, error) {
	switch h := cfg.Host.(type) {
	case nil:
		return nil, nil
	case string:
		if h == "" {
			return nil, nil
		}
		return []string{h}, nil
	case []string:
		return h, nil
	case []any:
		hosts := make([]string, 0, len(h))
		for _, v := range h {
			s, ok := v.(string)
			if !ok {
				return nil, sqlerr.NewInvalidArgument("host", fmt.Sprintf("expected string host entry, got %T", v))
			}
			hosts = append(hosts, s)
		}
		return hosts, nil
	default:
		return nil, sqlerr.NewInvalidArgument("host", fmt.Sprintf("unsupported host value %T", h))
	}
}

// ApplyURL parses cfg.URL (when present) and merges its fields into
// cfg, following spec.md §4.7 step 1: the URL is an alternative,
// combined form of the same configuration, never additive — fields it
// carries override the top-level ones.
func (cfg *Config) ApplyURL() error {
	if cfg.URL == "" {
		return nil
	}
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return sqlerr.NewInvalidArgument("url", fmt.Sprintf("malformed connection url: %v", err))
	}

	if u.Scheme != "" {
		cfg.Driver = u.Scheme
	}
	if u.Hostname() != "" {
		cfg.Host = u.Hostname()
	}
	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return sqlerr.NewInvalidArgument("url", fmt.Sprintf("invalid port %q", p))
		}
		cfg.Port = port
	}
	if db := strings.TrimPrefix(u.Path, "/"); db != "" {
		cfg.Database = db
	}
	if u.User != nil {
		cfg.Username = u.User.Username()
		if pw, ok := u.User.Password(); ok {
			cfg.Password = pw
		}
	}
	if cfg.Options == nil {
		cfg.Options = map[string]string{}
	}
	for key, values := range u.Query() {
		if len(values) > 0 {
			cfg.Options[key] = values[0]
		}
	}
	return nil
}
