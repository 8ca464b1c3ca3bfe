package workers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
)

// ConfigEnvVar names the environment variable holding the path to the
// worker configuration file.
const ConfigEnvVar = "DH_MCP_CONFIG_FILE"

// Environment variables for single-worker mode, used when ConfigEnvVar
// is not set.
const (
	EnvHost        = "DH_MCP_HOST"
	EnvPort        = "DH_MCP_PORT"
	EnvAuthType    = "DH_MCP_AUTH_TYPE"
	EnvAuthToken   = "DH_MCP_AUTH_TOKEN"
	EnvSessionType = "DH_MCP_SESSION_TYPE"
)

// Worker holds the connection parameters for one Deephaven worker.
// All fields are optional in the config file; the session layer decides
// which ones it actually needs.
type Worker struct {
	Host             string  `json:"host"`
	Port             int     `json:"port"`
	AuthType         string  `json:"auth_type"`
	AuthToken        string  `json:"auth_token"`
	NeverTimeout     bool    `json:"never_timeout"`
	SessionType      string  `json:"session_type"`
	UseTLS           bool    `json:"use_tls"`
	TLSRootCerts     *string `json:"tls_root_certs"`
	ClientCertChain  *string `json:"client_cert_chain"`
	ClientPrivateKey *string `json:"client_private_key"`
}

// Addr returns the host:port pair for logging.
func (w Worker) Addr() string {
	return w.Host + ":" + strconv.Itoa(w.Port)
}

// Config is the process-wide, read-only worker configuration. It is
// loaded once at startup and never mutated or reloaded.
type Config struct {
	Workers       map[string]Worker `json:"workers"`
	DefaultWorker string            `json:"default_worker"`
}

// Load reads the worker configuration from the file named by
// DH_MCP_CONFIG_FILE. When that variable is unset and DH_MCP_HOST is
// set, a single-worker config is synthesized from the environment
// instead. Neither being set is a startup error.
func Load() (*Config, error) {
	if path := os.Getenv(ConfigEnvVar); path != "" {
		return LoadFile(path)
	}
	cfg, ok, err := fromEnv()
	if err != nil {
		return nil, err
	}
	if ok {
		return cfg, nil
	}
	return nil, fmt.Errorf("environment variable %s must be set to the path of the worker config file (or %s for single-worker mode)", ConfigEnvVar, EnvHost)
}

// LoadFile reads and validates a worker configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading worker config %s: %w", path, err)
	}

	// Unknown top-level keys and unknown worker fields are both
	// rejected, as are wrong field types.
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing worker config %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("worker config %s: %w", path, err)
	}
	return &cfg, nil
}

// fromEnv builds a single-worker config from DH_MCP_* variables.
// Returns false when DH_MCP_HOST is not set.
func fromEnv() (*Config, bool, error) {
	host := os.Getenv(EnvHost)
	if host == "" {
		return nil, false, nil
	}

	port := 10000
	if v := os.Getenv(EnvPort); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return nil, true, fmt.Errorf("parsing %s %q: %w", EnvPort, v, err)
		}
		port = p
	}

	w := Worker{
		Host:        host,
		Port:        port,
		AuthType:    os.Getenv(EnvAuthType),
		AuthToken:   os.Getenv(EnvAuthToken),
		SessionType: os.Getenv(EnvSessionType),
	}
	return &Config{
		Workers:       map[string]Worker{"default": w},
		DefaultWorker: "default",
	}, true, nil
}

func (c *Config) validate() error {
	if len(c.Workers) == 0 {
		return fmt.Errorf("must contain a non-empty 'workers' object")
	}
	// A dangling default_worker is rejected eagerly, not at first use.
	if c.DefaultWorker != "" {
		if _, ok := c.Workers[c.DefaultWorker]; !ok {
			return fmt.Errorf("default_worker %q is not a key in workers", c.DefaultWorker)
		}
	}
	return nil
}

// Names returns the configured worker names, sorted.
func (c *Config) Names() []string {
	names := make([]string, 0, len(c.Workers))
	for name := range c.Workers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the parameters for a named worker, falling back to
// default_worker when the name is empty. The resolved name is returned
// alongside the parameters.
func (c *Config) Resolve(name string) (Worker, string, error) {
	if name == "" {
		name = c.DefaultWorker
	}
	if name == "" {
		return Worker{}, "", fmt.Errorf("no worker name given and no default_worker configured")
	}
	w, ok := c.Workers[name]
	if !ok {
		return Worker{}, "", fmt.Errorf("unknown worker: %s", name)
	}
	return w, name, nil
}
