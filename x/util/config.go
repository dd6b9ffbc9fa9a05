package util

import (
	"fmt"
	"os"

	"github.com/go-yaml/yaml"

	"github.com/kindredkeeper/keeper/core"
)

// Config is Keeper base configuration
type Config struct {
	Server Server `yaml:"server"`
	Keeper Keeper `yaml:"keeper"`
}

type Server struct {
	Driver        string `yaml:"driver"`
	Dsn           string `yaml:"dsn"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisDB       int    `yaml:"redisDB"`
	MemcachedAddr string `yaml:"memcachedAddr"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
	Listen        string `yaml:"listen"`
}

// Keeper holds the command layer policy
type Keeper struct {
	GMRoles        []int64 `yaml:"gmRoles"`
	CharacterLimit int     `yaml:"characterLimit"`
	NameLimit      int     `yaml:"nameLimit"`
	PageSize       int     `yaml:"pageSize"`
}

// IsGMRole reports whether any of roles is configured as a GM role
func (k Keeper) IsGMRole(roles []int64) bool {
	for _, role := range roles {
		for _, gm := range k.GMRoles {
			if role == gm {
				return true
			}
		}
	}
	return false
}

// Load loads keeper config from given path
func (c *Config) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open configuration file: %w", err)
	}
	defer f.Close()

	err = yaml.NewDecoder(f).Decode(c)
	if err != nil {
		return fmt.Errorf("failed to load configuration file: %w", err)
	}

	c.SetDefaults()
	return c.Validate()
}

// SetDefaults fills unset values
func (c *Config) SetDefaults() {
	if c.Server.Driver == "" {
		c.Server.Driver = "postgres"
	}
	if c.Server.Listen == "" {
		c.Server.Listen = ":8000"
	}
	if c.Keeper.PageSize <= 0 {
		c.Keeper.PageSize = core.DefaultPageSize
	}
	if c.Keeper.NameLimit <= 0 || c.Keeper.NameLimit > core.MaxNameLength {
		c.Keeper.NameLimit = core.DefaultNameLimit
	}
}

func (c *Config) Validate() error {
	if c.Server.Dsn == "" {
		return fmt.Errorf("server.dsn is required")
	}
	switch c.Server.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported server.driver: %s", c.Server.Driver)
	}
	return nil
}
