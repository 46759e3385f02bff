package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable and normalizes enum fields.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateDB(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateAuth(); err != nil {
		return err
	}
	return c.validateLog()
}

func (c *Config) validateServer() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.ReadTimeoutSeconds < 0 || c.Server.WriteTimeoutSeconds < 0 || c.Server.IdleTimeoutSeconds < 0 {
		return errors.New("server timeouts must not be negative")
	}
	return nil
}

func (c *Config) validateDB() error {
	c.DB.Driver = strings.ToLower(strings.TrimSpace(c.DB.Driver))
	switch c.DB.Driver {
	case "sqlite":
		if strings.TrimSpace(c.DB.Path) == "" {
			return errors.New("db.path must be set for the sqlite driver")
		}
	case "postgres":
		if strings.TrimSpace(c.DB.URL) == "" {
			return errors.New("db.url must be set for the postgres driver")
		}
	default:
		return fmt.Errorf("db.driver %q must be sqlite or postgres", c.DB.Driver)
	}
	return nil
}

func (c *Config) validateStorage() error {
	if strings.TrimSpace(c.Storage.Dir) == "" {
		return errors.New("storage.dir must be set")
	}
	if strings.Trim(c.Storage.URLPrefix, "/ ") == "" {
		return errors.New("storage.url_prefix must be a non-root path")
	}
	if c.Upload.MaxBytes <= 0 {
		return errors.New("upload.max_bytes must be positive")
	}
	return nil
}

func (c *Config) validateAuth() error {
	c.Auth.Mode = strings.ToLower(strings.TrimSpace(c.Auth.Mode))
	switch c.Auth.Mode {
	case "apikey":
	case "header":
		if strings.TrimSpace(c.Auth.Header) == "" {
			return errors.New("auth.header must be set for header mode")
		}
	case "none":
		if strings.TrimSpace(c.Auth.DefaultOwner) == "" {
			return errors.New("auth.default_owner must be set for mode none")
		}
	default:
		return fmt.Errorf("auth.mode %q must be apikey, header or none", c.Auth.Mode)
	}
	return nil
}

func (c *Config) validateLog() error {
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	switch c.Log.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level %q is not a level", c.Log.Level)
	}
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	switch c.Log.Format {
	case "", "auto", "text", "json":
	default:
		return fmt.Errorf("log.format %q must be text, json or auto", c.Log.Format)
	}
	return nil
}
