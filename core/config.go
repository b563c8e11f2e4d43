package core

import (
	"fmt"
	"strings"
)

type ShimConfig struct {
	Disabled      bool   `koanf:"disabled" mapstructure:"disabled"`
	NamePrefix    string `koanf:"name_prefix" mapstructure:"name_prefix"`
	Position      int    `koanf:"position" mapstructure:"position"`
	SkipHostProbe bool   `koanf:"skip_host_probe" mapstructure:"skip_host_probe"`
}

type CertifiedConfig struct {
	ApprovedOnly bool `koanf:"approved_only" mapstructure:"approved_only"`
}

type LegacyConfig struct {
	Disabled bool `koanf:"disabled" mapstructure:"disabled"`
}

type AuditConfig struct {
	Enabled        bool `koanf:"enabled" mapstructure:"enabled"`
	RecordAll      bool `koanf:"record_all" mapstructure:"record_all"`
	RetentionHours int  `koanf:"retention_hours" mapstructure:"retention_hours"`
	RowCap         int  `koanf:"row_cap" mapstructure:"row_cap"`
}

type Config struct {
	ChainName string          `koanf:"chain_name" mapstructure:"chain_name"`
	Shim      ShimConfig      `koanf:"shim" mapstructure:"shim"`
	Certified CertifiedConfig `koanf:"certified" mapstructure:"certified"`
	Legacy    LegacyConfig    `koanf:"legacy" mapstructure:"legacy"`
	Audit     AuditConfig     `koanf:"audit" mapstructure:"audit"`
}

const DefaultShimNamePrefix = "SHIM"

func DefaultConfig() Config {
	return Config{
		ChainName: "cryptoproviders",
		Shim: ShimConfig{
			NamePrefix: DefaultShimNamePrefix,
			Position:   1,
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ChainName) == "" {
		return fmt.Errorf("core: chain_name is required")
	}
	if c.Shim.Position < 0 {
		return fmt.Errorf("core: shim.position must be >= 0")
	}
	if strings.ContainsAny(c.Shim.NamePrefix, "() \t") {
		return fmt.Errorf("core: shim.name_prefix is invalid: %q", c.Shim.NamePrefix)
	}
	if c.Audit.RetentionHours < 0 {
		return fmt.Errorf("core: audit.retention_hours must be >= 0")
	}
	if c.Audit.RowCap < 0 {
		return fmt.Errorf("core: audit.row_cap must be >= 0")
	}
	return nil
}

func (c AuditConfig) RetentionPolicy() AuditRetentionPolicy {
	return AuditRetentionPolicy{
		TTL:    hoursToDuration(c.RetentionHours),
		RowCap: c.RowCap,
	}
}
