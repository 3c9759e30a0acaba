package mmapfile

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/mmapfile/resource"
)

// ByteSize is a byte count that unmarshals from either an integer or a
// human readable string such as "64MiB" or "1 GB".
type ByteSize int64

// UnmarshalYAML implements yaml.Unmarshaler.
func (b *ByteSize) UnmarshalYAML(node *yaml.Node) error {
	var n int64
	if err := node.Decode(&n); err == nil {
		if n < 0 {
			return fmt.Errorf("byte size must not be negative: %d", n)
		}
		*b = ByteSize(n)
		return nil
	}

	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	v, err := humanize.ParseBytes(s)
	if err != nil {
		return fmt.Errorf("invalid byte size %q: %w", s, err)
	}
	*b = ByteSize(v)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (b ByteSize) MarshalYAML() (any, error) {
	return humanize.IBytes(uint64(b)), nil
}

func (b ByteSize) String() string {
	return humanize.IBytes(uint64(b))
}

// ResourceConfig mirrors resource.Config in YAML.
type ResourceConfig struct {
	MappedLimit ByteSize `yaml:"mapped_limit"`
	IOLimit     ByteSize `yaml:"io_limit_per_sec"`
}

// Config is the declarative form of the Open options.
//
//	growth_factor: 2
//	perm: "0600"
//	initial_capacity: 1MiB
//	truncate_on_close: true
//	grow_lock: true
//	log_level: debug
//	log_format: json
//	resources:
//	  mapped_limit: 1GiB
//	  io_limit_per_sec: 64MiB
type Config struct {
	GrowthFactor    int            `yaml:"growth_factor"`
	Perm            string         `yaml:"perm"`
	InitialCapacity ByteSize       `yaml:"initial_capacity"`
	TruncateOnClose *bool          `yaml:"truncate_on_close"`
	GrowLock        bool           `yaml:"grow_lock"`
	LogLevel        string         `yaml:"log_level"`
	LogFormat       string         `yaml:"log_format"`
	Resources       ResourceConfig `yaml:"resources"`
}

// LoadConfig decodes a YAML Config from r and validates it. Unknown keys are
// rejected.
func LoadConfig(r io.Reader) (*Config, error) {
	cfg := &Config{}

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigFile reads a YAML Config from path.
func LoadConfigFile(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return LoadConfig(file)
}

// Validate checks the config for values Open cannot honor.
func (c *Config) Validate() error {
	if c.GrowthFactor < 0 {
		return fmt.Errorf("growth_factor must not be negative: %d", c.GrowthFactor)
	}
	if _, err := c.perm(); err != nil {
		return err
	}
	if _, err := c.level(); err != nil {
		return err
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log_format %q", c.LogFormat)
	}
	return nil
}

func (c *Config) perm() (os.FileMode, error) {
	if c.Perm == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(c.Perm, 8, 32)
	if err != nil || v > 0o777 {
		return 0, fmt.Errorf("invalid perm %q", c.Perm)
	}
	return os.FileMode(v), nil
}

func (c *Config) level() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return level, nil
	}
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return level, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// Options converts the config into Open options. A resource controller is
// created when any resource limit is set; a logger when log_level is set.
// Call Validate (or use LoadConfig) first.
func (c *Config) Options() []Option {
	var opts []Option

	if c.GrowthFactor != 0 {
		opts = append(opts, WithGrowthFactor(c.GrowthFactor))
	}
	if perm, err := c.perm(); err == nil && c.Perm != "" {
		opts = append(opts, WithPerm(perm))
	}
	if c.InitialCapacity > 0 {
		opts = append(opts, WithInitialCapacity(int64(c.InitialCapacity)))
	}
	if c.TruncateOnClose != nil {
		opts = append(opts, WithTruncateOnClose(*c.TruncateOnClose))
	}
	if c.GrowLock {
		opts = append(opts, WithGrowLock())
	}
	if c.LogLevel != "" {
		level, _ := c.level()
		if strings.EqualFold(c.LogFormat, "json") {
			opts = append(opts, WithLogger(NewJSONLogger(level)))
		} else {
			opts = append(opts, WithLogger(NewTextLogger(level)))
		}
	}
	if c.Resources.MappedLimit > 0 || c.Resources.IOLimit > 0 {
		opts = append(opts, WithResourceController(resource.NewController(resource.Config{
			MappedLimitBytes:   int64(c.Resources.MappedLimit),
			IOLimitBytesPerSec: int64(c.Resources.IOLimit),
		})))
	}

	return opts
}
