// Package config holds the daemon configuration.
//
// Values are resolved in order: defaults, REDRCP_* environment variables,
// the YAML file given by -config, then explicitly set flags.
package config

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/denisbrodbeck/machineid"
	"gopkg.in/yaml.v3"

	"github.com/robotalks/redrcp.go/pkg/driver"
)

// Config defines the configuration of the bridge daemon.
type Config struct {
	// Port is the address of the reader, see link.Dial.
	Port string `yaml:"port"`
	// MQTTBrokerURL specifies the MQTT broker, e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string `yaml:"mqtt_url"`
	// ReaderID prefixes all topics of the reader.
	ReaderID string `yaml:"reader_id"`
	// MetricsAddr is the listen address of /metrics, empty to disable.
	MetricsAddr string `yaml:"metrics_addr"`

	Timeout           time.Duration `yaml:"timeout"`
	ReconnectInterval time.Duration `yaml:"reconnect_interval"`
	StatusInterval    time.Duration `yaml:"status_interval"`
}

var defaultConfig = Config{
	Port:              "/dev/ttyUSB0",
	MQTTBrokerURL:     "mqtt://localhost:1883/redrcp/",
	MetricsAddr:       ":9090",
	Timeout:           driver.DefaultTimeout,
	ReconnectInterval: time.Second,
	StatusInterval:    10 * time.Second,
}

var (
	configFile string
	flagConfig Config
)

func init() {
	defaultConfig.ReaderID = MachineID()
	applyEnv(&defaultConfig, os.LookupEnv)
}

func applyEnv(c *Config, lookup func(string) (string, bool)) {
	if val, ok := lookup("REDRCP_PORT"); ok && val != "" {
		c.Port = val
	}
	if val, ok := lookup("REDRCP_MQTT_URL"); ok && val != "" {
		c.MQTTBrokerURL = val
	}
	if val, ok := lookup("REDRCP_ID"); ok && val != "" {
		c.ReaderID = val
	}
	if val, ok := lookup("REDRCP_METRICS_ADDR"); ok {
		c.MetricsAddr = val
	}
}

// MachineID returns an id of this machine usable as a reader id.
// The hostname is used when the machine id is not available.
func MachineID() string {
	id, err := machineid.ProtectedID("redrcp")
	if err == nil && len(id) > 12 {
		return id[:12]
	}
	if host, err := os.Hostname(); err == nil {
		return host
	}
	return "redrcp"
}

// SetupFlags sets command line flags on flag.CommandLine.
func SetupFlags() {
	SetupFlagSet(flag.CommandLine)
}

// SetupFlagSet sets flags on fs.
func SetupFlagSet(fs *flag.FlagSet) {
	flagConfig = defaultConfig
	fs.StringVar(&configFile, "config", "", "YAML configuration file.")
	fs.StringVar(&flagConfig.Port, "port", flagConfig.Port, "Reader port: serial device, tcp://host:port or ws://host/path.")
	fs.StringVar(&flagConfig.MQTTBrokerURL, "mqtt", flagConfig.MQTTBrokerURL, "MQTT broker URL.")
	fs.StringVar(&flagConfig.ReaderID, "id", flagConfig.ReaderID, "Reader ID used in topics.")
	fs.StringVar(&flagConfig.MetricsAddr, "metrics", flagConfig.MetricsAddr, "Listen address for /metrics, empty to disable.")
	fs.DurationVar(&flagConfig.Timeout, "timeout", flagConfig.Timeout, "Time to wait for each reply.")
	fs.DurationVar(&flagConfig.ReconnectInterval, "reconnect", flagConfig.ReconnectInterval, "Interval of reconnect attempts.")
	fs.DurationVar(&flagConfig.StatusInterval, "status-interval", flagConfig.StatusInterval, "Interval of status publishing.")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Decode overlays YAML data on c. Unknown keys are rejected.
func (c *Config) Decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// LoadFile overlays the YAML file at path on c.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := c.Decode(data); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Load resolves the configuration after fs is parsed.
func Load(fs *flag.FlagSet) (*Config, error) {
	conf := NewConfig()
	if configFile != "" {
		if err := conf.LoadFile(configFile); err != nil {
			return nil, err
		}
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			conf.Port = flagConfig.Port
		case "mqtt":
			conf.MQTTBrokerURL = flagConfig.MQTTBrokerURL
		case "id":
			conf.ReaderID = flagConfig.ReaderID
		case "metrics":
			conf.MetricsAddr = flagConfig.MetricsAddr
		case "timeout":
			conf.Timeout = flagConfig.Timeout
		case "reconnect":
			conf.ReconnectInterval = flagConfig.ReconnectInterval
		case "status-interval":
			conf.StatusInterval = flagConfig.StatusInterval
		}
	})
	return conf, conf.Validate()
}

// Validate checks required values.
func (c *Config) Validate() error {
	switch {
	case c.Port == "":
		return errors.New("config: port is required")
	case c.ReaderID == "":
		return errors.New("config: reader id is required")
	case c.Timeout <= 0:
		return fmt.Errorf("config: invalid timeout %s", c.Timeout)
	}
	return nil
}
