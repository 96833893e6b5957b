package board

import (
	"encoding/json"
	"os"
	"time"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"go.viam.com/pinio/utils"
)

// DefaultName is the name of a board whose config does not give one.
const DefaultName = "RaspberryPi-IO"

// DefaultReportIntervalMs is how often read reporters sample their pin unless configured.
const DefaultReportIntervalMs = 20

// A NativeConfig is the model-specific part of a board config, decoded from Config.Attributes.
type NativeConfig interface {
	Validate(path string) error
}

// A Config describes a board and the model that drives it.
type Config struct {
	Name       string             `json:"name,omitempty"`
	Model      string             `json:"model"`
	Attributes utils.AttributeMap `json:"attributes,omitempty"`

	// ReportIntervalMs is the sampling period of read reporters.
	ReportIntervalMs int `json:"report_interval_ms,omitempty"`
	// ReapplyMode makes setting a pin into the mode it is already in reconfigure the hardware
	// anyway. By default that is a no-op.
	ReapplyMode bool `json:"reapply_mode,omitempty"`

	ConvertedAttributes NativeConfig `json:"-"`
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) error {
	if conf.Name != "" && !utils.ValidNameRegex.MatchString(conf.Name) {
		return goutils.NewConfigValidationError(path, utils.ErrInvalidName(conf.Name))
	}
	if conf.ReportIntervalMs < 0 {
		return goutils.NewConfigValidationError(path, errors.New("report_interval_ms cannot be negative"))
	}
	if conf.ConvertedAttributes != nil {
		return conf.ConvertedAttributes.Validate(path + ".attributes")
	}
	return nil
}

// BoardName returns the configured name, or DefaultName.
func (conf *Config) BoardName() string {
	if conf.Name == "" {
		return DefaultName
	}
	return conf.Name
}

// ReportInterval returns the configured reporter sampling period.
func (conf *Config) ReportInterval() time.Duration {
	if conf.ReportIntervalMs <= 0 {
		return DefaultReportIntervalMs * time.Millisecond
	}
	return time.Duration(conf.ReportIntervalMs) * time.Millisecond
}

// ReadConfigFile reads a JSON board config from path. The model attributes are left unconverted;
// NewBoardFromConfig converts them for the registered model.
func ReadConfigFile(path string) (*Config, error) {
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read config file %q", path)
	}
	var conf Config
	if err := json.Unmarshal(data, &conf); err != nil {
		return nil, errors.Wrapf(err, "cannot parse config file %q", path)
	}
	if conf.Model == "" {
		return nil, goutils.NewConfigValidationFieldRequiredError(path, "model")
	}
	return &conf, nil
}
