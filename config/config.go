// Package config loads filter configuration from YAML files.
//
// Matrix valued keys hold array literals, written either as a YAML string
// ("[[1 1] [0 1]]") or as a YAML sequence ([[1, 1], [0, 1]]). A bare number
// is a scalar.
package config

import (
	"bytes"
	"io"
	"os"

	"github.com/leoorshansky/KalmanFilterExample/kalman"
	"github.com/leoorshansky/KalmanFilterExample/literal"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned when a configuration is incomplete or inconsistent.
var ErrInvalid = errors.New("invalid configuration")

// DefaultMeasurementMatrix is the measurement matrix used when none is configured.
const DefaultMeasurementMatrix = "[1]"

// Config is filter configuration.
type Config struct {
	Dimension              int      `yaml:"dimension"`
	DataFile               string   `yaml:"data_file,omitempty"`
	InitialGuess           *Literal `yaml:"initial_guess"`
	InitialError           *Literal `yaml:"initial_error"`
	TransitionMatrix       *Literal `yaml:"transition_matrix"`
	ProcessErrorMatrix     *Literal `yaml:"process_error_matrix"`
	MeasurementErrorMatrix *Literal `yaml:"measurement_error_matrix"`
	MeasurementMatrix      *Literal `yaml:"measurement_matrix"`
	Extended               bool     `yaml:"extended,omitempty"`
	Joseph                 bool     `yaml:"joseph,omitempty"`
	SkipSingular           bool     `yaml:"skip_singular,omitempty"`
}

// Literal is an array literal that decodes from a YAML scalar or sequence.
type Literal struct {
	*literal.Array
}

// NewLiteral parses s and returns it as a Literal.
func NewLiteral(s string) (*Literal, error) {
	a, err := literal.Parse(s)
	if err != nil {
		return nil, err
	}

	return &Literal{a}, nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *Literal) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		a, err := literal.Parse(value.Value)
		if err != nil {
			return errors.Wrapf(err, "line %d", value.Line)
		}
		l.Array = a
	case yaml.SequenceNode:
		subs := make([]*literal.Array, len(value.Content))
		for i, n := range value.Content {
			var sub Literal
			if err := n.Decode(&sub); err != nil {
				return err
			}
			subs[i] = sub.Array
		}
		a, err := literal.Stack(subs)
		if err != nil {
			return errors.Wrapf(err, "line %d", value.Line)
		}
		l.Array = a
	default:
		return errors.Wrapf(literal.ErrMalformed, "line %d: expected a literal", value.Line)
	}

	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (l *Literal) MarshalYAML() (interface{}, error) {
	if l == nil || l.Array == nil {
		return nil, nil
	}

	return l.String(), nil
}

// Default returns configuration with default values set.
func Default() *Config {
	h, _ := NewLiteral(DefaultMeasurementMatrix)

	return &Config{MeasurementMatrix: h}
}

// Parse decodes YAML configuration from data on top of the defaults.
// Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	c := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "failed to decode configuration")
	}

	return c, nil
}

// Load reads YAML configuration from the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read configuration")
	}

	return Parse(data)
}

// Marshal encodes c as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Validate checks that every required value is set.
// It returns all problems found, each wrapping ErrInvalid.
func (c *Config) Validate() error {
	var err error

	if c.Dimension < 1 {
		err = multierr.Append(err, errors.Wrapf(ErrInvalid, "dimension must be positive, got %d", c.Dimension))
	}

	for _, v := range []struct {
		name string
		lit  *Literal
	}{
		{"initial_guess", c.InitialGuess},
		{"initial_error", c.InitialError},
		{"transition_matrix", c.TransitionMatrix},
		{"process_error_matrix", c.ProcessErrorMatrix},
		{"measurement_error_matrix", c.MeasurementErrorMatrix},
	} {
		if v.lit == nil || v.lit.Array == nil {
			err = multierr.Append(err, errors.Wrapf(ErrInvalid, "missing %s", v.name))
		}
	}

	if !c.Extended && (c.MeasurementMatrix == nil || c.MeasurementMatrix.Array == nil) {
		err = multierr.Append(err, errors.Wrap(ErrInvalid, "missing measurement_matrix"))
	}

	return err
}

// KalmanConfig validates c and converts it to filter configuration.
// The file driven filter has no linearization functions, so the returned
// configuration is always linear.
func (c *Config) KalmanConfig() (*kalman.Config, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	var err error
	dense := func(name string, l *Literal) mat.Matrix {
		if l == nil || l.Array == nil {
			return nil
		}
		m, e := l.Dense()
		if e != nil {
			err = multierr.Append(err, errors.Wrapf(e, "%s", name))
			return nil
		}
		return m
	}

	kc := &kalman.Config{
		Dim:               c.Dimension,
		InitState:         dense("initial_guess", c.InitialGuess),
		InitCov:           dense("initial_error", c.InitialError),
		Transition:        dense("transition_matrix", c.TransitionMatrix),
		ProcessNoise:      dense("process_error_matrix", c.ProcessErrorMatrix),
		MeasurementNoise:  dense("measurement_error_matrix", c.MeasurementErrorMatrix),
		MeasurementMatrix: dense("measurement_matrix", c.MeasurementMatrix),
		Joseph:            c.Joseph,
	}
	if err != nil {
		return nil, err
	}

	return kc, nil
}
