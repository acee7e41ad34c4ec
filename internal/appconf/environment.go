package appconf

import (
	"errors"
	"fmt"
	"strings"
)

// Environment is the operating environment of the server.
type Environment int

const (
	Development Environment = iota
	Test
	Production
)

var ErrInvalidEnvironment = errors.New("invalid environment")

func (e Environment) String() string {
	switch e {
	case Development:
		return "development"
	case Test:
		return "test"
	case Production:
		return "production"
	default:
		return fmt.Sprintf("Environment(%d)", int(e))
	}
}

// ParseEnvironment maps a flag or config value onto an Environment.
func ParseEnvironment(s string) (Environment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "development", "dev", "":
		return Development, nil
	case "test":
		return Test, nil
	case "production", "prod":
		return Production, nil
	default:
		return Development, fmt.Errorf("%w: %q", ErrInvalidEnvironment, s)
	}
}

// EnvFlagToEnvironment is ParseEnvironment for trusted input; unknown values
// fall back to Development.
func EnvFlagToEnvironment(s string) Environment {
	env, _ := ParseEnvironment(s)
	return env
}
