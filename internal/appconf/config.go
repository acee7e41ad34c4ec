// Package appconf holds the server configuration: defaults, the optional YAML
// file overlay and validation.
package appconf

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"pulse.transitlab.org/internal/dashboard"
	"pulse.transitlab.org/internal/metrics"
	"pulse.transitlab.org/internal/network"
)

// Config holds all the configuration settings for the server.
type Config struct {
	Port      int         `yaml:"port" validate:"gt=0,lte=65535"`
	Env       Environment `yaml:"-"`
	EnvName   string      `yaml:"env" validate:"omitempty,oneof=development dev test production prod"`
	ApiKeys   []string    `yaml:"apiKeys" validate:"omitempty,dive,required"`
	RateLimit int         `yaml:"rateLimit" validate:"gte=0"`
	LogLevel  string      `yaml:"logLevel" validate:"omitempty,oneof=debug info warn warning error"`

	Simulation Simulation `yaml:"simulation"`
}

// Simulation holds the engine parameters. Durations use Go syntax ("3s").
type Simulation struct {
	Seed      uint64  `yaml:"seed"`
	CenterLat float64 `yaml:"centerLat" validate:"gte=-90,lte=90"`
	CenterLng float64 `yaml:"centerLng" validate:"gte=-180,lte=180"`
	Stops     int     `yaml:"stops" validate:"gte=0"`
	Routes    int     `yaml:"routes" validate:"gte=0"`
	Vehicles  int     `yaml:"vehicles" validate:"gte=0"`

	AnimationPoll        time.Duration `yaml:"animationPoll" validate:"gte=0"`
	InitialAnimation     time.Duration `yaml:"initialAnimation" validate:"gt=0"`
	MotionInterval       time.Duration `yaml:"motionInterval" validate:"gt=0"`
	ActiveInterval       time.Duration `yaml:"activeInterval" validate:"gt=0"`
	IdleInterval         time.Duration `yaml:"idleInterval" validate:"gt=0"`
	Transition           time.Duration `yaml:"transition" validate:"gt=0"`
	RollingInterval      time.Duration `yaml:"rollingInterval" validate:"gt=0"`
	BackgroundInterval   time.Duration `yaml:"backgroundInterval" validate:"gt=0"`
	AnnouncementInterval time.Duration `yaml:"announcementInterval" validate:"gt=0"`

	BackgroundChance   float64 `yaml:"backgroundChance" validate:"gte=0,lte=1"`
	AnnouncementChance float64 `yaml:"announcementChance" validate:"gte=0,lte=1"`
}

// Default returns the stock configuration.
func Default() Config {
	d := dashboard.DefaultConfig()
	return Config{
		Port:      4000,
		Env:       Development,
		EnvName:   Development.String(),
		ApiKeys:   []string{"test"},
		RateLimit: 100,
		LogLevel:  "info",
		Simulation: Simulation{
			Seed:                 1,
			CenterLat:            d.Center.Lat,
			CenterLng:            d.Center.Lng,
			Stops:                d.Stops,
			Routes:               d.Routes,
			Vehicles:             d.Vehicles,
			AnimationPoll:        d.AnimationPoll,
			InitialAnimation:     d.InitialAnimation,
			MotionInterval:       d.MotionInterval,
			ActiveInterval:       d.Metrics.ActiveInterval,
			IdleInterval:         d.Metrics.IdleInterval,
			Transition:           d.Metrics.Transition,
			RollingInterval:      d.RollingInterval,
			BackgroundInterval:   d.BackgroundEvery,
			AnnouncementInterval: d.AnnouncementEvery,
			BackgroundChance:     d.BackgroundChance,
			AnnouncementChance:   d.AnnouncementOdds,
		},
	}
}

// LoadFile overlays the YAML file at path onto cfg. Keys missing from the file
// keep their current values. The result is validated.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	env, err := ParseEnvironment(cfg.EnvName)
	if err != nil {
		return err
	}
	cfg.Env = env
	return Validate(cfg)
}

// Validate checks every field constraint.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ToDashboard converts the simulation settings into engine parameters.
func (s Simulation) ToDashboard() dashboard.Config {
	return dashboard.Config{
		Center:           network.Coordinate{Lat: s.CenterLat, Lng: s.CenterLng},
		Stops:            s.Stops,
		Routes:           s.Routes,
		Vehicles:         s.Vehicles,
		AnimationPoll:    s.AnimationPoll,
		InitialAnimation: s.InitialAnimation,
		MotionInterval:   s.MotionInterval,
		Metrics: metrics.MutatorConfig{
			ActiveInterval: s.ActiveInterval,
			IdleInterval:   s.IdleInterval,
			Transition:     s.Transition,
		},
		RollingInterval:   s.RollingInterval,
		BackgroundEvery:   s.BackgroundInterval,
		BackgroundChance:  s.BackgroundChance,
		AnnouncementEvery: s.AnnouncementInterval,
		AnnouncementOdds:  s.AnnouncementChance,
	}
}
