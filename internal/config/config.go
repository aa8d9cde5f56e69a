// Package config holds the static server configuration: feature toggles,
// game constants, and transport settings. Values come from defaults,
// TRIVIA_-prefixed environment variables, and command-line flags, resolved
// through viper once at startup.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"github.com/HappyKarmaCo/trivia-rumble-backend/internal/types"
)

type Features struct {
	Teams     bool
	CPUTeams  bool
	TrashTalk bool
	// TeamVsTeam enables team-level score tallies alongside player scores.
	TeamVsTeam bool
}

type Config struct {
	Addr    string
	BaseURL string

	Features Features

	RoundsPerGame       int
	ButtonCount         int
	PointsPerSecond     int
	DefaultTimerSeconds int
	MaxHumanTeams       int
	PlayersPerTeam      int
	BlitzSeconds        int

	SplashDelay   time.Duration
	CPUBlitzDelay time.Duration

	TrashTalkPhrases []string
	CPUTeamNames     []string
	CPUPlayerNames   []string
}

func defaultPhrases() []string {
	return []string{
		"Nice try!",
		"We got this!",
		"Bring it on!",
		"Too slow!",
		"Easy win!",
		"Good luck!",
		"Is that all?",
		"Watch and learn!",
		"Game on!",
		"You'll get 'em next time!",
	}
}

// NewViper returns a viper instance wired with every default and with
// TRIVIA_ environment binding. Callers may bind flags on top before Load.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("TRIVIA")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault("addr", ":8080")
	v.SetDefault("base-url", "http://localhost:8080")

	v.SetDefault("features.teams", true)
	v.SetDefault("features.cpu-teams", true)
	v.SetDefault("features.trash-talk", true)
	v.SetDefault("features.team-vs-team", true)

	v.SetDefault("rounds-per-game", 10)
	v.SetDefault("button-count", 3)
	v.SetDefault("points-per-second", 1)
	v.SetDefault("default-timer-seconds", 30)
	v.SetDefault("max-human-teams", 2)
	v.SetDefault("players-per-team", 4)
	v.SetDefault("blitz-seconds", 3)
	v.SetDefault("splash-delay", 5*time.Second)
	v.SetDefault("cpu-blitz-delay", 2*time.Second)

	v.SetDefault("trash-talk-phrases", defaultPhrases())
	v.SetDefault("cpu-team-names", []string{"CPU Crushers", "AI Avengers"})
	v.SetDefault("cpu-player-names", []string{
		"BotAlpha", "BotBeta", "RoboOne", "ChipMunk", "ByteMe", "NullPointer",
	})

	return v
}

// Load resolves the final configuration from a prepared viper instance.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Addr:    v.GetString("addr"),
		BaseURL: strings.TrimRight(v.GetString("base-url"), "/"),
		Features: Features{
			Teams:      v.GetBool("features.teams"),
			CPUTeams:   v.GetBool("features.cpu-teams"),
			TrashTalk:  v.GetBool("features.trash-talk"),
			TeamVsTeam: v.GetBool("features.team-vs-team"),
		},
		RoundsPerGame:       v.GetInt("rounds-per-game"),
		ButtonCount:         v.GetInt("button-count"),
		PointsPerSecond:     v.GetInt("points-per-second"),
		DefaultTimerSeconds: v.GetInt("default-timer-seconds"),
		MaxHumanTeams:       v.GetInt("max-human-teams"),
		PlayersPerTeam:      v.GetInt("players-per-team"),
		BlitzSeconds:        v.GetInt("blitz-seconds"),
		SplashDelay:         v.GetDuration("splash-delay"),
		CPUBlitzDelay:       v.GetDuration("cpu-blitz-delay"),
		TrashTalkPhrases:    v.GetStringSlice("trash-talk-phrases"),
		CPUTeamNames:        v.GetStringSlice("cpu-team-names"),
		CPUPlayerNames:      v.GetStringSlice("cpu-player-names"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var err error

	if c.RoundsPerGame < 1 {
		err = multierr.Append(err, fmt.Errorf("rounds-per-game must be at least 1, got %d", c.RoundsPerGame))
	}
	if c.ButtonCount != 3 {
		err = multierr.Append(err, fmt.Errorf("button-count is fixed at 3, got %d", c.ButtonCount))
	}
	if c.PointsPerSecond < 1 {
		err = multierr.Append(err, fmt.Errorf("points-per-second must be at least 1, got %d", c.PointsPerSecond))
	}
	if c.DefaultTimerSeconds < 1 {
		err = multierr.Append(err, fmt.Errorf("default-timer-seconds must be at least 1, got %d", c.DefaultTimerSeconds))
	}
	if c.MaxHumanTeams != 2 {
		err = multierr.Append(err, fmt.Errorf("max-human-teams is fixed at 2, got %d", c.MaxHumanTeams))
	}
	if c.PlayersPerTeam < 1 {
		err = multierr.Append(err, fmt.Errorf("players-per-team must be at least 1, got %d", c.PlayersPerTeam))
	}
	if c.BlitzSeconds < 1 || c.BlitzSeconds >= c.DefaultTimerSeconds {
		err = multierr.Append(err, fmt.Errorf("blitz-seconds must be in [1, default-timer-seconds), got %d", c.BlitzSeconds))
	}
	if len(c.CPUTeamNames) < 2 {
		err = multierr.Append(err, fmt.Errorf("need at least 2 cpu-team-names, got %d", len(c.CPUTeamNames)))
	}
	if len(c.CPUPlayerNames) == 0 {
		err = multierr.Append(err, fmt.Errorf("cpu-player-names must not be empty"))
	}

	return err
}

// ClientView trims the configuration down to what clients are told on join.
func (c *Config) ClientView() types.ClientConfig {
	return types.ClientConfig{
		TeamsEnabled:     c.Features.Teams,
		CPUTeamsEnabled:  c.Features.CPUTeams,
		TrashTalkEnabled: c.Features.TrashTalk,
		TeamScoring:      c.Features.TeamVsTeam,
		RoundsPerGame:    c.RoundsPerGame,
		ButtonCount:      c.ButtonCount,
		PointsPerSecond:  c.PointsPerSecond,
		TimerSeconds:     c.DefaultTimerSeconds,
		PlayersPerTeam:   c.PlayersPerTeam,
		TrashTalkPhrases: c.TrashTalkPhrases,
	}
}
