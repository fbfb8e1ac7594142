package persistence

import (
	"flag"

	"domination-engine/internal/models"
)

// SettingsFlags are the command-line overrides layered over the settings
// file. Only flags given explicitly are applied.
type SettingsFlags struct {
	Config     string
	Name       string
	Mode       string
	Difficulty int
	Seed       int64
	Topology   string
	TickMS     int
}

// RegisterSettingsFlags defines the shared settings flags on fs.
func RegisterSettingsFlags(fs *flag.FlagSet) *SettingsFlags {
	d := models.DefaultSettings()
	f := &SettingsFlags{}
	fs.StringVar(&f.Config, "config", DefaultSettingsFile, "YAML settings file")
	fs.StringVar(&f.Name, "name", d.PlayerName, "player name recorded on the leaderboard")
	fs.StringVar(&f.Mode, "mode", string(d.Mode), "game mode: domination, bots or 1v1")
	fs.IntVar(&f.Difficulty, "difficulty", d.Difficulty, "difficulty 1 (easy) to 5 (insane)")
	fs.Int64Var(&f.Seed, "seed", d.Seed, "random seed, 0 seeds from the clock")
	fs.StringVar(&f.Topology, "topology", string(d.Topology), "grid adjacency: orthogonal or hex")
	fs.IntVar(&f.TickMS, "tick", d.TickIntervalMS, "tick interval in milliseconds")
	return f
}

// Load reads the settings file and applies the flags that were set on fs.
// It returns the names of fields that had to be repaired.
func (f *SettingsFlags) Load(fs *flag.FlagSet) (models.Settings, []string, error) {
	s, fixed, err := LoadSettings(f.Config)
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "name":
			s.PlayerName = f.Name
		case "mode":
			s.Mode = models.Mode(f.Mode)
		case "difficulty":
			s.Difficulty = f.Difficulty
		case "seed":
			s.Seed = f.Seed
		case "topology":
			s.Topology = models.Topology(f.Topology)
		case "tick":
			s.TickIntervalMS = f.TickMS
		}
	})
	fixed = append(fixed, s.Normalize()...)
	return s, fixed, err
}
