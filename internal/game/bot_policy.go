package game

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"domination-engine/internal/models"
)

// TargetEnv is the environment a target condition is evaluated against.
type TargetEnv struct {
	Attack           int     // Troops the bot would commit
	Troops           int     // Defender troops, truncated
	Shield           int     // Defender shield
	AggressionFactor float64 // Safety margin demanded before attacking the player
	Strength         float64 // Acting bot's strength
	Intelligence     int     // Acting bot's intelligence
	SourceTroops     int     // Troops on the source tile before committing
	Wave             int
}

// TargetPolicy decides whether a bot accepts a candidate target. Conditions
// are compiled to bytecode once and run per candidate.
type TargetPolicy struct {
	PlayerSrc  string
	NeutralSrc string
	player     *vm.Program
	neutral    *vm.Program
}

// CompileTargetPolicy compiles both conditions. Either failing returns an error
// and no policy.
func CompileTargetPolicy(p models.BotPolicy) (*TargetPolicy, error) {
	player, err := expr.Compile(p.PlayerCondition, expr.Env(TargetEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile player condition %q: %w", p.PlayerCondition, err)
	}
	neutral, err := expr.Compile(p.NeutralCondition, expr.Env(TargetEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile neutral condition %q: %w", p.NeutralCondition, err)
	}
	return &TargetPolicy{
		PlayerSrc:  p.PlayerCondition,
		NeutralSrc: p.NeutralCondition,
		player:     player,
		neutral:    neutral,
	}, nil
}

// DefaultTargetPolicy compiles the built-in conditions. They are constants, so
// a failure here is a programming error.
func DefaultTargetPolicy() *TargetPolicy {
	tp, err := CompileTargetPolicy(models.BotPolicy{
		PlayerCondition:  models.DefaultPlayerCondition,
		NeutralCondition: models.DefaultNeutralCondition,
	})
	if err != nil {
		panic(err)
	}
	return tp
}

func (tp *TargetPolicy) AcceptPlayer(env TargetEnv) (bool, error) {
	return run(tp.player, env)
}

func (tp *TargetPolicy) AcceptNeutral(env TargetEnv) (bool, error) {
	return run(tp.neutral, env)
}

func run(p *vm.Program, env TargetEnv) (bool, error) {
	out, err := vm.Run(p, env)
	if err != nil {
		return false, err
	}
	ok, _ := out.(bool)
	return ok, nil
}
