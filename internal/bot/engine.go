package bot

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"settlers/internal/game"
)

// Engine picks moves for a player by running compiled rules against the
// game state.
type Engine struct {
	rules []*Rule
}

// NewEngine compiles all rule conditions into expr bytecode and sorts by priority.
func NewEngine(rules []*Rule) (*Engine, error) {
	compiled, err := compileRules(rules)
	if err != nil {
		return nil, err
	}
	return &Engine{rules: compiled}, nil
}

// ForStrategy returns an engine running the named strategy's rules.
func ForStrategy(strategy string) (*Engine, error) {
	return NewEngine(RulesFor(strategy))
}

// Decide returns the first move produced by a matching rule, or nil when no
// rule applies to playerID right now.
func (e *Engine) Decide(g *game.GameState, playerID string) *Move {
	env := RuleEnv{State: g, PlayerID: playerID}
	blocked := make(map[string]bool) // category → exclusive rule already matched

	for _, r := range e.rules {
		if blocked[r.Category] {
			continue
		}

		result, err := vm.Run(r.program, env)
		if err != nil {
			slog.Warn("rule condition error", "rule", r.Name, "error", err)
			continue
		}
		if match, ok := result.(bool); !ok || !match {
			continue
		}

		if r.Exclusive {
			blocked[r.Category] = true
		}
		move := r.Action(env)
		if move == nil {
			continue
		}
		slog.Debug("rule fired", "rule", r.Name, "priority", r.Priority, "category", r.Category, "player", playerID)
		move.Rule = r.Name
		return move
	}
	return nil
}

func compileRules(rules []*Rule) ([]*Rule, error) {
	for _, r := range rules {
		prog, err := expr.Compile(r.ConditionSrc, expr.Env(RuleEnv{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compile rule %q: %w", r.Name, err)
		}
		r.program = prog
	}
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority > rules[j].Priority
	})
	return rules, nil
}
