// Package bot plays settlers turns with prioritized rules whose conditions
// are expr expressions evaluated against a RuleEnv.
package bot

import "github.com/expr-lang/expr/vm"

// ActionFunc picks the move a rule makes once its condition holds. It
// returns nil when the rule has nothing sensible to do after all.
type ActionFunc func(env RuleEnv) *Move

// Rule is a condition → action pair. The engine evaluates rules by priority
// and uses Category + Exclusive to keep lower-priority rules in the same
// category from firing once an exclusive one has matched.
type Rule struct {
	Name         string      // human-readable identifier
	Priority     int         // higher = evaluated first
	Category     string      // grouping for exclusive semantics
	Exclusive    bool        // if true, blocks lower-priority rules in same category
	ConditionSrc string      // expr source
	program      *vm.Program // compiled bytecode
	Action       ActionFunc
}
