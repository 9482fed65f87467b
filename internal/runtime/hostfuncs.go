package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/risor-io/risor/object"

	"github.com/jward/tregex"
)

// ruleCollector accumulates the rules one script run registers. Risor
// scripts cannot construct Go structs, so the host functions accept
// strings and lists and build HeadRules on the Go side.
type ruleCollector struct {
	mu    sync.Mutex
	rules tregex.HeadRules
	def   []tregex.HeadRule
}

func newRuleCollector() *ruleCollector {
	return &ruleCollector{rules: make(tregex.HeadRules)}
}

func (c *ruleCollector) globals() map[string]any {
	return map[string]any{
		"head_rule":         makeHeadRuleFn(c),
		"default_head_rule": makeDefaultHeadRuleFn(c),
	}
}

func (c *ruleCollector) result() *HeadRuleSet {
	c.mu.Lock()
	defer c.mu.Unlock()
	return &HeadRuleSet{Rules: c.rules, Default: c.def}
}

// makeHeadRuleFn creates the "head_rule" host function. Repeated calls for
// the same category append rules that are tried in call order.
//
// head_rule(category, direction, [categories]) → nil
func makeHeadRuleFn(c *ruleCollector) *object.Builtin {
	return object.NewBuiltin("head_rule", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 2 && len(args) != 3 {
			return object.NewArgsRangeError("head_rule", 2, 3, len(args))
		}
		category, err := toString(args[0])
		if err != nil {
			return object.Errorf("head_rule: category: %v", err)
		}
		rule, err := buildRule(args[1:])
		if err != nil {
			return object.Errorf("head_rule: %s: %v", category, err)
		}
		c.mu.Lock()
		c.rules[category] = append(c.rules[category], rule)
		c.mu.Unlock()
		return object.Nil
	})
}

// makeDefaultHeadRuleFn creates "default_head_rule", the rule chain for
// categories with no rules of their own.
//
// default_head_rule(direction, [categories]) → nil
func makeDefaultHeadRuleFn(c *ruleCollector) *object.Builtin {
	return object.NewBuiltin("default_head_rule", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 && len(args) != 2 {
			return object.NewArgsRangeError("default_head_rule", 1, 2, len(args))
		}
		rule, err := buildRule(args)
		if err != nil {
			return object.Errorf("default_head_rule: %v", err)
		}
		c.mu.Lock()
		c.def = append(c.def, rule)
		c.mu.Unlock()
		return object.Nil
	})
}

func buildRule(args []object.Object) (tregex.HeadRule, error) {
	dir, err := toString(args[0])
	if err != nil {
		return tregex.HeadRule{}, fmt.Errorf("direction: %w", err)
	}
	rule := tregex.HeadRule{Direction: tregex.HeadDirection(dir)}
	if len(args) == 2 {
		cats, err := toStrings(args[1])
		if err != nil {
			return tregex.HeadRule{}, fmt.Errorf("categories: %w", err)
		}
		rule.Categories = cats
	}
	return rule, nil
}

// makeBasicCategoryFn creates "basic_category", which strips functional
// annotations from a label. With no basic category function the label is
// returned unchanged.
//
// basic_category(label) → string
func makeBasicCategoryFn(fn tregex.BasicCategoryFunc) *object.Builtin {
	return object.NewBuiltin("basic_category", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("basic_category", 1, len(args))
		}
		label, err := toString(args[0])
		if err != nil {
			return object.Errorf("basic_category: %v", err)
		}
		if fn == nil {
			return object.NewString(label)
		}
		return object.NewString(fn(label))
	})
}

func toString(obj object.Object) (string, error) {
	if s, ok := obj.(*object.String); ok {
		return s.Value(), nil
	}
	return "", fmt.Errorf("expected string, got %s", obj.Type())
}

func toStrings(obj object.Object) ([]string, error) {
	list, ok := obj.(*object.List)
	if !ok {
		return nil, fmt.Errorf("expected list, got %s", obj.Type())
	}
	items := list.Value()
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, err := toString(item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, s)
	}
	return out, nil
}

// logObject provides log.Info/Warn/Error/Debug methods for Risor scripts.
type logObject struct {
	logger *slog.Logger
}

func (l *logObject) Debug(msg string) {
	l.logger.Debug(msg, "source", "script")
}

func (l *logObject) Info(msg string) {
	l.logger.Info(msg, "source", "script")
}

func (l *logObject) Warn(msg string) {
	l.logger.Warn(msg, "source", "script")
}

func (l *logObject) Error(msg string) {
	l.logger.Error(msg, "source", "script")
}
