// Package expr implements the screen templating mini-language: {{path}}
// placeholder interpolation against session data, and the flat conditional
// expressions router screens branch on. It is deliberately small: dotted
// path lookups and single binary comparisons, no connectives, no
// arithmetic.
package expr

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/AtRiskMedia/ussd-go/internal/domain/entities/session"
)

var (
	placeholderPattern = regexp.MustCompile(`\{\{([\w.]+)\}\}`)
	conditionPattern   = regexp.MustCompile(`\{\{([\w.]+)(?:\s*(==|>=|<=|>|<)\s*'?(\w+)'?)?\}\}`)
)

// Evaluator resolves template expressions against a session's data bag.
// Failures never propagate: unresolved placeholders stay verbatim and
// malformed conditions evaluate to false.
type Evaluator struct {
	logger *slog.Logger
}

// NewEvaluator creates an evaluator logging through the given logger.
func NewEvaluator(logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{logger: logger}
}

// Interpolate replaces every {{path}} occurrence with the string form of
// the value found at the dotted path in session data. Paths that do not
// resolve are left untouched so partial templates render safely.
func (e *Evaluator) Interpolate(text string, s *session.Session) string {
	return placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		path := strings.Trim(match, "{}")
		if resolved, ok := e.resolvePath(s, path); ok {
			return resolved
		}
		e.logger.Debug("Unresolved template path", "path", path, "sessionId", s.SessionID)
		return match
	})
}

// EvaluateCondition evaluates a router condition of the shape
// {{path op 'literal'}} with op in ==, >, >=, <, <=. The leaf value and
// the literal are compared lexically on their string forms, matching the
// historical contract ({{age > '20'}} against "30" is true). Anything
// malformed evaluates to false and is logged, never raised.
func (e *Evaluator) EvaluateCondition(s *session.Session, text string) bool {
	caps := conditionPattern.FindStringSubmatch(text)
	if caps == nil {
		e.logger.Warn("Condition has no expression", "text", text)
		return false
	}

	path, operator, literal := caps[1], caps[2], caps[3]

	left, ok := e.resolvePath(s, path)
	if !ok {
		e.logger.Debug("Condition path did not resolve", "path", path, "sessionId", s.SessionID)
		return false
	}

	result := compareStrings(operator, left, literal)
	e.logger.Debug("Evaluated condition",
		"path", path, "operator", operator, "literal", literal, "left", left, "result", result)
	return result
}

// resolvePath walks a dotted path through session data. The first segment
// is a top-level key; remaining segments descend into nested dicts.
//
// One quirk is preserved on purpose: when a single-segment path lands on a
// dict, the same key name is looked up once more inside that dict. Menu
// templates written against service results shaped {key: {key: value}}
// rely on this, so do not "fix" it.
func (e *Evaluator) resolvePath(s *session.Session, path string) (string, bool) {
	parts := strings.Split(path, ".")
	object, fields := parts[0], parts[1:]

	value, ok := s.GetData(object)
	if !ok {
		return "", false
	}

	switch value.Kind {
	case session.KindDict:
		if len(fields) == 0 {
			inner, ok := value.Dict[object]
			if !ok {
				return "", false
			}
			return nestedValue(inner, []string{object})
		}
		return nestedValue(value, fields)
	case session.KindStr:
		if len(fields) == 0 {
			return value.Str, true
		}
		return "", false
	default:
		return "", false
	}
}

// nestedValue descends into a tagged value by successive field names and
// renders the scalar leaf. A string leaf terminates the walk regardless of
// remaining fields; a dict with no fields left is not a scalar.
func nestedValue(value session.Data, fields []string) (string, bool) {
	switch value.Kind {
	case session.KindStr:
		return value.Str, true
	case session.KindListStr:
		return strings.Join(value.ListStr, ", "), true
	case session.KindDict:
		if len(fields) == 0 {
			return "", false
		}
		inner, ok := value.Dict[fields[0]]
		if !ok {
			return "", false
		}
		return nestedValue(inner, fields[1:])
	default:
		return "", false
	}
}

func compareStrings(operator, left, right string) bool {
	switch operator {
	case "==":
		return left == right
	case ">":
		return left > right
	case ">=":
		return left >= right
	case "<":
		return left < right
	case "<=":
		return left <= right
	default:
		return false
	}
}
