package engine

import "github.com/coderberry/fixturama/internal/ir"

func ret(v any) ir.ActionEntry {
	return ir.ActionEntry{Return: ir.MustFromGo(v), Count: 1}
}

func retN(v any, n int) ir.ActionEntry {
	return ir.ActionEntry{Return: ir.MustFromGo(v), Count: n}
}

func raise(kind, msg string) ir.ActionEntry {
	return ir.ActionEntry{Raise: &ir.ErrorSpec{Kind: kind, Message: msg}, Count: 1}
}

func exact(args ...any) ir.Predicate {
	vals := make([]ir.IRValue, len(args))
	for i, a := range args {
		vals[i] = ir.MustFromGo(a)
	}
	return ir.Exact{Args: ir.NewArgs(vals...)}
}

func clause(p ir.Predicate, actions ...ir.ActionEntry) ir.Clause {
	return ir.Clause{Predicate: p, Actions: actions}
}

func method(name string, clauses ...ir.Clause) ir.TargetSpec {
	return ir.TargetSpec{
		Target:  ir.Target{Kind: ir.TargetMethod, Name: name, Descriptor: name},
		Clauses: clauses,
	}
}

func env(name string, clauses ...ir.Clause) ir.TargetSpec {
	return ir.TargetSpec{
		Target:  ir.Target{Kind: ir.TargetEnv, Name: name, Descriptor: "env:" + name},
		Clauses: clauses,
	}
}

func doc(targets ...ir.TargetSpec) ir.Document {
	return ir.Document{Source: "test", Targets: targets}
}

func args(vals ...any) ir.Args {
	out := make([]ir.IRValue, len(vals))
	for i, v := range vals {
		out[i] = ir.MustFromGo(v)
	}
	return ir.NewArgs(out...)
}

// resolveValues resolves target once per argument list and returns the
// plain Go result values.
func resolveValues(s *Scope, target ir.TargetKey, calls ...ir.Args) []any {
	out := make([]any, 0, len(calls))
	for _, a := range calls {
		action, err := s.Resolve(target, a)
		if err != nil {
			out = append(out, err)
			continue
		}
		v, err := action.Result()
		if err != nil {
			out = append(out, err.Error())
			continue
		}
		out = append(out, ir.ToGo(v))
	}
	return out
}
