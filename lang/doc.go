// Package lang implements the tup directive language: a line-oriented macro
// compiler that expands a parameterized source into every combination of its
// declared variables.
//
// # Directives
//
// Each source line is one of:
//
//	#GLOBALVAR <name> <values>   declare a variable visible to all contexts
//	#VAR <name> <values>         declare a variable local to the open context
//	#CONTEXT <name>              open a context
//	#ENDCONTEXT                  close the open context
//	<anything else>              a code line of the open context
//
// Blank lines and lines beginning with "//" are ignored. Any other line
// beginning with "#" is rejected with [ErrUnknownDirective].
//
// The values payload of a declaration is split into characters, and each
// character is one candidate value: "#VAR x 12" gives x the values "1" and
// "2".
//
// # Snapshots
//
// A [Snapshot] binds every visible variable to one of its values. Global
// snapshots range over the cartesian product of the global variables; each
// context then ranges over the product of its own local variables layered on
// the current global snapshot. Locals shadow globals. In both cases the
// last-declared variable varies fastest ([Enumerate]).
//
// # Markers
//
// Within a code line, every ${expression} marker is replaced by the result of
// evaluating the expression against the snapshot bindings (see [Expander]).
// Results may contain further markers, which are expanded on the next pass up
// to a bounded number of passes ([WithMaxPasses]).
//
// Expressions are evaluated by an [Evaluator]. The default [ExprEvaluator]
// uses expr-lang, so an expression may use arithmetic, string operations and
// the expr-lang builtins:
//
//	#GLOBALVAR g 12
//	#CONTEXT c
//	#VAR x ab
//	value=${g}${x} next=${int(g) + 1}
//	#ENDCONTEXT
//
// Expressions are trusted input. Use [WithEvaluator] to substitute a
// restricted evaluator where the source cannot be trusted.
//
// # Output size
//
// [Compile] emits one block per (global snapshot, context, local snapshot).
// The count is a product of value counts and can grow very large; bound it
// with [WithMaxSnapshots] or a context deadline.
package lang
