// Package engine is a thin facade over text/template for page and script
// evaluation.
//
// A Unit is parsed once and may be evaluated many times against a Context.
// The Context carries a stack of variable scopes (innermost wins), a stack of
// source files (the innermost is the file currently being evaluated), the
// output buffer, and the Resolver used by the include function.
//
// Templates see the flattened scope stack as their data (".title"), and a
// small set of functions:
//
//	set "name" value   assign into the innermost scope
//	get "name"         look a variable up, innermost first
//	has "name"         report whether a variable is bound
//	include "name"     resolve, load and expand another template inline
//
// Additional functions are declared on the Engine and bound at evaluation time
// to a Func found in the scope stack; calling one that is not in scope fails.
package engine
