// Package savestate reads the game client's SavedVariables files as data.
//
// A SavedVariables file is a Lua chunk made of global assignments whose
// right-hand sides are literals: nil, booleans, numbers, strings and table
// constructors. This package parses exactly that subset with a participle
// grammar and evaluates it into an ordered Table model. Anything else
// (function calls, operators, references to other variables) is rejected
// as malformed, so nothing in the file is ever executed.
package savestate
