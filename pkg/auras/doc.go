// Package auras keeps WeakAuras imported from the aura provider up to date.
//
// Installed auras are read from the game's own WeakAuras save-state file,
// which is parsed as plain data and never executed. Newer versions are
// fetched from the provider and handed to the game through a small
// companion addon whose Data.lua this package regenerates.
package auras
