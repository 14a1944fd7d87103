// Package paths provides centralized path handling for wowa.
//
// Two families of paths live here: wowa's own XDG directories (manifest
// database, config file) and the game installation layout (per-flavor
// AddOns folder and the account save-state tree).
package paths
