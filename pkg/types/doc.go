// Package types defines the records shared across wowa: the game flavor,
// the installed addon record kept in the manifest, and the transient aura
// records produced while syncing with the aura provider.
package types
