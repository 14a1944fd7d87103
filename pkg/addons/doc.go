// Package addons installs, updates and removes addons from the addon
// provider.
//
// A Manager resolves a locator to a provider mod, picks the stable file for
// the requested flavor and installs it into the flavor's AddOns folder. The
// directories an archive produced are recorded in the manifest so the next
// update or removal can clean them up. Re-installing an unchanged version
// touches neither the network payload nor the disk.
package addons
