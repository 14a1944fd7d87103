// Package selfupdate replaces the running wowa binary with the latest GitHub
// release. The release tag is compared with the build version using semver;
// the first release asset is downloaded next to the executable, the current
// binary is kept as <exe>.backup and the new one is moved into place.
package selfupdate
