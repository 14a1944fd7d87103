package wowa

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "World of Warcraft addon and WeakAuras updater"
	MsgInstallShort    = "Install or update an addon from CurseForge"
	MsgUpdateShort     = "Update all tracked addons and WeakAuras"
	MsgRemoveShort     = "Remove a tracked addon and its folders"
	MsgListShort       = "List installed addons"
	MsgAurasShort      = "List WeakAuras imported from wago.io"
	MsgConfigShort     = "Get or set configuration values"
	MsgSelfUpdateShort = "Update wowa to the latest release"
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"

	// Status messages
	MsgInvalidLocator  = "Ignoring %q: not a CurseForge addon URL or slug"
	MsgCheckingAddons  = "Updating addons..."
	MsgCheckingAuras   = "Checking weak auras..."
	MsgInstalling      = "Installing %s..."
	MsgCheckingRelease = "Checking for a new wowa release..."

	// Error messages
	MsgErrInitPaths    = "failed to initialize paths: %w"
	MsgErrUnknownKey   = "unknown configuration key %q"
	MsgErrMissingToken = "CurseForge API key is not configured (wowa config curse.token <key>)"
	MsgErrUpdateFailed = "%d addon(s) failed to update"

	// Flag descriptions
	MsgFlagVerbose   = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagGameDir   = "World of Warcraft installation folder (overrides game.dir)"
	MsgFlagFormat    = "Output format: auto, term, text, json or yaml"
	MsgFlagClassic   = "Use the classic era game"
	MsgFlagRetail    = "Use the retail game"
	MsgFlagSkipAuras = "Do not check WeakAuras"
	MsgFlagChangelog = "Print the changelog of updated WeakAuras"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/install-long.txt
	msgInstallLongRaw string
	MsgInstallLong    = strings.TrimSpace(msgInstallLongRaw)

	//go:embed msgs/install-example.txt
	msgInstallExampleRaw string
	MsgInstallExample    = strings.TrimRight(msgInstallExampleRaw, "\n")

	//go:embed msgs/update-long.txt
	msgUpdateLongRaw string
	MsgUpdateLong    = strings.TrimSpace(msgUpdateLongRaw)

	//go:embed msgs/update-example.txt
	msgUpdateExampleRaw string
	MsgUpdateExample    = strings.TrimRight(msgUpdateExampleRaw, "\n")

	//go:embed msgs/config-long.txt
	msgConfigLongRaw string
	MsgConfigLong    = strings.TrimSpace(msgConfigLongRaw)

	//go:embed msgs/config-example.txt
	msgConfigExampleRaw string
	MsgConfigExample    = strings.TrimRight(msgConfigExampleRaw, "\n")

	//go:embed msgs/completion-long.txt
	msgCompletionLongRaw string
	MsgCompletionLong    = strings.TrimSpace(msgCompletionLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw)
)
