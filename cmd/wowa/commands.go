package wowa

import (
	"fmt"
	"os"
	"strings"

	"github.com/arthur-debert/wowa/internal/version"
	"github.com/arthur-debert/wowa/pkg/addons"
	"github.com/arthur-debert/wowa/pkg/config"
	"github.com/arthur-debert/wowa/pkg/errors"
	"github.com/arthur-debert/wowa/pkg/logging"
	"github.com/arthur-debert/wowa/pkg/manifest"
	"github.com/arthur-debert/wowa/pkg/types"
	"github.com/arthur-debert/wowa/pkg/ui"
	"github.com/arthur-debert/wowa/pkg/ui/display"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	initTemplateFormatting()

	var (
		verbosity int
		gameDir   string
		format    string
	)

	rootCmd := &cobra.Command{
		Use:     "wowa",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return errors.New(errors.ErrInvalidInput, "no command specified")
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVar(&gameDir, "game-dir", "", MsgFlagGameDir)
	rootCmd.PersistentFlags().StringVar(&format, "format", "auto", MsgFlagFormat)
	_ = rootCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return ui.FormatNames, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "COMMANDS:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "MISC:"})
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newInstallCmd())
	rootCmd.AddCommand(newUpdateCmd())
	rootCmd.AddCommand(newRemoveCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newAurasCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

// addFlavorFlags adds the mutually exclusive --classic/--retail pair.
func addFlavorFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("classic", "c", false, MsgFlagClassic)
	cmd.Flags().BoolP("retail", "r", false, MsgFlagRetail)
	cmd.MarkFlagsMutuallyExclusive("classic", "retail")
}

// trackedSlugsCompletion completes slugs of tracked addons
func trackedSlugsCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	a, err := openApp(cmd)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer a.Close()

	var flavor *types.Flavor
	if f, ok := flavorFlag(cmd); ok {
		flavor = &f
	}
	tracked, err := addons.NewRepository(a.store).List(cmd.Context(), flavor)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var slugs []string
	for _, addon := range tracked {
		if strings.HasPrefix(addon.ID, toComplete) {
			slugs = append(slugs, addon.ID)
		}
	}
	return slugs, cobra.ShellCompDirectiveNoFileComp
}

func newInstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "install <url-or-slug>",
		Aliases: []string{"add"},
		Short:   MsgInstallShort,
		Long:    MsgInstallLong,
		Example: MsgInstallExample,
		GroupID: "core",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			flavor := a.flavor(cmd)
			if _, err := addons.NormalizeLocator(args[0]); err != nil {
				// wrong URLs are ignored, not failed
				log.Warn().Err(err).Str("locator", args[0]).Msgf(MsgInvalidLocator, args[0])
				return nil
			}

			manager, err := a.addonManager()
			if err != nil {
				return err
			}

			spinner := a.spinner(fmt.Sprintf(MsgInstalling, args[0]))
			outcome, err := manager.InstallOrUpdate(cmd.Context(), args[0], flavor)
			spinner.Stop()
			if err != nil {
				return err
			}
			return a.render(display.NewInstallResult(outcome))
		},
	}
	addFlavorFlags(cmd)
	return cmd
}

func newUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "update",
		Aliases: []string{"up"},
		Short:   MsgUpdateShort,
		Long:    MsgUpdateLong,
		Example: MsgUpdateExample,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			flavor := a.flavor(cmd)
			skipAuras, _ := cmd.Flags().GetBool("skip-auras")
			showChangelog, _ := cmd.Flags().GetBool("changelog")

			manager, err := a.addonManager()
			if err != nil {
				return err
			}

			spinner := a.spinner(MsgCheckingAddons)
			report, err := manager.UpdateAll(cmd.Context(), &flavor)
			if err != nil {
				spinner.Stop()
				return err
			}

			var auraUpdates []types.AuraUpdate
			var auraErr error
			if !skipAuras {
				spinner.Update(MsgCheckingAuras)
				auraUpdates, auraErr = a.syncAuras(cmd, flavor)
			}
			spinner.Stop()

			result := display.NewUpdateResult(report, auraUpdates)
			result.AurasSkipped = skipAuras || auraErr != nil
			result.ShowChangelog = showChangelog
			if err := a.render(result); err != nil {
				return err
			}

			if auraErr != nil {
				return auraErr
			}
			if len(report.Failures) > 0 {
				failed := make([]string, 0, len(report.Failures))
				for _, f := range report.Failures {
					failed = append(failed, f.Addon.ID)
				}
				return errors.Newf(errors.ErrInstall, MsgErrUpdateFailed, len(failed)).WithDetail("addons", failed)
			}
			return nil
		},
	}
	addFlavorFlags(cmd)
	cmd.Flags().Bool("skip-auras", false, MsgFlagSkipAuras)
	cmd.Flags().Bool("changelog", false, MsgFlagChangelog)
	return cmd
}

func (a *app) syncAuras(cmd *cobra.Command, flavor types.Flavor) ([]types.AuraUpdate, error) {
	manager, err := a.auraManager()
	if err != nil {
		return nil, err
	}
	return manager.SyncAll(cmd.Context(), flavor)
}

func newRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "remove <slug>",
		Aliases:           []string{"rm"},
		Short:             MsgRemoveShort,
		GroupID:           "core",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: trackedSlugsCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			layout, err := a.layout()
			if err != nil {
				return err
			}
			// removal never talks to the provider
			manager := addons.NewManager(addons.Options{Layout: layout, Store: a.store})

			removed, err := manager.Remove(cmd.Context(), args[0], a.flavor(cmd))
			if err != nil {
				return err
			}
			return a.render(&display.RemoveResult{Addon: *removed})
		},
	}
	addFlavorFlags(cmd)
	return cmd
}

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   MsgListShort,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			// every flavor unless one is asked for
			var flavor *types.Flavor
			if f, ok := flavorFlag(cmd); ok {
				flavor = &f
			}
			tracked, err := addons.NewRepository(a.store).List(cmd.Context(), flavor)
			if err != nil {
				return err
			}
			if tracked == nil {
				tracked = []types.Addon{}
			}
			return a.render(&display.AddonList{Addons: tracked})
		},
	}
	addFlavorFlags(cmd)
	return cmd
}

func newAurasCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "auras",
		Short:   MsgAurasShort,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			manager, err := a.auraManager()
			if err != nil {
				return err
			}
			flavor := a.flavor(cmd)
			local, err := manager.ListLocal(flavor)
			if err != nil {
				return err
			}
			if local == nil {
				local = []types.LocalAura{}
			}
			return a.render(&display.AuraList{Flavor: flavor, Auras: local})
		},
	}
	addFlavorFlags(cmd)
	return cmd
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "config [key] [value]",
		Short:   MsgConfigShort,
		Long:    MsgConfigLong,
		Example: MsgConfigExample,
		GroupID: "misc",
		Args:    cobra.MaximumNArgs(2),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return config.KnownKeys(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if len(args) == 0 {
				values, err := a.cfg.Values()
				if err != nil {
					return err
				}
				dump, err := a.cfg.Dump()
				if err != nil {
					return err
				}
				return a.render(&display.ConfigDump{Values: values, TOML: dump})
			}

			key := args[0]
			if !config.IsKnownKey(key) {
				return errors.Newf(errors.ErrInvalidInput, MsgErrUnknownKey, key).
					WithDetail("known", config.KnownKeys())
			}

			if len(args) == 1 {
				value := fmt.Sprint(a.cfg.Get(key))
				if config.IsSecret(key) && value != "" {
					value = config.SecretMask
				}
				return a.render(&display.ConfigValue{Key: key, Value: value})
			}

			if err := a.store.Set(cmd.Context(), manifest.ConfigKey(key), args[1]); err != nil {
				return err
			}
			log.Info().Str("key", key).Msg("Stored config value")
			return a.render(&display.ConfigValue{Key: key, Value: args[1], Saved: true})
		},
	}
}

func newSelfUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "self-update",
		Aliases: []string{"su"},
		Short:   MsgSelfUpdateShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			spinner := a.spinner(MsgCheckingRelease)
			result, err := a.selfUpdater().Update(cmd.Context())
			spinner.Stop()
			if err != nil {
				return err
			}
			return a.render(&display.SelfUpdateResult{
				CurrentVersion: result.CurrentVersion,
				LatestVersion:  result.LatestVersion,
				Updated:        result.Updated,
				Path:           result.Path,
			})
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.String())
			return err
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		GroupID:               "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		renderer, rerr := ui.NewRenderer(ui.FormatAuto, os.Stderr)
		if rerr == nil {
			_ = renderer.RenderError(err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		// usage mistakes, including cobra's own flag and argument errors
		if code := errors.GetErrorCode(err); code == errors.ErrInvalidInput || code == errors.ErrUnknown {
			fmt.Fprintln(os.Stderr)
			_ = rootCmd.Help()
		}
		return 1
	}
	return 0
}
