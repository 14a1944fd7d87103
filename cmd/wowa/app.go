package wowa

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/arthur-debert/wowa/internal/version"
	"github.com/arthur-debert/wowa/pkg/addons"
	"github.com/arthur-debert/wowa/pkg/auras"
	"github.com/arthur-debert/wowa/pkg/config"
	"github.com/arthur-debert/wowa/pkg/curse"
	"github.com/arthur-debert/wowa/pkg/errors"
	"github.com/arthur-debert/wowa/pkg/httpclient"
	"github.com/arthur-debert/wowa/pkg/manifest"
	"github.com/arthur-debert/wowa/pkg/paths"
	"github.com/arthur-debert/wowa/pkg/retry"
	"github.com/arthur-debert/wowa/pkg/selfupdate"
	"github.com/arthur-debert/wowa/pkg/style"
	"github.com/arthur-debert/wowa/pkg/types"
	"github.com/arthur-debert/wowa/pkg/ui"
	"github.com/arthur-debert/wowa/pkg/wago"
	"github.com/spf13/cobra"
)

// app is the per-invocation wiring shared by the commands: resolved
// directories, the manifest, the effective config and the output renderer.
type app struct {
	paths    *paths.Paths
	store    *manifest.SQLStore
	cfg      *config.Config
	format   ui.Format
	renderer ui.Renderer
	out      io.Writer
}

// openApp loads everything a command needs from the root flags. The caller
// must Close the app.
func openApp(cmd *cobra.Command) (*app, error) {
	p, err := paths.New()
	if err != nil {
		return nil, fmt.Errorf(MsgErrInitPaths, err)
	}

	store, err := manifest.Open(p.ManifestPath())
	if err != nil {
		return nil, err
	}

	cfg, err := loadConfig(cmd.Context(), cmd, p, store)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	formatName, _ := cmd.Flags().GetString("format")
	format, err := ui.ParseFormat(formatName)
	if err != nil {
		_ = store.Close()
		return nil, errors.Wrap(err, errors.ErrInvalidInput, "invalid --format")
	}
	out := cmd.OutOrStdout()
	renderer, err := ui.NewRenderer(format, out)
	if err != nil {
		_ = store.Close()
		return nil, errors.Wrap(err, errors.ErrInvalidInput, "invalid --format")
	}

	return &app{paths: p, store: store, cfg: cfg, format: format, renderer: renderer, out: out}, nil
}

func loadConfig(ctx context.Context, cmd *cobra.Command, p *paths.Paths, store manifest.Store) (*config.Config, error) {
	stored, err := manifest.ConfigValues(ctx, store)
	if err != nil {
		return nil, err
	}

	overrides := map[string]interface{}{}
	if gameDir, _ := cmd.Flags().GetString("game-dir"); gameDir != "" {
		overrides[config.KeyGameDir] = gameDir
	}

	return config.Load(config.Options{
		ConfigFile: p.ConfigFilePath(),
		Stored:     stored,
		Overrides:  overrides,
	})
}

func (a *app) Close() {
	_ = a.store.Close()
}

// render writes result with the selected renderer.
func (a *app) render(result interface{}) error {
	return a.renderer.RenderResult(result)
}

// spinner starts a progress spinner on stderr when the output is a rich
// terminal. It returns nil otherwise.
func (a *app) spinner(text string) *style.Spinner {
	interactive := a.format != ui.FormatJSON && a.format != ui.FormatYAML &&
		a.format != ui.FormatText && ui.IsInteractive(os.Stderr)
	return style.StartSpinner(os.Stderr, interactive, text)
}

// flavor resolves the --classic/--retail flags, falling back to the
// configured default.
func (a *app) flavor(cmd *cobra.Command) types.Flavor {
	if f, ok := flavorFlag(cmd); ok {
		return f
	}
	return a.cfg.Flavor()
}

// flavorFlag reports the flavor selected on the command line, if any.
func flavorFlag(cmd *cobra.Command) (types.Flavor, bool) {
	if classic, _ := cmd.Flags().GetBool("classic"); classic {
		return types.Classic, true
	}
	if retail, _ := cmd.Flags().GetBool("retail"); retail {
		return types.Retail, true
	}
	return types.Retail, false
}

func (a *app) layout() (paths.GameLayout, error) {
	return paths.NewGameLayout(a.cfg.GameDir())
}

func (a *app) retryPolicy() retry.Policy {
	return retry.DefaultPolicy(a.cfg.HTTPRetries())
}

func (a *app) curseClient() (*curse.Client, error) {
	if a.cfg.CurseToken() == "" {
		return nil, errors.New(errors.ErrConfigMissing, MsgErrMissingToken)
	}
	return curse.NewClient(
		curse.WithHTTPClient(httpclient.New(a.cfg.HTTPTimeout())),
		curse.WithBaseURL(a.cfg.CurseBaseURL()),
		curse.WithToken(a.cfg.CurseToken()),
		curse.WithUserAgent(version.UserAgent()),
		curse.WithRetryPolicy(a.retryPolicy()),
	), nil
}

func (a *app) wagoClient() *wago.Client {
	return wago.NewClient(
		wago.WithHTTPClient(httpclient.New(a.cfg.HTTPTimeout())),
		wago.WithBaseURL(a.cfg.WagoBaseURL()),
		wago.WithUserAgent(version.UserAgent()),
		wago.WithRetryPolicy(a.retryPolicy()),
	)
}

func (a *app) addonManager() (*addons.Manager, error) {
	layout, err := a.layout()
	if err != nil {
		return nil, err
	}
	client, err := a.curseClient()
	if err != nil {
		return nil, err
	}
	return addons.NewManager(addons.Options{
		Layout:   layout,
		Store:    a.store,
		Provider: client,
		Workers:  a.cfg.Workers(),
	}), nil
}

func (a *app) auraManager() (*auras.Manager, error) {
	layout, err := a.layout()
	if err != nil {
		return nil, err
	}
	return auras.NewManager(auras.Options{Layout: layout, Provider: a.wagoClient()}), nil
}

func (a *app) selfUpdater() *selfupdate.Updater {
	client := selfupdate.NewGitHubClient(a.cfg.SelfUpdateRepo(),
		selfupdate.WithHTTPClient(httpclient.New(a.cfg.HTTPTimeout())),
		selfupdate.WithRetryPolicy(a.retryPolicy()),
	)
	return selfupdate.NewUpdater(client, version.Version)
}
