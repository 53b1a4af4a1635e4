// Package cli implements the sheriff command line interface.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/permit-sheriff/sheriff/internal/app/enforcer"
	"github.com/permit-sheriff/sheriff/internal/daemon"
	"github.com/permit-sheriff/sheriff/internal/domain"
	"github.com/permit-sheriff/sheriff/internal/infra/ledger"
	"github.com/permit-sheriff/sheriff/internal/infra/letter"
	"github.com/permit-sheriff/sheriff/internal/infra/notary"
	"github.com/permit-sheriff/sheriff/internal/infra/registry"
	"github.com/permit-sheriff/sheriff/internal/infra/render"
	"github.com/permit-sheriff/sheriff/internal/infra/sqlite"
	"github.com/permit-sheriff/sheriff/internal/infra/statute"
)

// Version is stamped at build time via -ldflags "-X ...cli.Version=x.y.z".
var Version = "1.0.0"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "sheriff",
	Short: "Track permit reviews against statutory deadlines",
	Long: `Permit Sheriff tracks permit applications against statutory review
deadlines, flags violations, and drives the enforcement workflow that
produces notarized demand letters backed by a tamper-evident ledger.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Config file (default ~/.sheriff/config.toml)")
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the sheriff version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("sheriff %s\n", Version)
	},
}

// ─── Stack Assembly ─────────────────────────────────────────────────────────

// stack bundles the collaborators commands share, wired per the config.
type stack struct {
	cfg        daemon.Config
	profile    statute.Profile
	source     domain.PermitSource
	ledger     domain.Ledger
	controller *enforcer.Controller
	renderer   *render.TextRenderer
	db         *sqlite.DB
}

// buildStack loads the config and wires the enforcement stack behind it.
func buildStack() (*stack, error) {
	cfg, err := daemon.Load(configPath)
	if err != nil {
		return nil, err
	}

	profile, err := loadProfile(cfg)
	if err != nil {
		return nil, err
	}

	s := &stack{cfg: cfg, profile: profile, renderer: render.NewTextRenderer()}

	// The SQLite store backs both the durable ledger and the imported
	// permit registry; open it once when either is configured.
	if cfg.Ledger.Backend == "sqlite" || cfg.Registry.Source == "store" {
		s.db, err = sqlite.OpenFile(cfg.LedgerPath())
		if err != nil {
			return nil, err
		}
	}

	switch cfg.Ledger.Backend {
	case "sqlite":
		s.ledger, err = ledger.NewStore(s.db)
		if err != nil {
			s.Close()
			return nil, err
		}
	default:
		s.ledger = ledger.NewMemory()
	}

	switch cfg.Registry.Source {
	case "file":
		s.source = registry.NewFileSource(cfg.Registry.Path, profile)
	case "store":
		s.source = registry.NewStoreSource(s.db)
	default:
		s.source = registry.Fixture(time.Now())
	}

	composer, err := buildComposer(cfg, profile)
	if err != nil {
		s.Close()
		return nil, err
	}

	s.controller = enforcer.New(enforcer.Config{
		DraftTimeout:    cfg.DraftTimeout(),
		NotarizeTimeout: cfg.NotarizeTimeout(),
	}, s.source, composer, notary.NewLocalNotary(), s.ledger)

	return s, nil
}

// loadProfile returns the configured statute profile, or the built-in
// Florida profile when none is set.
func loadProfile(cfg daemon.Config) (statute.Profile, error) {
	if cfg.Statute.Profile == "" {
		return statute.Florida(), nil
	}
	return statute.Load(cfg.Statute.Profile)
}

// buildComposer picks template drafting in demo mode and the configured
// provider otherwise.
func buildComposer(cfg daemon.Config, profile statute.Profile) (domain.LetterComposer, error) {
	if cfg.Enforcement.DemoMode {
		return letter.NewTemplateComposer(profile), nil
	}
	provider, err := letter.NewProvider(cfg.Letters.Provider + ":" + cfg.Letters.Model)
	if err != nil {
		return nil, err
	}
	return letter.NewDraftComposer(provider, profile), nil
}

// Close releases the stack's resources.
func (s *stack) Close() {
	if s.db != nil {
		s.db.Close()
	}
}
