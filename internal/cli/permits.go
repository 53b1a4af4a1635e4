package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/permit-sheriff/sheriff/internal/app/compliance"
	"github.com/permit-sheriff/sheriff/internal/daemon"
	"github.com/permit-sheriff/sheriff/internal/infra/registry"
	"github.com/permit-sheriff/sheriff/internal/infra/sqlite"
)

func init() {
	rootCmd.AddCommand(permitsCmd)
	permitsCmd.AddCommand(permitsListCmd)
	permitsCmd.AddCommand(permitsImportCmd)

	permitsImportCmd.Flags().StringP("file", "f", "", "Watchlist YAML file to import")
}

var permitsCmd = &cobra.Command{
	Use:   "permits",
	Short: "Inspect and import tracked permits",
}

// ─── permits list ───────────────────────────────────────────────────────────

var permitsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked permits with their compliance verdicts",
	RunE:  runPermitsList,
}

func runPermitsList(cmd *cobra.Command, args []string) error {
	st, err := buildStack()
	if err != nil {
		return err
	}
	defer st.Close()

	permits, err := st.source.Snapshot(cmd.Context())
	if err != nil {
		return err
	}
	assessments, summary, err := compliance.NewEvaluator().AssessAll(permits)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PERMIT\tADDRESS\tTYPE\tDAYS OPEN\tLIMIT\tSTATUS\tREFUND OWED")
	for _, a := range assessments {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			a.Permit.ID, a.Permit.Address, a.Permit.Type,
			a.Permit.DaysOpen, a.Permit.StatuteLimitDays,
			a.Classification, a.RefundOwed)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\n%d permits tracked, %d in violation, %d at risk, %s recoverable\n",
		summary.ActivePermits, summary.Violations, summary.AtRisk, summary.RecoverableCents)
	return nil
}

// ─── permits import ─────────────────────────────────────────────────────────

var permitsImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a watchlist YAML file into the local store",
	Long: `Parse a watchlist YAML file and upsert its permits into the local
SQLite store, so "store" can be used as the registry source.`,
	RunE: runPermitsImport,
}

func runPermitsImport(cmd *cobra.Command, args []string) error {
	file, _ := cmd.Flags().GetString("file")
	if file == "" {
		return fmt.Errorf("watchlist file required: sheriff permits import -f <file>")
	}

	cfg, err := daemon.Load(configPath)
	if err != nil {
		return err
	}
	profile, err := loadProfile(cfg)
	if err != nil {
		return err
	}

	db, err := sqlite.OpenFile(cfg.LedgerPath())
	if err != nil {
		return err
	}
	defer db.Close()

	n, err := registry.ImportFile(db, file, profile, time.Now())
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d permits into %s\n", n, cfg.LedgerPath())
	return nil
}
