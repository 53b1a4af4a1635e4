package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(ledgerCmd)
	ledgerCmd.AddCommand(ledgerListCmd)
	ledgerCmd.AddCommand(ledgerVerifyCmd)
}

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect and verify the enforcement ledger",
}

// ─── ledger list ────────────────────────────────────────────────────────────

var ledgerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List enforcement ledger entries",
	RunE:  runLedgerList,
}

func runLedgerList(cmd *cobra.Command, args []string) error {
	st, err := buildStack()
	if err != nil {
		return err
	}
	defer st.Close()

	records, err := st.ledger.List()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("Ledger is empty.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SEQ\tPERMIT\tCOMPLETED\tNOTICE SHA-256\tENTRY HASH")
	for _, r := range records {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			r.Seq, r.PermitID, r.CompletedAt.Format(time.RFC3339),
			shortHash(r.NoticeSHA256), shortHash(r.EntryHash))
	}
	return w.Flush()
}

// ─── ledger verify ──────────────────────────────────────────────────────────

var ledgerVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Re-verify the ledger hash chain",
	RunE:  runLedgerVerify,
}

func runLedgerVerify(cmd *cobra.Command, args []string) error {
	st, err := buildStack()
	if err != nil {
		return err
	}
	defer st.Close()

	n, err := st.ledger.Len()
	if err != nil {
		return err
	}
	if err := st.ledger.Verify(); err != nil {
		return fmt.Errorf("ledger verification FAILED: %w", err)
	}
	fmt.Printf("Ledger verified: %d entries, hash chain intact.\n", n)
	return nil
}

// shortHash abbreviates a hex digest for table display.
func shortHash(h string) string {
	if len(h) <= 12 {
		return h
	}
	return h[:12] + "..."
}
