package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(enforceCmd)
	enforceCmd.Flags().StringP("out", "o", ".", "Directory to write the demand letter into")
}

var enforceCmd = &cobra.Command{
	Use:   "enforce PERMIT_ID",
	Short: "Run the full enforcement cycle against a violating permit",
	Long: `Select a violating permit, draft its legal demand letter, notarize
it, seal the cycle into the ledger, and write the letter to disk.`,
	Args: cobra.ExactArgs(1),
	RunE: runEnforce,
}

func runEnforce(cmd *cobra.Command, args []string) error {
	permitID := args[0]
	outDir, _ := cmd.Flags().GetString("out")

	st, err := buildStack()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	if err := st.controller.Select(ctx, permitID); err != nil {
		return err
	}
	pkg, err := st.controller.Trigger(ctx, permitID)
	if err != nil {
		return err
	}

	doc, err := st.renderer.Render(*pkg)
	if err != nil {
		return err
	}
	path := filepath.Join(outDir, st.renderer.Filename(permitID))
	if err := os.WriteFile(path, doc, 0o644); err != nil {
		return fmt.Errorf("write demand letter: %w", err)
	}

	fmt.Printf("Demand letter written to %s\n", path)
	fmt.Printf("Notice SHA-256:  %s\n", pkg.Record.NoticeSHA256)
	fmt.Printf("Proof digest:    %s\n", pkg.Proof.Digest)
	fmt.Printf("Ledger entry:    seq %d (%s)\n", pkg.Record.Seq, pkg.Record.EntryHash)
	return nil
}
