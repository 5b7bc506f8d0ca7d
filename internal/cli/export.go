package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/tutu-network/focus/internal/app/export"
	"github.com/tutu-network/focus/internal/daemon"
)

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Write to this file instead of stdout (\".\" picks a dated name)")
	rootCmd.AddCommand(exportCmd)
}

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export sessions as CSV",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	sessions := d.Controller.Sessions()
	if exportOut == "" || exportOut == "-" {
		return export.WriteCSV(cmd.OutOrStdout(), sessions, time.Local)
	}

	path := exportOut
	if path == "." {
		path = export.FileName(time.Now())
	}
	if err := os.WriteFile(path, []byte(export.CSV(sessions, time.Local)), 0644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d sessions to %s\n", len(sessions), path)
	return nil
}
