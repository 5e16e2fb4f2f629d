package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/yeisme/docshelf/pkg/app"
	"github.com/yeisme/docshelf/pkg/configs"
	"github.com/yeisme/docshelf/pkg/internal/naming"
	"github.com/yeisme/docshelf/pkg/internal/service"
)

var (
	orphansPrune bool
	orphansGrace time.Duration
	filesJSON    bool

	filesCmd = &cobra.Command{
		Use:   "files",
		Short: "inspect and maintain uploaded files",
	}

	filesListCmd = &cobra.Command{
		Use:     "ls",
		Short:   "list manifest records",
		Aliases: []string{"list"},
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := app.NewCore(cmd.Context(), configs.GetConfig())
			if err != nil {
				return err
			}
			defer core.Close()

			records, err := core.Files.List(cmd.Context())
			if err != nil {
				return err
			}

			if filesJSON {
				return printJSON(cmd, records)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTORED\tORIGINAL\tTYPE\tSIZE\tUPLOADED")

			for _, r := range records {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
					r.ID, r.StoredName, r.OriginalName, r.MimeType, r.Size, r.UploadedAt.Format(time.RFC3339))
			}

			return w.Flush()
		},
	}

	filesNameCmd = &cobra.Command{
		Use:   "name <original>",
		Short: "preview the sanitized and stored name for an original file name",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, "sanitized:", naming.Sanitize(args[0]))
			fmt.Fprintln(out, "stored:   ", naming.NewGenerator().StoredName(args[0]))
		},
	}

	filesOrphansCmd = &cobra.Command{
		Use:   "orphans",
		Short: "report files without manifest records and records without files",
		RunE: func(cmd *cobra.Command, args []string) error {
			if orphansGrace < 0 {
				return errors.New("grace must not be negative")
			}

			core, err := app.NewCore(cmd.Context(), configs.GetConfig())
			if err != nil {
				return err
			}
			defer core.Close()

			report, err := core.Files.Reconcile(cmd.Context(), service.ReconcileOptions{
				Prune: orphansPrune,
				Grace: orphansGrace,
			})
			if err != nil {
				return err
			}

			if filesJSON {
				return printJSON(cmd, report)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "records: %d, files: %d, orphans: %d, missing: %d, pruned: %d\n",
				report.Records, report.Files, len(report.Orphans), len(report.Missing), report.Pruned)

			for _, o := range report.Orphans {
				state := "kept"
				if o.Pruned {
					state = "pruned"
				}

				fmt.Fprintf(out, "  orphan  %s (%d bytes, %s) %s\n", o.Name, o.Size, o.ModTime.Format(time.RFC3339), state)
			}

			for _, m := range report.Missing {
				fmt.Fprintf(out, "  missing %s (id %s)\n", m.StoredName, m.ID)
			}

			return nil
		},
	}

	filesMirrorCmd = &cobra.Command{
		Use:   "mirror",
		Short: "upload every manifest file to the s3 mirror",
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := app.NewCore(cmd.Context(), configs.GetConfig())
			if err != nil {
				return err
			}
			defer core.Close()

			if core.Mirror == nil {
				return errors.New("mirror is disabled, set mirror.enabled")
			}

			records, err := core.Files.List(cmd.Context())
			if err != nil {
				return err
			}

			n, err := core.Mirror.Sync(cmd.Context(), records)
			fmt.Fprintf(cmd.OutOrStdout(), "mirrored %d/%d files\n", n, len(records))

			return err
		},
	}
)

func printJSON(cmd *cobra.Command, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(b))

	return nil
}

// registerFilesCommands 注册文件相关命令.
func registerFilesCommands() {
	filesCmd.PersistentFlags().BoolVar(&filesJSON, "json", false, "print JSON instead of text")

	filesOrphansCmd.Flags().BoolVar(&orphansPrune, "prune", false, "delete orphans older than the grace period")
	filesOrphansCmd.Flags().DurationVar(&orphansGrace, "grace", 0, "minimum orphan age before pruning (default upload.orphan_grace_min)")

	filesCmd.AddCommand(filesListCmd, filesNameCmd, filesOrphansCmd, filesMirrorCmd)
	rootCmd.AddCommand(filesCmd)
}
