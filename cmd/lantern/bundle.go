package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/lantern/pkg/cli"
	"mercator-hq/lantern/pkg/static"
)

var bundleFlags struct {
	prefix   string
	output   string
	progress bool
}

var bundleCmd = &cobra.Command{
	Use:   "bundle",
	Short: "Manage SQLite content bundles",
	Long: `Manage SQLite content bundles served by mounts with backend "sqlite".

Examples:
  # Import a directory under /www
  lantern bundle import site.db ./public --prefix /www

  # List the bundle as CSV
  lantern bundle list site.db --output csv`,
}

var bundleImportCmd = &cobra.Command{
	Use:   "import <bundle.db> <dir>",
	Short: "Import a directory into a bundle",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := importBundle(cmd.Context(), cmd.ErrOrStderr(), args[0], args[1], bundleFlags.prefix, bundleFlags.progress)
		if err != nil {
			return cli.NewCommandError("bundle import", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Imported %d files into %s\n", n, args[0])
		return nil
	},
}

var bundleListCmd = &cobra.Command{
	Use:   "list <bundle.db>",
	Short: "List the files of a bundle",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := cli.ParseOutputFormat(bundleFlags.output)
		if err != nil {
			return err
		}
		if err := listBundle(cmd.Context(), cmd.OutOrStdout(), args[0], format); err != nil {
			return cli.NewCommandError("bundle list", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(bundleCmd)
	bundleCmd.AddCommand(bundleImportCmd, bundleListCmd)

	bundleImportCmd.Flags().StringVar(&bundleFlags.prefix, "prefix", "/", "logical root the files are stored under")
	bundleImportCmd.Flags().BoolVar(&bundleFlags.progress, "progress", true, "show a progress bar")
	bundleListCmd.Flags().StringVarP(&bundleFlags.output, "output", "o", "text", "output format: text, json, csv")
}

func importBundle(ctx context.Context, progressOut io.Writer, dbPath, dir, prefix string, showProgress bool) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	files, size, err := scanDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	var progress cli.ProgressReporter
	cfg := static.SQLiteSourceConfig{
		DBPath: dbPath,
		Logger: slog.New(slog.DiscardHandler),
	}
	if showProgress && files > 0 {
		progress = cli.NewProgressReporter(progressOut, "importing")
		progress.Start(files, size)
		cfg.OnImport = func(_ string, n int64) {
			progress.Add(n)
		}
	}

	source, err := static.NewSQLiteSourceWithConfig(cfg)
	if err != nil {
		return 0, err
	}
	defer source.Close()

	n, err := source.Import(ctx, dir, prefix)
	if progress != nil {
		if err != nil {
			progress.Error(err)
		} else {
			progress.Finish()
		}
	}
	return n, err
}

// scanDir returns the number and total size of the regular files below dir.
func scanDir(dir string) (files, size int64, err error) {
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files++
		size += info.Size()
		return nil
	})
	return files, size, err
}

// assetList renders bundle assets as a table.
type assetList []static.Asset

func (l assetList) Header() []string {
	return []string{"path", "mime_type", "size", "updated_at"}
}

func (l assetList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, a := range l {
		rows = append(rows, []string{a.Path, a.MimeType, strconv.FormatInt(a.Size, 10), a.UpdatedAt.UTC().Format(time.RFC3339)})
	}
	return rows
}

func listBundle(ctx context.Context, w io.Writer, dbPath string, format cli.OutputFormat) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, err := os.Stat(dbPath); err != nil {
		return err
	}

	source, err := static.NewSQLiteSourceWithConfig(static.SQLiteSourceConfig{
		DBPath: dbPath,
		Logger: slog.New(slog.DiscardHandler),
	})
	if err != nil {
		return err
	}
	defer source.Close()

	assets, err := source.List(ctx)
	if err != nil {
		return err
	}

	if format != cli.FormatText {
		return cli.NewFormatter(format).FormatTo(w, assetList(assets))
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\tTYPE\tSIZE\tUPDATED")
	for _, row := range assetList(assets).Rows() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", row[0], row[1], row[2], row[3])
	}
	return tw.Flush()
}
