package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"clipstudio/internal/config"
	"clipstudio/internal/storage"
)

func newFilesCommand(configFlag *string) *cobra.Command {
	var fileType string

	cmd := &cobra.Command{
		Use:   "files",
		Short: "List uploaded and rendered files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFiles(cmd, *configFlag, fileType)
		},
	}
	cmd.Flags().StringVar(&fileType, "type", "", "Only list files with this extension, e.g. mp4")
	return cmd
}

func runFiles(cmd *cobra.Command, configPath, fileType string) error {
	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		return err
	}

	files, err := storage.New(cfg.Paths.UploadsDir, cfg.Paths.OutputsDir)
	if err != nil {
		return err
	}

	infos, err := files.List(fileType)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(infos) == 0 {
		fmt.Fprintln(out, "no files")
		return nil
	}

	if isTerminal(out) {
		fmt.Fprintln(out, renderFileTable(infos))
		return nil
	}
	for _, f := range infos {
		fmt.Fprintf(out, "%s\t%s\t%d\t%s\n", f.Directory, f.Name, f.Size, f.Modified.Format(time.RFC3339))
	}
	return nil
}

func renderFileTable(infos []storage.FileInfo) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"NAME", "DIR", "SIZE", "MODIFIED"})
	for _, f := range infos {
		tw.AppendRow(table.Row{f.Name, f.Directory, formatSize(f.Size), f.Modified.Format("2006-01-02 15:04")})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
