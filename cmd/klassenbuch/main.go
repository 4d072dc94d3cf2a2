package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hyperifyio/klassenbuch/internal/app"
	"github.com/hyperifyio/klassenbuch/internal/homework"
	"github.com/hyperifyio/klassenbuch/internal/report"
	"github.com/hyperifyio/klassenbuch/internal/search"
	"github.com/hyperifyio/klassenbuch/internal/store"
)

var (
	dbPath     string
	indexPath  string
	configPath string
	verbose    bool
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	rootCmd := &cobra.Command{
		Use:   "klassenbuch",
		Short: "Extract and manage homework from Klassenbuch exports",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (default ~/.klassenbuch/klassenbuch.db)")
	rootCmd.PersistentFlags().StringVar(&indexPath, "index", "", "search index path (default ~/.klassenbuch/homework.bleve)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "optional YAML/JSON config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	rootCmd.AddCommand(ingestCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(filesCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(completeCmd())
	rootCmd.AddCommand(removeFileCmd())
	rootCmd.AddCommand(exportCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveConfig layers the sources: explicit flags win, the config file
// fills gaps, and the ~/.klassenbuch defaults apply last so a config file
// can still relocate the database and index. Flags default to empty for
// that reason.
func resolveConfig() (app.Config, error) {
	cfg := app.Config{DBPath: dbPath, IndexPath: indexPath, Verbose: verbose}
	if configPath != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = cfg.Merge(fc)
	}
	home, _ := os.UserHomeDir()
	defaultDir := filepath.Join(home, ".klassenbuch")
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(defaultDir, "klassenbuch.db")
	}
	if cfg.IndexPath == "" {
		cfg.IndexPath = filepath.Join(defaultDir, "homework.bleve")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return cfg, fmt.Errorf("create data dir: %w", err)
	}
	return cfg, nil
}

func openStore() (*store.Store, app.Config, error) {
	cfg, err := resolveConfig()
	if err != nil {
		return nil, cfg, err
	}
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, cfg, err
	}
	return st, cfg, nil
}

func ingestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <file>...",
		Short: "Extract homework from Klassenbuch text/HTML exports and merge it in",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig()
			if err != nil {
				return err
			}
			res, err := app.Ingest(context.Background(), cfg, args)
			if err != nil {
				return err
			}
			fmt.Printf("%d file(s) loaded, %d record(s) extracted, %d new, %d total\n",
				res.FilesLoaded, res.RecordsFound, res.RecordsAdded, res.RecordsTotal)
			return nil
		},
	}
}

func listCmd() *cobra.Command {
	var subject string
	var pendingOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List homework grouped by due date",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			records, err := st.Load()
			if err != nil {
				return err
			}
			records = filterRecords(records, subject, pendingOnly)
			if len(records) == 0 {
				fmt.Println("no homework")
				return nil
			}

			for _, g := range report.GroupByDate(records) {
				fmt.Printf("%s, %s\n", g.DayName, g.Date.Format("02.01.2006"))
				for _, r := range g.Assignments {
					mark := " "
					if r.Completed {
						mark = "x"
					}
					fmt.Printf("  [%s] %s", mark, r.Subject)
					if r.Teacher != "" {
						fmt.Printf(" (%s)", r.Teacher)
					}
					fmt.Printf(": %s\n", r.Description)
					fmt.Printf("      id: %s  sources: %s\n", r.ID, strings.Join(r.SourceFileIDs, ", "))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "only show one subject")
	cmd.Flags().BoolVar(&pendingOnly, "pending", false, "hide completed homework")
	return cmd
}

func filterRecords(records []homework.Record, subject string, pendingOnly bool) []homework.Record {
	if subject == "" && !pendingOnly {
		return records
	}
	want := homework.NormalizeSubject(subject)
	out := make([]homework.Record, 0, len(records))
	for _, r := range records {
		if subject != "" && r.Subject != want {
			continue
		}
		if pendingOnly && r.Completed {
			continue
		}
		out = append(out, r)
	}
	return out
}

func filesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "files",
		Short: "List ingested documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			files, err := st.ListFiles()
			if err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Println("no documents ingested")
				return nil
			}
			for _, f := range files {
				fmt.Printf("%s  %s  %d bytes, %d record(s)\n", f.ID, f.Name, f.Size, f.HomeworkCount)
			}
			return nil
		},
	}
}

func searchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Full-text search over descriptions and lesson content",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig()
			if err != nil {
				return err
			}
			idx, err := search.Open(cfg.IndexPath)
			if err != nil {
				return err
			}
			defer idx.Close()

			hits, err := idx.Search(strings.Join(args, " "), limit)
			if err != nil {
				return err
			}
			if len(hits) == 0 {
				fmt.Println("no matches")
				return nil
			}
			for _, h := range hits {
				fmt.Printf("%s  %s  (score %.2f)\n", h.ID, h.Subject, h.Score)
				for field, frags := range h.Fragments {
					for _, frag := range frags {
						fmt.Printf("    %s: %s\n", field, frag)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "maximum number of hits")
	return cmd
}

func completeCmd() *cobra.Command {
	var undo bool

	cmd := &cobra.Command{
		Use:   "complete <id>",
		Short: "Mark homework as done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, _, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()
			return st.SetCompleted(args[0], !undo)
		},
	}

	cmd.Flags().BoolVar(&undo, "undo", false, "mark as not done instead")
	return cmd
}

func removeFileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove-file <file-id>",
		Short: "Withdraw a document and drop records it alone backed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig()
			if err != nil {
				return err
			}
			return app.RemoveFile(cfg, args[0])
		},
	}
}

func exportCmd() *cobra.Command {
	var pdfPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the homework schedule as a PDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, cfg, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			out := pdfPath
			if out == "" {
				out = cfg.PDFPath
			}
			if out == "" {
				return fmt.Errorf("no output path: pass --pdf or set pdf in the config file")
			}

			records, err := st.Load()
			if err != nil {
				return err
			}
			if err := report.WritePDF(report.GroupByDate(records), out); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&pdfPath, "pdf", "", "output PDF path")
	return cmd
}
