package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/wordtally/internal/catalog"
	"github.com/verte-zerg/wordtally/internal/model"
	"github.com/verte-zerg/wordtally/internal/store"
	"github.com/verte-zerg/wordtally/internal/wordlist"
)

var (
	catalogSeedFile   string
	catalogImportLang string
	catalogImportCat  string
	catalogListAll    bool
	catalogAddSyn     []string
	catalogAddSimilar []string
	catalogAddCat     string
)

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the word catalog",
	}

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed an empty catalog from a file or the built-in words",
		Args:  cobra.NoArgs,
		RunE:  runCatalogSeedCmd,
	}
	seedCmd.Flags().StringVar(&catalogSeedFile, "file", "", "TOML catalog file")

	importCmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Add words from a TOML catalog or a tab-separated word list",
		Args:  cobra.ExactArgs(1),
		RunE:  runCatalogImportCmd,
	}
	importCmd.Flags().StringVar(&catalogImportLang, "lang", "", "drop words not matching a language (en, zh)")
	importCmd.Flags().StringVar(&catalogImportCat, "category", "", "category for imported words without one")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog words",
		Args:  cobra.NoArgs,
		RunE:  runCatalogListCmd,
	}
	listCmd.Flags().BoolVar(&catalogListAll, "all", false, "include disabled words")

	exportCmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Write the active catalog as a TOML file",
		Args:  cobra.ExactArgs(1),
		RunE:  runCatalogExportCmd,
	}

	addCmd := &cobra.Command{
		Use:   "add <word>",
		Short: "Add a word",
		Args:  cobra.ExactArgs(1),
		RunE:  runCatalogAddCmd,
	}
	addCmd.Flags().StringSliceVar(&catalogAddSyn, "synonyms", nil, "comma-separated synonyms")
	addCmd.Flags().StringSliceVar(&catalogAddSimilar, "similar", nil, "comma-separated look-alike words")
	addCmd.Flags().StringVar(&catalogAddCat, "category", catalog.DefaultCategory, "word category")

	removeCmd := &cobra.Command{
		Use:   "remove <word>",
		Short: "Delete a word",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(st *store.Store) error {
				return st.DeleteWord(cmd.Context(), args[0])
			})
		},
	}
	enableCmd := &cobra.Command{
		Use:   "enable <word>",
		Short: "Use a word in future sessions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(st *store.Store) error {
				return st.SetWordActive(cmd.Context(), args[0], true)
			})
		},
	}
	disableCmd := &cobra.Command{
		Use:   "disable <word>",
		Short: "Keep a word out of future sessions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(st *store.Store) error {
				return st.SetWordActive(cmd.Context(), args[0], false)
			})
		},
	}

	cmd.AddCommand(seedCmd, importCmd, listCmd, exportCmd, addCmd, removeCmd, enableCmd, disableCmd)
	return cmd
}

func withStore(fn func(st *store.Store) error) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)
	return fn(st)
}

func runCatalogSeedCmd(cmd *cobra.Command, _ []string) error {
	words, source, err := catalogSource(catalogSeedFile)
	if err != nil {
		return err
	}
	return withStore(func(st *store.Store) error {
		inserted, err := st.SeedCatalog(cmd.Context(), words)
		if err != nil {
			return fmt.Errorf("failed to seed catalog: %w", err)
		}
		if inserted == 0 {
			logErrln("Catalog is not empty; nothing seeded. Use `wordtally catalog import` to add words.")
			return nil
		}
		logErrf("Seeded %d words from %s\n", inserted, source)
		return nil
	})
}

func runCatalogImportCmd(cmd *cobra.Command, args []string) error {
	words, err := readCatalogFile(args[0])
	if err != nil {
		return err
	}
	if catalogImportLang != "" {
		var dropped int
		words, dropped = wordlist.Filter(words, wordlist.FilterForLang(catalogImportLang))
		if dropped > 0 {
			logErrf("Skipped %d words not matching --lang %s\n", dropped, catalogImportLang)
		}
	}
	return withStore(func(st *store.Store) error {
		added, existing, err := importWords(cmd.Context(), st, words, catalogImportCat)
		if err != nil {
			return err
		}
		logErrf("Imported %d words (%d already present)\n", added, existing)
		return nil
	})
}

// readCatalogFile loads .toml files as catalogs and anything else as a word list.
func readCatalogFile(path string) ([]model.Word, error) {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return catalog.LoadFile(path)
	}
	words, err := wordlist.LoadWords(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load word list: %w", err)
	}
	return words, nil
}

func importWords(ctx context.Context, st *store.Store, words []model.Word, category string) (added, existing int, err error) {
	for _, w := range words {
		if w.Category == "" {
			w.Category = category
		}
		if _, err := st.AddWord(ctx, w); err != nil {
			if errors.Is(err, store.ErrWordExists) {
				existing++
				continue
			}
			return added, existing, fmt.Errorf("failed to add %q: %w", w.Text, err)
		}
		added++
	}
	return added, existing, nil
}

func runCatalogListCmd(cmd *cobra.Command, _ []string) error {
	return withStore(func(st *store.Store) error {
		words, err := st.ListWords(cmd.Context(), !catalogListAll)
		if err != nil {
			return fmt.Errorf("failed to list words: %w", err)
		}
		out := cmd.OutOrStdout()
		for _, w := range words {
			line := fmt.Sprintf("%s\t%s", w.Text, w.Category)
			if !w.Active {
				line += "\t(disabled)"
			}
			if len(w.Synonyms) > 0 {
				line += "\tsyn: " + strings.Join(w.Synonyms, ",")
			}
			if len(w.Similar) > 0 {
				line += "\tsimilar: " + strings.Join(w.Similar, ",")
			}
			if _, err := fmt.Fprintln(out, line); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
		return nil
	})
}

func runCatalogExportCmd(cmd *cobra.Command, args []string) error {
	return withStore(func(st *store.Store) error {
		words, err := st.ListWords(cmd.Context(), true)
		if err != nil {
			return fmt.Errorf("failed to list words: %w", err)
		}
		if err := catalog.WriteFile(args[0], words); err != nil {
			return err
		}
		logErrf("Wrote %d words to %s\n", len(words), args[0])
		return nil
	})
}

func runCatalogAddCmd(cmd *cobra.Command, args []string) error {
	w := model.Word{
		Text:     args[0],
		Category: catalogAddCat,
		Synonyms: catalogAddSyn,
		Similar:  catalogAddSimilar,
	}
	return withStore(func(st *store.Store) error {
		added, err := st.AddWord(cmd.Context(), w)
		if err != nil {
			return err
		}
		logErrf("Added %s\n", added.Text)
		return nil
	})
}
