package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pravnik-mk/compliance-engine/internal/catalog"
)

func newCatalogsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalogs",
		Short: "Inspect and lint questionnaire catalogs",
	}
	cmd.AddCommand(newCatalogsListCmd())
	cmd.AddCommand(newCatalogsLintCmd())
	return cmd
}

func newCatalogsListCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List built-in catalogs and those published in --dir",
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := catalog.NewLoader()
			if err := loader.LoadBuiltin(); err != nil {
				return err
			}
			if dir != "" {
				if _, err := loader.LoadFromDir(dir); err != nil {
					return err
				}
			}
			return writeJSON(cmd.OutOrStdout(), loader.List())
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Directory of published catalogs")
	return cmd
}

type lintResult struct {
	File    string `json:"file"`
	Type    string `json:"type,omitempty"`
	Version string `json:"version,omitempty"`
	Error   string `json:"error,omitempty"`
}

func newCatalogsLintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lint <dir>",
		Short: "Validate every catalog file in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := lintDir(args[0])
			if err != nil {
				return err
			}
			if err := writeJSON(cmd.OutOrStdout(), results); err != nil {
				return err
			}

			failed := 0
			for _, r := range results {
				if r.Error != "" {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d catalog(s) failed validation", failed, len(results))
			}
			return nil
		},
	}
}

// lintDir parses every YAML file in dir. A file that fails is reported in
// its result rather than aborting the run.
func lintDir(dir string) ([]lintResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog dir: %w", err)
	}

	var results []lintResult
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if ext := strings.ToLower(filepath.Ext(name)); ext != ".yaml" && ext != ".yml" {
			continue
		}

		result := lintResult{File: name}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			result.Error = err.Error()
			results = append(results, result)
			continue
		}

		c, err := catalog.Parse(data)
		if err != nil {
			result.Error = err.Error()
		} else {
			result.Type = c.Type
			result.Version = c.Version
		}
		results = append(results, result)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].File < results[j].File })
	return results, nil
}
