package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nadzzz/ttsgen/internal/catalog"
)

var modelsJSON bool

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the model catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		cat, err := catalog.Load(cfg.Catalog.File)
		if err != nil {
			return fmt.Errorf("loading catalog: %w", err)
		}

		out := cmd.OutOrStdout()
		if modelsJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(cat.Categories())
		}

		for _, c := range cat.Categories() {
			fmt.Fprintf(out, "%s\n", c.Name)
			for _, m := range c.Models {
				fmt.Fprintf(out, "  %-60s %-14s %-7s %s\n", m.ID, m.Family, m.Quality, m.Name)
			}
		}
		fmt.Fprintf(out, "\n%d models\n", cat.Len())
		return nil
	},
}

func init() {
	modelsCmd.Flags().BoolVar(&modelsJSON, "json", false, "print the catalog as JSON")
	rootCmd.AddCommand(modelsCmd)
}
