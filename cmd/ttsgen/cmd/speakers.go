package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var speakersCmd = &cobra.Command{
	Use:   "speakers <model-id>",
	Short: "List the built-in speakers of a model",
	Long: `Asks the configured engine for the voices a model ships with. The engine
may need to download and load the model to answer.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		engine, err := newEngine(cfg.Engine)
		if err != nil {
			return err
		}
		defer engine.Close()

		list, err := engine.BuiltInSpeakers(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("querying speakers: %w", err)
		}

		out := cmd.OutOrStdout()
		if !list.Available || len(list.Names) == 0 {
			fmt.Fprintf(out, "%s has no built-in speakers\n", args[0])
			return nil
		}
		for _, name := range list.Names {
			fmt.Fprintln(out, name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(speakersCmd)
}
