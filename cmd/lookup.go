package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <awards|recs|posts> <identifier>",
	Short: "Fetch one profile data source and print it as JSON",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pipes := buildPipelines(cfg)

		var (
			result any
			err    error
		)
		switch args[0] {
		case "awards":
			result, err = pipes.Awards.Get(cmd.Context(), args[1])
		case "recs":
			result, err = pipes.Recs.Get(cmd.Context(), args[1])
		case "posts":
			result, err = pipes.Posts.Get(cmd.Context(), args[1])
		default:
			return eris.Errorf("unknown source %q", args[0])
		}
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	rootCmd.AddCommand(lookupCmd)
}
