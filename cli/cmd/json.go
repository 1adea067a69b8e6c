package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/petbrain/amw"
	"github.com/petbrain/amw/amwparser"
)

var (
	fromJSON bool

	jsonCmd = &cobra.Command{
		Use:   "json file",
		Short: "Parse an AMW file and write it as canonical JSON to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				_ = cmd.Help()
				return errors.New("need to specify argument <file>")
			}
			value, err := parseOne(args[0], fromJSON)
			if err != nil {
				return err
			}
			if err := amwparser.EncodeJSON(os.Stdout, value); err != nil {
				return err
			}
			fmt.Println()
			return nil
		},
	}
)

func parseOne(path string, pureJSON bool) (amwparser.Value, error) {
	if !pureJSON {
		return amw.ParseFile(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return amw.ParseJSON(path, f)
}

func init() {
	jsonCmd.Flags().BoolVar(&fromJSON, "from-json", false, "treat the input as pure JSON instead of AMW")
	rootCmd.AddCommand(jsonCmd)
}
