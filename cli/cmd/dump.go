package cmd

import (
	"errors"

	"github.com/alecthomas/repr"
	"github.com/spf13/cobra"

	"github.com/petbrain/amw"
)

var (
	dumpCmd = &cobra.Command{
		Use:   "dump file",
		Short: "Parse an AMW file and dump the value tree for debugging",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				_ = cmd.Help()
				return errors.New("need to specify argument <file>")
			}
			value, err := amw.ParseFile(args[0])
			if err != nil {
				return err
			}
			repr.Println(value)
			return nil
		},
	}
)

func init() {
	rootCmd.AddCommand(dumpCmd)
}
