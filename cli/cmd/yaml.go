package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/petbrain/amw"
	"github.com/petbrain/amw/amwparser"
)

var (
	yamlCmd = &cobra.Command{
		Use:   "yaml file",
		Short: "Parse an AMW file and write it as YAML to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				_ = cmd.Help()
				return errors.New("need to specify argument <file>")
			}
			value, err := amw.ParseFile(args[0])
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(os.Stdout)
			enc.SetIndent(2)
			if err := enc.Encode(amwparser.YAMLNode(value)); err != nil {
				return err
			}
			return enc.Close()
		},
	}
)

func init() {
	rootCmd.AddCommand(yamlCmd)
}
