package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/petbrain/amw"
	"github.com/petbrain/amw/mapfs"
)

var (
	checkCmd = &cobra.Command{
		Use:   "check file...",
		Short: "Parse AMW files and report syntax errors",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				_ = cmd.Help()
				return errors.New("need at least one file to check")
			}
			logger := logrus.StandardLogger()

			set, err := amw.ParseFilesystems([]fs.FS{mapfs.New(args...)})
			if err != nil {
				return err
			}
			for _, f := range set.Files {
				logger.Debugf("parsed %s", f.Path)
			}
			if err := set.Err(); err != nil {
				fmt.Print(err.Error())
				return errors.New("syntax errors found")
			}
			fmt.Printf("%d file(s) OK\n", len(set.Files))
			return nil
		},
	}
)

func init() {
	rootCmd.AddCommand(checkCmd)
}
