package commands

import (
	"bufio"
	"errors"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/chenzhangda16/paygraph/internal/paygraph/archive"
	"github.com/chenzhangda16/paygraph/internal/paygraph/out"
)

func NewDumpCommand() *cobra.Command {
	var (
		path   string
		stream string
	)

	command := &cobra.Command{
		Use:   "dump",
		Short: "Print archived median records as JSON lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				return errors.New("--archive is required")
			}
			a, err := archive.Open(path)
			if err != nil {
				return err
			}
			defer a.Close()

			bw := bufio.NewWriter(cmd.OutOrStdout())
			enc := json.NewEncoder(bw)
			if err := a.Scan(stream, func(r out.MedianRecord) error {
				return enc.Encode(r)
			}); err != nil {
				return err
			}
			return bw.Flush()
		},
	}
	command.Flags().StringVar(&path, "archive", "", "RocksDB archive directory")
	command.Flags().StringVar(&stream, "stream", "", "only this stream, default all")
	return command
}
