package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vidresolve/internal/extract"
	"vidresolve/internal/ui"
)

var hostsCmd = &cobra.Command{
	Use:   "hosts",
	Short: "List supported hosts and their extraction methods",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		adapters := extract.Default().Adapters()
		if flagJSON {
			type entry struct {
				Kind    string   `json:"kind"`
				Hosts   []string `json:"hosts"`
				Methods []string `json:"methods"`
			}
			out := make([]entry, len(adapters))
			for i, a := range adapters {
				out[i] = entry{Kind: a.Kind.String(), Hosts: a.Hosts, Methods: a.MethodNames()}
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}
		fmt.Print(ui.Hosts(adapters))
		return nil
	},
}
