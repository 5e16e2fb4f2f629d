package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/yeisme/docshelf/pkg/internal/storage/db"
	"github.com/yeisme/docshelf/pkg/internal/storage/kv"
	"github.com/yeisme/docshelf/pkg/internal/storage/mq"
)

var backendsCmd = &cobra.Command{
	Use:     "backends",
	Short:   "list registered database dialects, kv types and mq types",
	Aliases: []string{"be"},
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()

		printTypes(out, "database types", db.GetRegisteredDBTypes())
		printTypes(out, "kv types", kv.GetRegisteredKVTypes())
		printTypes(out, "mq types", mq.GetRegisteredMQTypes())
	},
}

func printTypes[T ~string](w io.Writer, title string, types []T) {
	fmt.Fprintf(w, "Registered %s:\n", title)

	for _, t := range types {
		fmt.Fprintln(w, "   - "+string(t))
	}
}

// registerBackendsCommands 注册后端列表命令.
func registerBackendsCommands() {
	rootCmd.AddCommand(backendsCmd)
}
