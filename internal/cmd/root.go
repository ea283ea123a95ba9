package cmd

import (
	"github.com/spf13/cobra"
)

// Version 构建时可通过 -ldflags 覆盖
var Version = "v0.1.0"

// Root knightarena 命令树
func Root() *cobra.Command {
	root := &cobra.Command{
		Use:   "knightarena",
		Short: "Authoritative server for a two-player knight-move board game",
		Args:  cobra.NoArgs,

		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.SetVersionTemplate(Version + "\n")
	root.Version = Version

	root.AddCommand(Serve())
	root.AddCommand(VersionCmd())

	return root
}

// VersionCmd 输出版本号
func VersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the server version",
		Args:  cobra.NoArgs,

		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(Version)
		},
	}
}
