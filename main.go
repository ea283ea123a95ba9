package main

import (
	"fmt"
	"os"

	"knightarena/internal/cmd"
	"knightarena/server"
)

// knightarena 入口：单进程单对局，对局结束即退出
func main() {
	if err := cmd.Root().Execute(); err != nil {
		server.Log.Errorw("exiting", "error", err)
		server.SyncLogger()
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
