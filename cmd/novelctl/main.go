// Package main novelctl 命令行入口
package main

import (
	"github.com/joho/godotenv"

	"z-novel-writer/internal/cli"
	einoobs "z-novel-writer/internal/observability/eino"
)

func main() {
	_ = godotenv.Load()
	einoobs.Init()
	cli.Execute()
}
