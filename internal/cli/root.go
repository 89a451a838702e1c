// Package cli 实现 novelctl 命令行：书库管理、检索预览与流式写作
package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"z-novel-writer/internal/config"
	"z-novel-writer/internal/domain/service"
	"z-novel-writer/internal/wire"
	"z-novel-writer/pkg/logger"
)

var (
	success = color.New(color.FgGreen).SprintFunc()
	warn    = color.New(color.FgYellow).SprintFunc()
	accent  = color.New(color.FgCyan, color.Bold).SprintFunc()
	faint   = color.New(color.Faint).SprintFunc()
)

// app 命令共享状态，在 PersistentPreRunE 中初始化
type app struct {
	configDir string
	dbPath    string
	verbose   bool
	ai        service.AIConfig

	kit     *wire.Toolkit
	cleanup func()
}

// newRootCommand 构建 novelctl 根命令，命令结束后需调用 app.close
func newRootCommand() (*cobra.Command, *app) {
	a := &app{}

	root := &cobra.Command{
		Use:   "novelctl",
		Short: "Manage books and write with retrieved context",
		Long: `novelctl manages books, worldviews, characters and chapters in a local
bbolt store, previews hybrid retrieval and streams continuations from an
OpenAI-compatible model.

Example usage:
  novelctl book add "云海纪事"
  novelctl worldview set 1 --file worldview.txt
  novelctl character add 1 Anna --desc "持剑的少女"
  novelctl search 1 -q "Anna 在哪里"
  novelctl write 1 -i "续写 Anna 登上浮空岛的场景"`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configDir, "config-dir", config.DefaultDir, "directory holding config.yaml")
	flags.StringVar(&a.dbPath, "db", "", "bbolt database path (default from config)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log debug output to stderr")
	flags.StringVar(&a.ai.APIKey, "api-key", "", "API key override")
	flags.StringVar(&a.ai.APIURL, "api-url", "", "API base URL override, used with --api-key")
	flags.StringVar(&a.ai.Model, "model", "", "chat model override")
	flags.StringVar(&a.ai.EmbeddingModel, "embedding-model", "", "embedding model override")

	root.AddCommand(
		newBookCommand(a),
		newWorldviewCommand(a),
		newCharacterCommand(a),
		newChapterCommand(a),
		newSearchCommand(a),
		newWriteCommand(a),
	)
	return root, a
}

// Execute 运行 novelctl
func Execute() {
	root, a := newRootCommand()
	err := root.Execute()
	a.close()
	if err != nil {
		os.Exit(1)
	}
}

// close 释放存储，命令失败时同样需要执行
func (a *app) close() {
	if a.cleanup != nil {
		a.cleanup()
		a.cleanup = nil
	}
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	level := "warn"
	if a.verbose {
		level = "debug"
	}
	logger.InitWithWriter(cmd.ErrOrStderr(), level, "text")

	cfg, err := config.LoadFrom(a.configDir, true)
	if err != nil {
		return err
	}
	// 命令行始终使用本地 bbolt 存储
	cfg.Storage.Driver = config.StorageDriverBolt
	if a.dbPath != "" {
		cfg.Storage.Bolt.Path = a.dbPath
	}

	// 命令行覆盖同样作用于同步向量化
	ai := wire.ProvideAIConfig(cfg).Merge(a.ai)
	cfg.AI.APIKey, cfg.AI.APIURL = ai.APIKey, ai.APIURL
	cfg.AI.Model, cfg.AI.EmbeddingModel = ai.Model, ai.EmbeddingModel

	kit, cleanup, err := wire.InitializeToolkit(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	a.kit = kit
	a.cleanup = cleanup
	return nil
}

func parseID(arg, what string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, arg)
	}
	return id, nil
}

// readText 依次取 --text、--file，二者都未提供时读标准输入
func readText(cmd *cobra.Command, text, file string) (string, error) {
	if text != "" {
		return text, nil
	}
	if file != "" {
		b, err := os.ReadFile(file)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	b, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(b), "\n"), nil
}

