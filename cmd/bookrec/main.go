// Command bookrec 浏览书籍目录、记录评分并生成推荐。
//
//	bookrec serve                          # 启动 HTTP API
//	bookrec recommend --rate 1=5 --rate 6=4
//	bookrec --remote http://localhost:5000/api similar 2 -n 3
//
// 不带 --remote 时在进程内运行推荐引擎。
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rushteam/bookrec/catalog"
	"github.com/rushteam/bookrec/client"
	"github.com/rushteam/bookrec/conf"
	"github.com/rushteam/bookrec/pkg/logging"
	"github.com/rushteam/bookrec/recommend"
	"github.com/rushteam/bookrec/store"
)

// app 保存全局 flag 和加载后的配置。
type app struct {
	configPath string
	remote     string
	token      string
	logLevel   string
	jsonOut    bool

	cfg *conf.Config
	out io.Writer
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "bookrec",
		Short:         "Technical book catalog and recommender",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "Config file (default: $BOOKREC_CONFIG or ./bookrec.yaml)")
	pf.StringVar(&a.remote, "remote", "", "Use the HTTP API at this base URL instead of the in-process engine")
	pf.StringVar(&a.token, "token", "", "Bearer token sent to the remote API")
	pf.StringVar(&a.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	pf.BoolVar(&a.jsonOut, "json", false, "Print JSON instead of tables")

	root.AddCommand(
		a.serveCmd(),
		a.booksCmd(),
		a.bookCmd(),
		a.categoriesCmd(),
		a.statsCmd(),
		a.recommendCmd(),
		a.similarCmd(),
		a.rateCmd(),
		a.ratingsCmd(),
		a.unrateCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	a.out = cmd.OutOrStdout()
	cfg, err := conf.Load(a.configPath)
	if err != nil {
		return err
	}
	switch {
	case a.logLevel != "":
		cfg.Log.Level = a.logLevel
	case cmd.Name() != "serve":
		// 一次性命令只输出警告以上的日志
		cfg.Log.Level = "warn"
	}
	if a.remote != "" {
		cfg.Client.BaseURL = a.remote
	}
	if a.token != "" {
		cfg.Client.Token = a.token
	}
	cfg.Log.Output = cmd.ErrOrStderr()
	logging.Init(cfg.Log)
	a.cfg = cfg
	return nil
}

// loadCatalog 读取配置中的目录文件，未配置时使用内置目录。
func (a *app) loadCatalog() (*catalog.Catalog, error) {
	if a.cfg.Catalog.Path == "" {
		return catalog.Builtin(), nil
	}
	return catalog.LoadFile(a.cfg.Catalog.Path)
}

func (a *app) engineOptions(ctx context.Context) (recommend.Options, func(), error) {
	cat, err := a.loadCatalog()
	if err != nil {
		return recommend.Options{}, nil, err
	}
	kv, err := store.Open(ctx, a.cfg.Store)
	if err != nil {
		return recommend.Options{}, nil, fmt.Errorf("open store: %w", err)
	}
	opts := recommend.Options{
		Catalog:     cat,
		Store:       kv,
		PipelineDir: a.cfg.Recommend.PipelineDir,
	}
	return opts, func() { _ = kv.Close() }, nil
}

// recommender 返回远程客户端或进程内实现。
func (a *app) recommender(ctx context.Context) (client.Recommender, func(), error) {
	if a.remote != "" {
		c := client.New(a.cfg.Client)
		return c, func() { _ = c.Close() }, nil
	}
	opts, closeStore, err := a.engineOptions(ctx)
	if err != nil {
		return nil, nil, err
	}
	l, err := client.NewLocal(ctx, opts)
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	return l, func() {
		_ = l.Close()
		closeStore()
	}, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
