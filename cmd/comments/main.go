package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/loviiin/argus-comments/internal/app"
	"github.com/loviiin/argus-comments/internal/browser"
	"github.com/loviiin/argus-comments/internal/comment"
	"github.com/loviiin/argus-comments/internal/platform"
	"github.com/loviiin/argus-comments/internal/scrape"
	"github.com/loviiin/argus-comments/pkg/config"
	"github.com/redis/go-redis/v9"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
)

func usage() {
	fmt.Fprintf(os.Stderr, `Uso:
  argus-comments [flags] <id | url | link curto>
  argus-comments login  -platform <tiktok|douyin>
  argus-comments logout -platform <tiktok|douyin>

Flags:
`)
	flag.PrintDefaults()
}

func main() {
	cfg := config.LoadConfig()
	logger := log.New(os.Stderr, "", log.LstdFlags)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "login", "logout":
			os.Exit(runSession(ctx, cfg, logger, os.Args[1], os.Args[2:]))
		}
	}

	flag.Usage = usage
	platformName := flag.String("platform", cfg.App.DefaultPlatform, "plataforma usada para ids numéricos")
	out := flag.String("out", "", "arquivo de saída (padrão: stdout)")
	quiet := flag.Bool("quiet", false, "não mostra progresso nem logs")
	headless := flag.Bool("headless", cfg.Browser.Headless, "roda o navegador sem janela")
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}
	cfg.App.DefaultPlatform = *platformName
	cfg.Browser.Headless = *headless
	if *quiet {
		logger.SetOutput(io.Discard)
	}

	store, err := app.NewSessionStore(cfg, redisIfNeeded(cfg))
	if err != nil {
		logger.Fatalf("sessões: %v", err)
	}
	scraper := app.NewScraper(cfg, store, logger)

	var progress scrape.ProgressFunc
	if !*quiet {
		progress = func(e scrape.Event) {
			switch e.Stage {
			case scrape.StagePage:
				fmt.Fprintf(os.Stderr, "%s página %d: %d comentários, %d respostas\n", cyan("›"), e.Page, e.Comments, e.Replies)
			case scrape.StageAuth:
				fmt.Fprintf(os.Stderr, "%s %s\n", yellow("🔒"), e.Message)
			}
		}
	}

	start := time.Now()
	res, err := scraper.Scrape(ctx, flag.Arg(0), progress)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", red("erro:"), err)
		os.Exit(1)
	}

	if err := writeJSON(*out, res); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", red("erro:"), err)
		os.Exit(1)
	}
	if !*quiet {
		printSummary(res, time.Since(start))
	}
	if res.NeedsAuth {
		os.Exit(3)
	}
}

func redisIfNeeded(cfg *config.Config) *redis.Client {
	if cfg.Session.Backend != "redis" {
		return nil
	}
	return app.NewRedis(cfg)
}

func runSession(ctx context.Context, cfg *config.Config, logger *log.Logger, cmd string, args []string) int {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	name := fs.String("platform", cfg.App.DefaultPlatform, "plataforma")
	timeout := fs.Duration("timeout", 10*time.Minute, "tempo máximo para concluir o login")
	fs.Parse(args)

	p, ok := platform.Lookup(*name)
	if !ok {
		fmt.Fprintf(os.Stderr, "%s plataforma desconhecida %q (disponíveis: %v)\n", red("erro:"), *name, platform.Names())
		return 2
	}
	store, err := app.NewSessionStore(cfg, redisIfNeeded(cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", red("erro:"), err)
		return 1
	}

	if cmd == "logout" {
		if err := store.Clear(ctx, p.Name); err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", red("erro:"), err)
			return 1
		}
		fmt.Fprintf(os.Stderr, "%s sessão de %s removida\n", green("✓"), p.Name)
		return 0
	}

	if err := browser.Login(ctx, p, store, app.BrowserOptions(cfg, logger), *timeout); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", red("erro:"), err)
		return 1
	}
	fmt.Fprintf(os.Stderr, "%s sessão de %s salva\n", green("✓"), p.Name)
	return 0
}

func writeJSON(path string, res *comment.Comments) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func printSummary(res *comment.Comments, took time.Duration) {
	if res.NeedsAuth {
		fmt.Fprintf(os.Stderr, "%s %s\n", yellow("login necessário:"), res.AuthMessage)
		return
	}
	replies := res.Total() - len(res.Comments)
	fmt.Fprintf(os.Stderr, "%s %s\n", green("✓"), res.Caption)
	fmt.Fprintf(os.Stderr, "  %s comentários, %s respostas em %v\n",
		cyan(len(res.Comments)), cyan(replies), took.Round(time.Millisecond))
}
