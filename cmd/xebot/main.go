package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ummeaymen499/xebot/internal/api"
	"github.com/ummeaymen499/xebot/internal/auth"
	"github.com/ummeaymen499/xebot/internal/common"
	"github.com/ummeaymen499/xebot/internal/models"
	"github.com/ummeaymen499/xebot/internal/monitor"
	badgerstorage "github.com/ummeaymen499/xebot/internal/storage/badger"
	"github.com/ummeaymen499/xebot/internal/ui"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	// Command-line flags
	configFiles  configPaths // Multiple -config flags supported
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")

	// Global state
	config *common.Config
	logger arbor.ILogger
)

func init() {
	// Register custom flag for multiple config files
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func usage() {
	fmt.Fprintf(os.Stderr, `Xe-Bot — turn arXiv papers into animated explainers

Usage: xebot [flags] <command> [command flags]

Commands:
  search     Search arXiv for papers
  generate   Submit a paper for animation and monitor it to completion
  code       Generate animation code for a topic without rendering
  videos     List rendered videos on the server
  download   Download a rendered video
  jobs       Show local job history
  keys       Manage API keys (keys create)

Flags:
`)
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	// Handle version flag
	if *showVersion || *showVersionV {
		fmt.Printf("Xe-Bot version %s\n", common.GetFullVersion())
		os.Exit(0)
	}

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	// Startup sequence (REQUIRED ORDER):
	// 1. Load config (defaults -> file1 -> file2 -> ... -> env)
	// 2. Initialize logger
	// 3. Print banner
	var err error

	// Auto-discover config file if not specified
	if len(configFiles) == 0 {
		if _, err := os.Stat("xebot.toml"); err == nil {
			configFiles = append(configFiles, "xebot.toml")
		}
	}

	config, err = common.LoadFromFiles(configFiles...)
	if err != nil {
		tempLogger := arbor.NewLogger()
		tempLogger.Fatal().Strs("paths", configFiles).Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	logger = common.InitLogger(config)
	common.PrintBanner(common.GetVersion())

	// Cancel in-flight work on Ctrl+C; a second signal kills the process
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	command := flag.Arg(0)
	args := flag.Args()[1:]

	var exitCode int
	switch command {
	case "search":
		exitCode = runSearch(ctx, args)
	case "generate":
		exitCode = runGenerate(ctx, args)
	case "code":
		exitCode = runCode(ctx, args)
	case "videos":
		exitCode = runVideos(ctx, args)
	case "download":
		exitCode = runDownload(ctx, args)
	case "jobs":
		exitCode = runJobs(args)
	case "keys":
		exitCode = runKeys(ctx, args)
	default:
		fmt.Fprintln(os.Stderr, ui.ErrorMsg("unknown command: %s", command))
		usage()
		exitCode = 2
	}
	os.Exit(exitCode)
}

// newClient builds an authenticated API client, issuing a fresh key from
// the service when the configuration carries none.
func newClient(ctx context.Context) (*api.Client, error) {
	opts := []api.ClientOption{
		api.WithBaseURL(config.Server.BaseURL),
		api.WithHTTPClient(&http.Client{Timeout: config.Server.RequestTimeoutDuration()}),
		api.WithLogger(logger),
		api.WithRateLimit(config.Server.RateLimit),
	}

	store := auth.NewStore(config.Auth.APIKey, config.Auth.KeyName, config.Auth.Email, logger)
	bootstrap := api.NewClient("", opts...)
	key, err := store.Acquire(ctx, bootstrap)
	if err != nil {
		return nil, err
	}
	return api.NewClient(key, opts...), nil
}

func runSearch(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	maxResults := fs.Int("n", 5, "Maximum number of results")
	fs.Parse(args)

	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, ui.ErrorMsg("usage: xebot search [-n N] <query>"))
		return 2
	}
	query := strings.Join(fs.Args(), " ")

	client, err := newClient(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create API client")
		return 1
	}

	papers, err := client.SearchPapers(ctx, query, *maxResults)
	if err != nil {
		logger.Error().Err(err).Str("query", query).Msg("Search failed")
		return 1
	}
	if len(papers) == 0 {
		fmt.Println(ui.WarnMsg("no papers found for: %s", query))
		return 0
	}

	fmt.Println(ui.RenderPapers(papers))
	return 0
}

func runGenerate(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	quality := fs.String("quality", "low", "Render quality (low, medium, high)")
	codeOnly := fs.Bool("code-only", false, "Generate animation code without rendering videos")
	noRender := fs.Bool("no-render", false, "Alias for -code-only")
	webhook := fs.String("webhook", "", "Webhook URL notified when the job finishes")
	fs.Parse(args)
	render := !*codeOnly && !*noRender

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, ui.ErrorMsg("usage: xebot generate [flags] <arxiv_id>"))
		return 2
	}
	arxivID := fs.Arg(0)

	client, err := newClient(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create API client")
		return 1
	}

	// History is best-effort: a locked or corrupt local database never
	// blocks a submission.
	history := openHistory()
	if history != nil {
		defer history.Close()
	}

	submitted, err := client.SubmitJob(ctx, &api.GenerateRequest{
		ArxivID:    arxivID,
		Quality:    *quality,
		Render:     render,
		WebhookURL: *webhook,
	})
	if err != nil {
		logger.Error().Err(err).Str("arxiv_id", arxivID).Msg("Job submission failed")
		return 1
	}

	fmt.Println(ui.SuccessMsg("job accepted: %s", submitted.JobID))
	if submitted.EstimatedTime != "" {
		fmt.Println(ui.Muted("estimated time: " + submitted.EstimatedTime))
	}
	fmt.Println()

	if history != nil {
		record := &models.JobRecord{
			JobID:       submitted.JobID,
			ArxivID:     arxivID,
			Quality:     *quality,
			SubmittedAt: time.Now().UTC(),
		}
		if err := history.Storage.SaveJob(ctx, record); err != nil {
			logger.Warn().Err(err).Msg("Failed to record job in history")
		}
	}

	outcome := monitorJob(ctx, client, submitted.JobID)

	if history != nil {
		if err := history.Storage.RecordOutcome(ctx, submitted.JobID, outcome); err != nil {
			logger.Warn().Err(err).Msg("Failed to record job outcome in history")
		}
	}

	switch outcome.Kind {
	case models.OutcomeSucceeded:
		fmt.Println(ui.SuccessMsg("animation complete"))
		if outcome.Result != nil {
			if outcome.Result.PaperTitle != "" {
				fmt.Println(ui.Bold(outcome.Result.PaperTitle))
			}
			if len(outcome.Result.Videos) > 0 {
				fmt.Println(ui.RenderVideos(outcome.Result.Videos))
			}
		}
		return 0
	case models.OutcomeTimedOut:
		fmt.Println(ui.ErrorMsg("job timed out: still processing after the polling budget; check back with the jobs command"))
		return 1
	default:
		fmt.Println(ui.ErrorMsg("job failed: %s", outcome.Reason))
		return 1
	}
}

// monitorJob polls the job to completion, redrawing the pipeline view in
// place on every snapshot.
func monitorJob(ctx context.Context, client *api.Client, jobID string) models.PollOutcome {
	pipeline := models.NewPipeline()
	fmt.Print(ui.RenderPipeline(pipeline))

	onSnapshot := func(snap *models.StatusSnapshot) {
		pipeline = monitor.ApplySnapshot(pipeline, snap)
		// Move the cursor back over the previous render and repaint
		fmt.Printf("\033[%dA", ui.PipelineLineCount(pipeline))
		fmt.Print(ui.RenderPipeline(pipeline))
	}

	session := monitor.NewSession(client, jobID, onSnapshot, monitor.Options{
		PollInterval:         config.Monitor.PollIntervalDuration(),
		MaxAttempts:          config.Monitor.MaxAttempts,
		MaxConsecutiveErrors: config.Monitor.MaxConsecutiveErrors,
		BackoffMultiplier:    config.Monitor.BackoffMultiplier,
	})
	session.Start(ctx)

	outcome, ok := session.Wait()
	fmt.Println()
	if !ok {
		// Interrupted: the job keeps running server-side
		return models.Failed("monitoring interrupted")
	}
	return outcome
}

func runCode(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("code", flag.ExitOnError)
	style := fs.String("style", "", "Animation style (explanatory, dramatic, minimal)")
	concepts := fs.String("concepts", "", "Comma-separated key concepts to emphasize")
	output := fs.String("o", "", "Write the generated code to a file instead of stdout")
	fs.Parse(args)

	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, ui.ErrorMsg("usage: xebot code [flags] <topic>"))
		return 2
	}
	topic := strings.Join(fs.Args(), " ")

	client, err := newClient(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create API client")
		return 1
	}

	req := &api.CodeRequest{Topic: topic, Style: *style}
	if *concepts != "" {
		req.KeyConcepts = strings.Split(*concepts, ",")
	}

	code, err := client.GenerateCode(ctx, req)
	if err != nil {
		logger.Error().Err(err).Str("topic", topic).Msg("Code generation failed")
		return 1
	}

	if *output != "" {
		if err := os.WriteFile(*output, []byte(code), 0644); err != nil {
			logger.Error().Err(err).Str("path", *output).Msg("Failed to write code file")
			return 1
		}
		fmt.Println(ui.SuccessMsg("wrote %s", *output))
		return 0
	}
	fmt.Println(code)
	return 0
}

func runVideos(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("videos", flag.ExitOnError)
	fs.Parse(args)

	client, err := newClient(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create API client")
		return 1
	}

	videos, err := client.ListVideos(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to list videos")
		return 1
	}
	if len(videos) == 0 {
		fmt.Println(ui.Muted("no videos rendered yet"))
		return 0
	}
	fmt.Println(ui.RenderVideos(videos))
	return 0
}

func runDownload(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("download", flag.ExitOnError)
	output := fs.String("o", "", "Output file path (defaults to the URL's file name)")
	fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, ui.ErrorMsg("usage: xebot download [-o path] <video_url>"))
		return 2
	}
	videoURL := fs.Arg(0)

	savePath := *output
	if savePath == "" {
		savePath = filepath.Base(videoURL)
	}

	client, err := newClient(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create API client")
		return 1
	}

	if err := client.DownloadVideo(ctx, videoURL, savePath); err != nil {
		logger.Error().Err(err).Str("url", videoURL).Msg("Download failed")
		return 1
	}
	fmt.Println(ui.SuccessMsg("saved %s", savePath))
	return 0
}

func runJobs(args []string) int {
	fs := flag.NewFlagSet("jobs", flag.ExitOnError)
	limit := fs.Int("n", 20, "Maximum number of history entries")
	fs.Parse(args)

	history := openHistory()
	if history == nil {
		fmt.Println(ui.WarnMsg("job history unavailable"))
		return 1
	}
	defer history.Close()

	records, err := history.Storage.ListJobs(context.Background(), *limit)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to read job history")
		return 1
	}
	if len(records) == 0 {
		fmt.Println(ui.Muted("no jobs submitted yet"))
		return 0
	}
	fmt.Println(ui.RenderHistory(records))
	return 0
}

func runKeys(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("keys", flag.ExitOnError)
	name := fs.String("name", "", "Name to register the key under")
	email := fs.String("email", "", "Contact email for the key")
	fs.Parse(args)

	if fs.NArg() != 1 || fs.Arg(0) != "create" {
		fmt.Fprintln(os.Stderr, ui.ErrorMsg("usage: xebot keys create -name NAME [-email EMAIL]"))
		return 2
	}
	keyName := *name
	if keyName == "" {
		keyName = config.Auth.KeyName
	}
	keyEmail := *email
	if keyEmail == "" {
		keyEmail = config.Auth.Email
	}

	client := api.NewClient("",
		api.WithBaseURL(config.Server.BaseURL),
		api.WithHTTPClient(&http.Client{Timeout: config.Server.RequestTimeoutDuration()}),
		api.WithLogger(logger),
		api.WithRateLimit(config.Server.RateLimit),
	)

	grant, err := client.CreateAPIKey(ctx, keyName, keyEmail)
	if err != nil {
		logger.Error().Err(err).Msg("Key creation failed")
		return 1
	}

	fmt.Println(ui.SuccessMsg("API key created"))
	fmt.Printf("  %s %s\n", ui.Bold("key:"), grant.APIKey)
	fmt.Printf("  %s %s\n", ui.Bold("tier:"), grant.Tier)
	if grant.RateLimit != "" {
		fmt.Printf("  %s %s\n", ui.Bold("rate limit:"), grant.RateLimit)
	}
	fmt.Println(ui.WarnMsg("store this key in xebot.toml; it is shown only once"))
	return 0
}

// historyHandle pairs the badger connection with its storage facade so
// callers can close both together.
type historyHandle struct {
	db      *badgerstorage.HistoryDB
	Storage *badgerstorage.HistoryStorage
}

func (h *historyHandle) Close() {
	if err := h.db.Close(); err != nil {
		logger.Warn().Err(err).Msg("Failed to close history database")
	}
}

func openHistory() *historyHandle {
	db, err := badgerstorage.NewHistoryDB(logger, &config.Storage.Badger)
	if err != nil {
		logger.Warn().Err(err).Str("path", config.Storage.Badger.Path).Msg("Job history disabled")
		return nil
	}
	return &historyHandle{db: db, Storage: badgerstorage.NewHistoryStorage(db, logger)}
}
