// Package main is the docqa CLI entry point.
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/docqa/internal/cli"
	"github.com/hyperjump/docqa/internal/config"
	"github.com/hyperjump/docqa/internal/embedding"
	"github.com/hyperjump/docqa/internal/extract"
	"github.com/hyperjump/docqa/internal/indexer"
	"github.com/hyperjump/docqa/internal/llm"
	"github.com/hyperjump/docqa/internal/models"
	"github.com/hyperjump/docqa/internal/rag"
	"github.com/hyperjump/docqa/internal/server"
	"github.com/hyperjump/docqa/internal/session"
	"github.com/hyperjump/docqa/internal/storage"
	"github.com/hyperjump/docqa/internal/vector"
	"github.com/hyperjump/docqa/internal/watcher"
	"github.com/hyperjump/docqa/pkg/utils"
)

var version = "dev"

const (
	defaultConfigPath = "/usr/local/etc/docqa/config.yaml"
	defaultServerURL  = "http://localhost:8080"

	// mockEmbeddingModel selects the local deterministic embedder instead of the remote API.
	mockEmbeddingModel = "mock"
)

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development). When neither exists,
// built-in defaults are used with paths relative to the current directory.
// A .env file next to the config and in the current directory is loaded first.
// Returns the config and the path that was actually loaded ("" for defaults).
func loadConfig(path string) (*config.Config, string, error) {
	cwd, cwdErr := os.Getwd()
	if cwdErr == nil {
		if err := config.LoadDotEnv(filepath.Join(cwd, ".env"), filepath.Join(filepath.Dir(path), ".env")); err != nil {
			return nil, "", err
		}
	}
	if path == defaultConfigPath {
		if cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) && cwdErr == nil {
			return config.Default(cwd), "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "chat":
		runChat()
	case "ingest":
		runIngest()
	case "ask":
		runAsk()
	case "status":
		runStatus()
	case "clear":
		runClear()
	case "prompt":
		runPrompt()
	case "version", "--version", "-v":
		fmt.Printf("docqa version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (routing decisions, file ingestion, etc.)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.String("variant", cfg.Assistant.Variant),
		zap.Bool("debug", debugMode),
	)

	var watchSvc *watcher.Watcher
	components, err := initializeComponents(cfg, logger, session.WithClearHook(func() {
		// Inbox documents are re-ingested into the fresh index.
		if watchSvc != nil {
			watchSvc.Forget()
			go watchSvc.SyncExistingFiles()
		}
	}))
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()
	components.Index.Load(context.Background())

	watchSvc = watcher.NewWatcher(
		cfg.Watch.Directories,
		cfg.Watch.RecursiveOrDefault(),
		components.Indexer,
		watcher.WithLogger(logger),
		watcher.WithResultHandler(func(path string, res *models.IngestResult) {
			if res.Error != "" {
				logger.Warn("watch ingest failed", zap.String("path", path), zap.String("error", res.Error))
			}
		}),
	)
	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if err := watchSvc.Start(watchCtx); err != nil {
		logger.Fatal("Failed to start watcher", zap.Error(err))
	}
	defer watchSvc.Stop()
	go watchSvc.SyncExistingFiles()

	srv := server.NewServer(
		components.Index,
		components.Router,
		components.Indexer,
		components.Sessions,
		cfg,
		logger,
		server.WithWatchService(watchSvc, resolvedConfigPath),
	)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runChat() {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewConsoleLogger(cfg.Debug || *debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer components.Close()

	if err := chat(context.Background(), os.Stdin, os.Stdout, components, cfg.Assistant.Variant); err != nil {
		fmt.Fprintf(os.Stderr, "Chat failed: %v\n", err)
		os.Exit(1)
	}
}

// chat runs an interactive session: lines are questions, "/upload <paths>"
// ingests PDFs and "/quit" (or end of input) ends the session. Starting and
// ending the session both clear the index.
func chat(ctx context.Context, in io.Reader, out io.Writer, c *Components, variant string) error {
	sess, err := c.Sessions.Start()
	if err != nil {
		fmt.Fprintf(out, "Warning: previous documents could not be fully removed: %v\n", err)
	}
	fmt.Fprintf(out, "docqa %s assistant. Ask a question, /upload <file.pdf|dir>... to add documents, /quit to exit.\n", variant)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/quit" || line == "/exit":
			return endChat(out, c.Sessions, sess.ID)
		case strings.HasPrefix(line, "/upload"):
			paths := strings.Fields(strings.TrimPrefix(line, "/upload"))
			if len(paths) == 0 {
				fmt.Fprintln(out, "Usage: /upload <file.pdf|dir>...")
				continue
			}
			sess.Lock()
			resp := c.Indexer.IngestPaths(ctx, paths)
			sess.Unlock()
			_ = cli.WriteIngestResponse(out, resp, cli.OutputText)
		default:
			sess.Lock()
			answer, err := c.Router.Route(ctx, line, sess.History)
			sess.Unlock()
			if err != nil {
				fmt.Fprintf(out, "An error occurred: %v\n\nPlease try again or rephrase your question.\n", err)
				continue
			}
			_ = cli.WriteAnswer(out, answer, cli.OutputText)
		}
	}
	if err := scanner.Err(); err != nil {
		_ = endChat(out, c.Sessions, sess.ID)
		return err
	}
	return endChat(out, c.Sessions, sess.ID)
}

func endChat(out io.Writer, sessions *session.Manager, id string) error {
	if err := sessions.End(id); err != nil {
		fmt.Fprintf(out, "\nWarning: session documents could not be fully removed: %v\n", err)
		return nil
	}
	fmt.Fprintln(out, "\nSession data cleared.")
	return nil
}

// argsReorder moves any flags (and their values) that appear after the
// positional arguments to the front so that flag.Parse() sees them. Go's flag
// package stops at the first non-flag argument.
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

// buildQuery joins all positional args with spaces so multi-word questions
// work the same with or without shell quoting.
func buildQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func parseOutput(s string) cli.OutputFormat {
	format, err := cli.ParseOutputFormat(s)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return format
}

// ensureSession returns id, or starts a new session on the server when id is
// empty. Starting a session clears the server's index.
func ensureSession(serverURL, id string) string {
	if id != "" {
		return id
	}
	started, warning, err := startSessionViaHTTP(serverURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Start session failed: %v\n", err)
		os.Exit(1)
	}
	if warning != "" {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", warning)
	}
	fmt.Fprintf(os.Stderr, "session: %s\n", started)
	return started
}

func runIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	serverURL := fs.String("server", defaultServerURL, "server URL")
	sessionID := fs.String("session", "", "session id (empty = start a new session, which clears the index)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(argsReorder(os.Args[2:]))

	if fs.NArg() < 1 {
		fmt.Println("Usage: docqa ingest [flags] <file.pdf|dir>...")
		os.Exit(1)
	}
	format := parseOutput(*outputFormat)
	files, err := collectPDFs(fs.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ingest failed: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "No files to upload")
		os.Exit(1)
	}
	id := ensureSession(*serverURL, *sessionID)
	resp, err := uploadViaHTTP(*serverURL, id, files)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ingest failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteIngestResponse(os.Stdout, resp, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
	if resp.Succeeded == 0 && resp.Failed > 0 {
		os.Exit(1)
	}
}

// collectPDFs expands directories into the PDFs they contain. Files named
// explicitly are kept regardless of extension so the server can report them.
func collectPDFs(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && extract.IsPDF(path, "") {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

func runAsk() {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	serverURL := fs.String("server", defaultServerURL, "server URL")
	sessionID := fs.String("session", "", "session id (empty = start a new session, which clears the index)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(argsReorder(os.Args[2:]))

	query := buildQuery(fs.Args())
	if query == "" {
		fmt.Println("Usage: docqa ask [flags] <question>")
		os.Exit(1)
	}
	format := parseOutput(*outputFormat)
	id := ensureSession(*serverURL, *sessionID)
	answer, err := askViaHTTP(*serverURL, id, query)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteAnswer(os.Stdout, answer, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (for direct mode)")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = read the persisted index directly)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])
	format := parseOutput(*outputFormat)

	var status *models.Status
	if *serverURL != "" {
		res, err := statusViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = res
	} else {
		cfg, logger := loadOffline(*configPath)
		defer logger.Sync()
		handle := offlineIndex(cfg, logger)
		handle.Load(context.Background())
		status = server.BuildStatus(handle, cfg, 0)
	}
	if err := cli.WriteStatus(os.Stdout, status, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runClear() {
	fs := flag.NewFlagSet("clear", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	cfg, logger := loadOffline(*configPath)
	defer logger.Sync()
	if err := offlineIndex(cfg, logger).Clear(); err != nil {
		fmt.Fprintf(os.Stderr, "Clear failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Index cleared: %s\n", cfg.Storage.IndexPath)
}

// runPrompt prints the prompt a question would be sent with, without calling
// the language model.
func runPrompt() {
	fs := flag.NewFlagSet("prompt", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(argsReorder(os.Args[2:]))

	query := buildQuery(fs.Args())
	if query == "" {
		fmt.Println("Usage: docqa prompt [flags] <question>")
		os.Exit(1)
	}
	cfg, logger := loadOffline(*configPath)
	defer logger.Sync()

	emb, err := newEmbedder(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize embedder: %v\n", err)
		os.Exit(1)
	}
	defer emb.Close()
	handle := newIndex(cfg, emb, logger)
	handle.Load(context.Background())
	prompts, err := rag.PromptsFor(cfg.Assistant.Variant)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	router := rag.NewRouter(handle, nil, routerOptions(cfg, prompts, logger)...)
	p, err := router.BuildPrompt(context.Background(), query, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Build prompt failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(p.Text)
}

// loadOffline loads config and a quiet logger for commands that do not talk to the server.
func loadOffline(configPath string) (*config.Config, *zap.Logger) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewConsoleLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	return cfg, logger
}

// offlineIndex opens the persisted index for inspection. It never embeds, so a
// local embedder of the configured dimension stands in for the remote one.
func offlineIndex(cfg *config.Config, logger *zap.Logger) *vector.Handle {
	return newIndex(cfg, embedding.NewMockEmbedder(cfg.Embedding.Dimensions), logger)
}

func startSessionViaHTTP(serverURL string) (id, warning string, err error) {
	resp, err := http.Post(serverURL+"/api/v1/sessions", "application/json", nil)
	if err != nil {
		return "", "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return "", "", serverError(resp)
	}
	var out struct {
		SessionID string `json:"session_id"`
		Warning   string `json:"warning"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", "", fmt.Errorf("decode response: %w", err)
	}
	return out.SessionID, out.Warning, nil
}

func askViaHTTP(serverURL, id, query string) (*models.Answer, error) {
	body, err := json.Marshal(models.MessageRequest{Query: query})
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/sessions/"+url.PathEscape(id)+"/messages", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, serverError(resp)
	}
	var answer models.Answer
	if err := json.NewDecoder(resp.Body).Decode(&answer); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &answer, nil
}

func uploadViaHTTP(serverURL, id string, files []string) (*models.IngestResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename=%q`, filepath.Base(path)))
		h.Set("Content-Type", contentType(path))
		part, err := mw.CreatePart(h)
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(data); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/sessions/"+url.PathEscape(id)+"/documents", mw.FormDataContentType(), &buf)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, serverError(resp)
	}
	var out models.IngestResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

func contentType(path string) string {
	if extract.IsPDF(path, "") {
		return extract.MIMETypePDF
	}
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		return t
	}
	return "application/octet-stream"
}

func statusViaHTTP(serverURL string) (*models.Status, error) {
	resp, err := http.Get(serverURL + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, serverError(resp)
	}
	var s models.Status
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

// serverError turns a non-success response into an error, preferring the
// server's {"error": ...} message.
func serverError(resp *http.Response) error {
	b, _ := io.ReadAll(resp.Body)
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(b, &body) == nil && body.Error != "" {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, body.Error)
	}
	return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
}

// Components holds initialized services.
type Components struct {
	Embedder  embedding.Embedder
	Generator *llm.GeminiClient
	Index     *vector.Handle
	Router    *rag.Router
	Indexer   *indexer.Indexer
	Sessions  *session.Manager
}

func (c *Components) Close() {
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.Generator != nil {
		_ = c.Generator.Close()
	}
}

func newEmbedder(cfg *config.Config) (embedding.Embedder, error) {
	if cfg.Embedding.Model == mockEmbeddingModel {
		return embedding.NewMockEmbedder(cfg.Embedding.Dimensions), nil
	}
	gemini, err := embedding.NewGeminiEmbedder(embedding.GeminiConfig{
		APIKey:            cfg.EmbeddingAPIKey(),
		BaseURL:           cfg.Embedding.BaseURL,
		Model:             cfg.Embedding.Model,
		Timeout:           cfg.Embedding.Timeout,
		Dimensions:        cfg.Embedding.Dimensions,
		RequestsPerSecond: cfg.Embedding.RequestsPerSecond,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set %s or put it in .env)", err, cfg.Embedding.APIKeyEnv)
	}
	return embedding.NewCachedEmbedder(gemini, cfg.Embedding.CacheSize), nil
}

func newIndex(cfg *config.Config, emb embedding.Embedder, logger *zap.Logger) *vector.Handle {
	return vector.NewHandle(
		storage.NewSQLiteSnapshot(cfg.Storage.IndexPath),
		emb,
		vector.WithLogger(logger),
		vector.WithModelName(cfg.Embedding.Model),
	)
}

func routerOptions(cfg *config.Config, prompts rag.Prompts, logger *zap.Logger) []rag.RouterOption {
	return []rag.RouterOption{
		rag.WithPrompts(prompts),
		rag.WithTopK(cfg.RAG.TopK),
		rag.WithHistoryTurns(cfg.RAG.HistoryTurns),
		rag.WithTimeout(cfg.LLM.Timeout),
		rag.WithLogger(logger),
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger, sessionOpts ...session.ManagerOption) (*Components, error) {
	prompts, err := rag.PromptsFor(cfg.Assistant.Variant)
	if err != nil {
		return nil, err
	}
	emb, err := newEmbedder(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	gen, err := llm.NewGeminiClient(llm.Config{
		APIKey:            cfg.LLMAPIKey(),
		BaseURL:           cfg.LLM.BaseURL,
		Model:             cfg.LLM.Model,
		Temperature:       cfg.LLM.TemperatureOrDefault(),
		MaxOutputTokens:   cfg.LLM.MaxOutputTokens,
		Timeout:           cfg.LLM.Timeout,
		RequestsPerSecond: cfg.LLM.RequestsPerSecond,
	})
	if err != nil {
		_ = emb.Close()
		return nil, fmt.Errorf("failed to initialize language model: %w (set %s or put it in .env)", err, cfg.LLM.APIKeyEnv)
	}

	handle := newIndex(cfg, emb, logger)
	chunker, err := indexer.NewChunker(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	if err != nil {
		_ = emb.Close()
		_ = gen.Close()
		return nil, err
	}
	idxOpts := []indexer.IndexerOption{indexer.WithLogger(logger)}
	if prompts.Extraction != "" {
		idxOpts = append(idxOpts, indexer.WithAnalyzer(
			rag.NewAnalyzer(gen, prompts.Extraction, cfg.RAG.ExtractionChars, cfg.LLM.Timeout)))
	}
	logger.Debug("components initialized",
		zap.String("variant", prompts.Name),
		zap.String("model", gen.ModelName()),
		zap.String("embedding_model", cfg.Embedding.Model),
		zap.String("index_path", cfg.Storage.IndexPath))

	return &Components{
		Embedder:  emb,
		Generator: gen,
		Index:     handle,
		Router:    rag.NewRouter(handle, gen, routerOptions(cfg, prompts, logger)...),
		Indexer:   indexer.NewIndexer(handle, chunker, extract.NewExtractor(), idxOpts...),
		Sessions:  session.NewManager(handle, logger, sessionOpts...),
	}, nil
}

func printUsage() {
	fmt.Println(`docqa - Document-grounded question answering over your PDFs

Usage:
  docqa server [flags]                 Start the HTTP server
  docqa chat [flags]                   Interactive session in the terminal
  docqa ingest [flags] <pdf|dir>...    Upload documents to a server session
  docqa ask [flags] <question>         Ask a question in a server session
  docqa status [flags]                 Show index and configuration status
  docqa clear [flags]                  Delete the persisted index
  docqa prompt [flags] <question>      Print the prompt a question would use
  docqa version                        Show version
  docqa help                           Show this help

Server / Chat Flags:
  --config string    Config file path (default: /usr/local/etc/docqa/config.yaml,
                     falls back to ./config.yaml, then built-in defaults)
  --debug            Enable debug logging

Ingest / Ask Flags:
  --server string    Server URL (default: http://localhost:8080)
  --session string   Session id; when empty a new session is started, which clears the index
  --output string    Output format: text or json (default: text)

Status Flags:
  --config string    Config file path (for direct mode)
  --server string    Server URL. Use empty (--server "") to read the persisted index directly.
  --output string    Output format: text or json (default: text)

Chat commands:
  /upload <pdf|dir>...   Index documents for this session
  /quit                  End the session (clears the index)

Environment:
  GOOGLE_API_KEY     API key for the embedding and language models (also read from .env)

Examples:
  docqa server
  docqa chat
  docqa ingest --session 5f0c... contract.pdf statutes/
  docqa ask --session 5f0c... "What does section 302 cover?"
  docqa status --output json
  docqa prompt "Summarise the methodology"`)
}
