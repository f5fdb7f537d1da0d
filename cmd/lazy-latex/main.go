package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/EricWay1024/lazy-latex/internal/backend"
	"github.com/EricWay1024/lazy-latex/internal/cache"
	"github.com/EricWay1024/lazy-latex/internal/config"
	"github.com/EricWay1024/lazy-latex/internal/convert"
	"github.com/EricWay1024/lazy-latex/internal/document"
	"github.com/EricWay1024/lazy-latex/internal/logger"
	"github.com/EricWay1024/lazy-latex/internal/report"
	"github.com/EricWay1024/lazy-latex/internal/settings"
	"github.com/EricWay1024/lazy-latex/internal/types"
)

var cli struct {
	Verbose    bool   `short:"v" help:"Enable debug logging."`
	ConfigFile string `help:"Path to the configuration file." type:"path"`

	Convert   ConvertCmd   `cmd:"" help:"Convert every marker region in a file until none remain."`
	Line      LineCmd      `cmd:"" help:"Convert the marker regions on one line of a file."`
	Selection SelectionCmd `cmd:"" help:"Convert text read from stdin and print the result."`
	Save      SaveCmd      `cmd:"" help:"Write a file through the configured save-time conversion mode."`
	Config    ConfigCmd    `cmd:"" help:"Show or change configuration."`
	Report    ReportCmd    `cmd:"" help:"List recorded conversion failures."`
}

// app carries the resources shared by all commands.
type app struct {
	manager *config.Manager
}

func main() {
	kctx := kong.Parse(&cli,
		kong.Name("lazy-latex"),
		kong.Description("Turn ;;marker;; regions in LaTeX and Markdown files into generated math and text."),
		kong.UsageOnError(),
	)

	logCfg := logger.DefaultConfig()
	if cli.Verbose {
		logCfg.Level = logger.LevelDebug
	}
	if err := logger.Init(logCfg); err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
	}
	defer logger.Close()

	manager, err := config.NewManager(cli.ConfigFile)
	kctx.FatalIfErrorf(err)
	kctx.FatalIfErrorf(manager.Load())

	kctx.FatalIfErrorf(kctx.Run(&app{manager: manager}))
}

// configFor layers the per-project settings file next to docPath, if any,
// over the global configuration.
func (a *app) configFor(docPath string) *types.Config {
	cfg := a.manager.GetConfig()
	if docPath == "" {
		return cfg
	}

	proj := settings.NewManagerForDocument(docPath)
	if err := proj.Load(); err != nil {
		logger.Warn("project settings unreadable, using global config",
			logger.String("path", proj.GetFilePath()), logger.Err(err))
		return cfg
	}
	return proj.Apply(cfg)
}

// backendOptions assembles the backend connection options. Credentials and
// the base URL go through the manager so its environment fallbacks apply;
// the model comes from the layered config because a project settings file
// may override it per document.
func (a *app) backendOptions(cfg *types.Config) backend.Options {
	opts := backend.Options{
		Provider: cfg.Provider,
		APIKey:   a.manager.GetAPIKey(),
		BaseURL:  cfg.BaseURL,
		Model:    cfg.Model,
	}
	if opts.BaseURL == "" {
		opts.BaseURL = a.manager.GetBaseURL()
	}
	return opts
}

// buildEngine assembles the conversion engine for one document: backend,
// optional completion cache and failure recorder. The returned closer
// releases the cache store.
func (a *app) buildEngine(ctx context.Context, cfg *types.Config, kind types.DocumentKind, docName string) (*convert.Engine, func(), error) {
	b, err := backend.New(ctx, a.backendOptions(cfg))
	if err != nil {
		return nil, nil, err
	}

	closer := func() {}
	if cfg.CacheEnabled {
		store, err := cache.Open(cfg.CachePath)
		if err != nil {
			logger.Warn("completion cache unavailable", logger.Err(err))
		} else {
			b = cache.Wrap(b, store)
			closer = func() { store.Close() }
		}
	}

	engine := convert.NewEngine(b, cfg, kind)
	engine.SetDocumentName(docName)
	if recorder, err := report.NewRecorder(""); err == nil {
		engine.SetRecorder(recorder)
	} else {
		logger.Warn("failure recorder unavailable", logger.Err(err))
	}
	return engine, closer, nil
}

// ConvertCmd runs the whole-document convergence loop over a file.
type ConvertCmd struct {
	File string `arg:"" type:"existingfile" help:"File to convert."`
}

func (c *ConvertCmd) Run(a *app) error {
	ctx := context.Background()
	buf, err := document.OpenFile(c.File)
	if err != nil {
		return err
	}

	cfg := a.configFor(c.File)
	engine, closer, err := a.buildEngine(ctx, cfg, buf.Kind(), c.File)
	if err != nil {
		return err
	}
	defer closer()

	converted, err := engine.ConvertDocument(ctx, buf)
	if err != nil {
		return err
	}
	if !converted {
		fmt.Println("nothing to convert")
		return nil
	}
	if err := buf.Flush(); err != nil {
		return err
	}
	fmt.Printf("converted %s\n", c.File)
	return nil
}

// LineCmd converts the marker regions on a single line.
type LineCmd struct {
	File string `arg:"" type:"existingfile" help:"File to edit."`
	Line int    `arg:"" help:"1-based line number."`
}

func (c *LineCmd) Run(a *app) error {
	ctx := context.Background()
	buf, err := document.OpenFile(c.File)
	if err != nil {
		return err
	}
	if c.Line < 1 || c.Line > buf.LineCount() {
		return types.NewAppErrorWithDetails(types.ErrDocument, "line out of range",
			fmt.Sprintf("line %d of %d", c.Line, buf.LineCount()), nil)
	}

	cfg := a.configFor(c.File)
	engine, closer, err := a.buildEngine(ctx, cfg, buf.Kind(), c.File)
	if err != nil {
		return err
	}
	defer closer()

	edited, err := engine.ConvertLine(ctx, buf, c.Line-1)
	if err != nil {
		return err
	}
	if !edited {
		fmt.Println("nothing to convert")
		return nil
	}
	return buf.Flush()
}

// SelectionCmd converts free-form text from stdin, outside any marker
// region, and prints the generated math source.
type SelectionCmd struct {
	Markdown bool `help:"Treat the input as Markdown instead of LaTeX."`
}

func (c *SelectionCmd) Run(a *app) error {
	ctx := context.Background()
	input, err := io.ReadAll(os.Stdin)
	if err != nil {
		return err
	}
	text := strings.TrimSpace(string(input))
	if text == "" {
		return types.NewAppError(types.ErrDocument, "empty selection", nil)
	}

	kind := types.DocLaTeX
	if c.Markdown {
		kind = types.DocMarkdown
	}

	cfg := a.configFor("")
	engine, closer, err := a.buildEngine(ctx, cfg, kind, "<selection>")
	if err != nil {
		return err
	}
	defer closer()

	out, err := engine.ConvertSelection(ctx, text, "")
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

// SaveCmd runs the save-time hooks for a file according to the configured
// save mode.
type SaveCmd struct {
	File string `arg:"" type:"existingfile" help:"File to save."`
}

func (c *SaveCmd) Run(a *app) error {
	ctx := context.Background()
	buf, err := document.OpenFile(c.File)
	if err != nil {
		return err
	}

	cfg := a.configFor(c.File)
	if cfg.SaveMode == types.SaveModeNone {
		fmt.Println("save-time conversion is disabled; nothing to do")
		return nil
	}

	engine, closer, err := a.buildEngine(ctx, cfg, buf.Kind(), c.File)
	if err != nil {
		return err
	}
	defer closer()

	if cfg.SaveMode == types.SaveModeBefore {
		if _, err := engine.HandleWillSave(ctx, buf); err != nil {
			return err
		}
		return buf.Flush()
	}

	// Save-then-convert-then-save: the first write happens here, the
	// second inside the handler when anything changed.
	if err := buf.Flush(); err != nil {
		return err
	}
	_, err = engine.HandleDidSave(ctx, buf)
	return err
}

// ConfigCmd shows the effective configuration, changes values, or tests the
// backend connection.
type ConfigCmd struct {
	Set  []string `help:"Set configuration values, as key=value. Keys: provider, api_key, model, base_url, context_lines, keep_original, auto_convert, save_mode, inline, display, max_passes, cache."`
	Test bool     `help:"Send a probe request to verify the backend is reachable."`
}

func (c *ConfigCmd) Run(a *app) error {
	for _, kv := range c.Set {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return types.NewAppError(types.ErrConfig, "expected key=value, got "+kv, nil)
		}
		if err := applySetting(a.manager.GetConfig(), a.manager, key, value); err != nil {
			return err
		}
	}
	if len(c.Set) > 0 {
		if err := a.manager.Save(); err != nil {
			return err
		}
		fmt.Println("configuration saved to", a.manager.GetConfigPath())
	}

	if c.Test {
		ctx := context.Background()
		cfg := a.manager.GetConfig()
		b, err := backend.New(ctx, a.backendOptions(cfg))
		if err != nil {
			return err
		}
		if err := backend.TestConnection(ctx, b); err != nil {
			return err
		}
		fmt.Printf("connection ok (%s, %s)\n", b.Name(), a.manager.GetModel())
		return nil
	}

	if len(c.Set) == 0 {
		shown := *a.manager.GetConfig()
		if shown.APIKey != "" {
			shown.APIKey = "****"
		}
		out, err := json.MarshalIndent(&shown, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	}
	return nil
}

func applySetting(cfg *types.Config, manager *config.Manager, key, value string) error {
	switch key {
	case "provider":
		switch types.Provider(value) {
		case types.ProviderOpenAI, types.ProviderAnthropic:
			cfg.Provider = types.Provider(value)
		default:
			return types.NewAppError(types.ErrConfig, "unknown provider "+value, nil)
		}
	case "api_key":
		// SetAPIKey persists immediately: a credential change must not be
		// lost if a later key=value pair in the same invocation fails.
		return manager.SetAPIKey(value)
	case "model":
		cfg.Model = value
	case "base_url":
		cfg.BaseURL = value
	case "context_lines":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return types.NewAppError(types.ErrConfig, "context_lines must be a non-negative integer", err)
		}
		cfg.ContextLines = n
	case "max_passes":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return types.NewAppError(types.ErrConfig, "max_passes must be a positive integer", err)
		}
		cfg.MaxPasses = n
	case "keep_original":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return types.NewAppError(types.ErrConfig, "keep_original must be true or false", err)
		}
		cfg.KeepOriginal = b
	case "auto_convert":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return types.NewAppError(types.ErrConfig, "auto_convert must be true or false", err)
		}
		cfg.AutoConvertOnEnter = b
	case "cache":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return types.NewAppError(types.ErrConfig, "cache must be true or false", err)
		}
		cfg.CacheEnabled = b
	case "save_mode":
		switch types.SaveMode(value) {
		case types.SaveModeNone, types.SaveModeBefore, types.SaveModeAfter:
			cfg.SaveMode = types.SaveMode(value)
		default:
			return types.NewAppError(types.ErrConfig, "unknown save_mode "+value, nil)
		}
	case "inline":
		switch types.InlineStyle(value) {
		case types.InlineDollar, types.InlineParen:
			cfg.InlineDelimiter = types.InlineStyle(value)
		default:
			return types.NewAppError(types.ErrConfig, "unknown inline delimiter style "+value, nil)
		}
	case "display":
		switch types.DisplayStyle(value) {
		case types.DisplayBracket, types.DisplayDollar:
			cfg.DisplayDelimiter = types.DisplayStyle(value)
		default:
			return types.NewAppError(types.ErrConfig, "unknown display delimiter style "+value, nil)
		}
	default:
		return types.NewAppError(types.ErrConfig, "unknown configuration key "+key, nil)
	}
	manager.SetConfig(cfg)
	return nil
}

// ReportCmd lists or clears the recorded conversion failures.
type ReportCmd struct {
	Clear bool `help:"Delete all recorded failures."`
}

func (c *ReportCmd) Run(a *app) error {
	recorder, err := report.NewRecorder("")
	if err != nil {
		return err
	}

	if c.Clear {
		recorder.Clear()
		fmt.Println("failure records cleared")
		return nil
	}

	records := recorder.List()
	if len(records) == 0 {
		fmt.Println("no recorded failures")
		return nil
	}
	for _, r := range records {
		fmt.Println(r.Summary())
	}
	return nil
}
