// Command kensa checks track plans for geometric and topological plausibility.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"nyiyui.ca/hato/kensa/catalog"
	"nyiyui.ca/hato/kensa/config"
	"nyiyui.ca/hato/kensa/history"
	"nyiyui.ca/hato/kensa/hybrid"
	"nyiyui.ca/hato/kensa/plan"
	"nyiyui.ca/hato/kensa/report"
	"nyiyui.ca/hato/kensa/rules"
)

const usage = `usage:
  kensa rules [flags] <plan.json|plan.yaml>     rule-based check, prints the result as JSON
  kensa validate [flags] <plan.json|plan.yaml>  rule-based check blended with an image confidence, prints a report
  kensa history [flags] [run-id]                list stored runs or show one

run "kensa <command> -h" for flags`

var errUsage = errors.New("bad usage")

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	err := run(context.Background(), os.Args[1], os.Args[2:], os.Stdout)
	zap.S().Sync()
	if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "kensa: %s\n", err)
		os.Exit(1)
	}
}

type options struct {
	config      string
	catalog     string
	catalogFile string
	format      string
	history     string
	concurrent  bool
	verbose     bool
	image       string
	aiScore     float64
	level       zapcore.Level
}

func (o *options) register(fs *flag.FlagSet, withImage bool) {
	o.level = zapcore.WarnLevel
	fs.Var(&o.level, "log-level", "set log level")
	fs.StringVar(&o.config, "config", "", "path to a YAML config file")
	fs.StringVar(&o.catalog, "catalog", "", "built-in catalog to check against (pikoa, kato)")
	fs.StringVar(&o.catalogFile, "catalog-file", "", "YAML catalog applied on top of -catalog")
	fs.StringVar(&o.format, "format", "", "output format (text or json)")
	fs.StringVar(&o.history, "db", "", "history database; runs are recorded when set")
	fs.BoolVar(&o.concurrent, "concurrent", false, "run rules in parallel")
	fs.BoolVar(&o.verbose, "verbose", false, "show per-rule scores in text output")
	if withImage {
		fs.StringVar(&o.image, "image", "", "rendering of the plan (PNG) for the image confidence")
		fs.Float64Var(&o.aiScore, "ai-score", -1, "image confidence in [0, 1] from an external classifier; negative means none")
	}
}

// load merges the config file (if any) with flags; flags win.
func (o *options) load() (*config.Config, error) {
	setupLogging(o.level)
	c := config.Default()
	if o.config != "" {
		var err error
		c, err = config.LoadFromPath(o.config)
		if err != nil {
			return nil, err
		}
	}
	if o.catalog != "" {
		c.Catalog = o.catalog
		// a preset named on the command line drops the config's overrides
		c.CatalogFile = ""
	}
	if o.catalogFile != "" {
		c.CatalogFile = o.catalogFile
	}
	if o.format != "" {
		c.Format = o.format
	}
	if o.history != "" {
		c.History = o.history
	}
	if o.concurrent {
		c.Concurrent = true
	}
	return c, nil
}

func setupLogging(level zapcore.Level) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	dev, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(dev)
}

func run(ctx context.Context, cmd string, args []string, w io.Writer) error {
	switch cmd {
	case "rules", "validate":
		return check(ctx, cmd, args, w)
	case "history":
		return showHistory(args, w)
	case "-h", "-help", "--help", "help":
		return flag.ErrHelp
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func check(ctx context.Context, cmd string, args []string, w io.Writer) error {
	var o options
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	o.register(fs, cmd == "validate")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: %s needs exactly one plan path", errUsage, cmd)
	}
	path := fs.Arg(0)
	c, err := o.load()
	if err != nil {
		return err
	}
	format := report.FormatJSON
	if cmd == "validate" || o.format != "" {
		if format, err = report.ParseFormat(c.Format); err != nil {
			return err
		}
	}

	cat, err := c.ResolveCatalog()
	if err != nil {
		return err
	}
	p, err := plan.ReadFile(path)
	if err != nil {
		return err
	}
	r, err := evaluate(cat, c.Concurrent, p)
	if err != nil {
		return err
	}
	zap.S().Infow("evaluated plan",
		"path", path,
		"catalog", cat.Name,
		"edges", len(p.Edges),
		"valid", r.IsValid,
		"score", r.Score)

	if cmd == "validate" {
		var s hybrid.Scorer = hybrid.None
		if o.aiScore >= 0 {
			s = hybrid.Fixed(o.aiScore)
		}
		r, err = hybrid.Blend(ctx, r, s, o.image)
		if err != nil {
			return err
		}
	}

	if c.History != "" {
		if err := record(c.History, path, cat.Name, r); err != nil {
			return err
		}
	}
	return report.Render(w, r, format, report.Options{Verbose: o.verbose})
}

func evaluate(cat catalog.Catalog, concurrent bool, p *plan.Plan) (rules.Result, error) {
	var opts []rules.Option
	if concurrent {
		opts = append(opts, rules.Concurrent())
	}
	e, err := rules.New(cat, opts...)
	if err != nil {
		return rules.Result{}, err
	}
	return e.Evaluate(p), nil
}

func record(dbPath, source, catalogName string, r rules.Result) error {
	s, err := history.Open(dbPath)
	if err != nil {
		return err
	}
	defer s.Close()
	run, err := s.Put(history.Run{Source: source, Catalog: catalogName, Result: r})
	if err != nil {
		return err
	}
	zap.S().Infow("recorded run", "id", run.ID, "db", dbPath)
	return nil
}

func showHistory(args []string, w io.Writer) error {
	var o options
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	o.register(fs, false)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 1 {
		return fmt.Errorf("%w: history takes at most one run id", errUsage)
	}
	c, err := o.load()
	if err != nil {
		return err
	}
	if c.History == "" {
		return errors.New("history is disabled: set -db or history in the config")
	}
	format, err := report.ParseFormat(c.Format)
	if err != nil {
		return err
	}
	s, err := history.Open(c.History)
	if err != nil {
		return err
	}
	defer s.Close()

	if fs.NArg() == 1 {
		id, err := uuid.Parse(fs.Arg(0))
		if err != nil {
			return fmt.Errorf("run id %s: %w", fs.Arg(0), err)
		}
		run, err := s.Get(id)
		if err != nil {
			return err
		}
		if format == report.FormatText {
			fmt.Fprintf(w, "Run %s (%s, catalog %s, %s)\n", run.ID, run.Source, run.Catalog, run.Time.Format("2006-01-02 15:04:05"))
		}
		return report.Render(w, run.Result, format, report.Options{})
	}

	runs, err := s.List()
	if err != nil {
		return err
	}
	if format == report.FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if runs == nil {
			runs = []history.Run{}
		}
		return enc.Encode(runs)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTIME\tCATALOG\tVALID\tSCORE\tSOURCE")
	for _, run := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%.2f%%\t%s\n",
			run.ID, run.Time.Format("2006-01-02 15:04:05"), run.Catalog, run.Result.IsValid, run.Result.Score*100, run.Source)
	}
	return tw.Flush()
}
