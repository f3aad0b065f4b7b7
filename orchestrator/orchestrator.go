// Package orchestrator wires the crawler and indexer to a spawned
// language server and drives one indexing run end to end: spawn,
// handshake, crawl-and-index concurrently, flush, release resources.
package orchestrator

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/alidn/universal-lsif/crawler"
	"github.com/alidn/universal-lsif/indexer"
	"github.com/alidn/universal-lsif/internal/langconfig"
	"github.com/alidn/universal-lsif/internal/logging"
	"github.com/alidn/universal-lsif/internal/platform"
	"github.com/alidn/universal-lsif/lsif"
	"github.com/alidn/universal-lsif/lsp"
	"github.com/alidn/universal-lsif/model"
	"github.com/pterm/pterm"
)

// initializeSettle is how long this tool waits after the server
// confirms initialize before it starts sending requests. Several
// servers (gopls among them) accept initialize before their indexing
// has actually caught up enough to answer goto-definition usefully;
// there is no capability or notification to poll for this, so a fixed
// sleep is the only option short of retry-on-empty-result, which is out
// of scope here.
const initializeSettle = 1500 * time.Millisecond

// ptermProgress adapts pterm's fluent ProgressbarPrinter (whose
// Increment returns the printer, for chaining) to crawler.Progress's
// plain Increment() signature.
type ptermProgress struct {
	bar *pterm.ProgressbarPrinter
}

func (p ptermProgress) Increment() { p.bar.Increment() }

// Options configures one run.
type Options struct {
	ServerCommand string
	ServerArgs    []string
	Language      string
	ProjectRoot   string
	OutputPath    string
}

// Run spawns the configured server, crawls ProjectRoot, and writes an
// LSIF dump to OutputPath.
func Run(ctx context.Context, opts Options) error {
	lang, err := langconfig.Lookup(opts.Language)
	if err != nil {
		return err
	}

	logging.Info("spawning %s %v", opts.ServerCommand, opts.ServerArgs)
	client, err := lsp.Spawn(ctx, opts.ServerCommand, opts.ServerArgs, os.Stderr)
	if err != nil {
		if lang.InstallCommand != "" {
			return fmt.Errorf("spawning %q failed: %w (try: %s)", opts.ServerCommand, err, lang.InstallCommand)
		}
		return fmt.Errorf("spawning %q failed: %w", opts.ServerCommand, err)
	}
	defer client.Close()

	// RunID distinguishes this run's log lines from a concurrently
	// running invocation's — useful since the server's own stderr is
	// interleaved with this tool's output on the same terminal.
	logging.Debug("[%s] initializing %s", client.RunID, opts.ServerCommand)
	if err := client.Initialize(opts.ProjectRoot); err != nil {
		return fmt.Errorf("initializing language server: %w", err)
	}
	time.Sleep(initializeSettle)

	fsys := platform.NewOSFileSystem()
	paths, err := crawler.Walk(fsys, opts.ProjectRoot, lang.Extensions)
	if err != nil {
		return fmt.Errorf("walking %s: %w", opts.ProjectRoot, err)
	}
	fileURIs := make([]string, len(paths))
	for i, p := range paths {
		fileURIs[i] = "file://" + p
	}

	out, err := os.Create(opts.OutputPath)
	if err != nil {
		return fmt.Errorf("creating output file %s: %w", opts.OutputPath, err)
	}
	defer out.Close()

	emitter := lsif.NewEmitter(out)
	ix := indexer.New(emitter, opts.ProjectRoot, opts.Language)
	if err := ix.Start(fileURIs); err != nil {
		return fmt.Errorf("starting index: %w", err)
	}

	progressBar, _ := pterm.DefaultProgressbar.WithTotal(len(paths)).WithTitle("indexing").Start()

	c := &crawler.Crawler{
		FS:       fsys,
		Client:   client,
		Config:   lang,
		Progress: ptermProgress{bar: progressBar},
	}

	defs := make(chan model.Definition)
	refs := make(chan model.Reference)

	crawlErrCh := make(chan error, 1)
	go func() {
		crawlErrCh <- c.Run(paths, defs, refs)
	}()

	indexErr := ix.Run(defs, refs)
	crawlErr := <-crawlErrCh

	if _, err := progressBar.Stop(); err != nil {
		logging.Debug("stopping progress bar: %v", err)
	}

	if indexErr != nil {
		return fmt.Errorf("[%s] indexing: %w", client.RunID, indexErr)
	}
	if crawlErr != nil {
		logging.Warning("[%s] crawl completed with errors: %v", client.RunID, crawlErr)
	}

	logging.Success("[%s] wrote %s", client.RunID, opts.OutputPath)
	return nil
}
