// Command ssoprobe runs the SSO console probes against a deployed console
// page and prints what each region of the page would show.
// Usage: go run . -page https://sso.example.com/ -probe all -url /api/status
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/raysh454/ssoprobe/internal/app"
	"github.com/raysh454/ssoprobe/internal/cli"
	"github.com/raysh454/ssoprobe/internal/console"
	"github.com/raysh454/ssoprobe/internal/logging"
	"github.com/raysh454/ssoprobe/internal/model"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	args, err := cli.ParseArgs(argv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ssoprobe: %v\n", err)
		return 2
	}

	cfg := app.DefaultConfig()
	cfg.ApplyArgs(args)
	cfg.LogCfg.Output = os.Stderr
	logger := logging.NewLogger("ssoprobe", cfg.LogCfg)

	comps, err := app.NewProbeComponents(cfg, logger)
	if err != nil {
		logger.Error("building probes", logging.Field{Key: "error", Value: err.Error()})
		return 1
	}
	application := app.NewApplication(cfg, args, logger, comps)
	if err := application.Start(); err != nil {
		logger.Error("starting", logging.Field{Key: "error", Value: err.Error()})
		return 1
	}
	defer func() { _ = application.Shutdown(context.Background()) }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	page, err := console.NewCentral("", "", nil).Parse()
	if err != nil {
		logger.Error("rendering console page", logging.Field{Key: "error", Value: err.Error()})
		return 1
	}
	doc, err := console.NewDocument(page)
	if err != nil {
		logger.Error("parsing console page", logging.Field{Key: "error", Value: err.Error()})
		return 1
	}
	doc.SetInput(console.IDFrameInput, args.URL)
	doc.SetInput(console.IDFetchInput, args.URL)

	failed := false
	for _, kind := range args.Probes {
		times := 1
		if kind == model.ProbeToken {
			times = args.Repeat
		}
		for i := 0; i < times; i++ {
			res, err := application.Orch.Run(ctx, model.ProbeRequest{Kind: kind, URL: inputFor(doc, kind)})
			if err != nil {
				logger.Error("running probe", logging.Field{Key: "probe", Value: string(kind)}, logging.Field{Key: "error", Value: err.Error()})
				failed = true
				continue
			}
			doc.ApplyResult(res)
			fmt.Println(console.Summary(res))
			if res.Status != model.StatusRendered {
				failed = true
			}
			if err := saveScreenshot(args.Screenshot, res); err != nil {
				logger.Warn("writing screenshot", logging.Field{Key: "error", Value: err.Error()})
			}
		}
	}

	if args.Out != "" {
		html, err := doc.HTML()
		if err == nil {
			err = os.WriteFile(args.Out, []byte(html), 0o644)
		}
		if err != nil {
			logger.Error("writing console page", logging.Field{Key: "path", Value: args.Out}, logging.Field{Key: "error", Value: err.Error()})
			failed = true
		}
	}

	if failed {
		return 1
	}
	return 0
}

// inputFor reads the probe's input field, as the page's click handlers do.
func inputFor(doc *console.Document, kind model.ProbeKind) string {
	switch kind {
	case model.ProbeFrame:
		return doc.Value(console.IDFrameInput)
	case model.ProbeFetch:
		return doc.Value(console.IDFetchInput)
	}
	return ""
}

func saveScreenshot(path string, res *model.ProbeResult) error {
	if path == "" || res.Frame == nil || len(res.Frame.Screenshot) == 0 {
		return nil
	}
	return os.WriteFile(path, res.Frame.Screenshot, 0o644)
}
