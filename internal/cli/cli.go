package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/raysh454/ssoprobe/internal/model"
)

// CLIArgs are the command-line arguments of a single probe run.
type CLIArgs struct {
	// Page is the console page URL the probes run against.
	Page string

	// Probes are the probes to run, in console order.
	Probes []model.ProbeKind

	// URL is the frame/fetch input.
	URL string

	// Repeat is how many times the token probe is activated.
	Repeat int

	// Timeout bounds each activation; 0 means "use config default".
	Timeout time.Duration

	// Render loads frame targets in a headless browser.
	Render bool

	// Screenshot is where the frame screenshot is written (implies Render).
	Screenshot string

	// Out is where the rendered console document is written.
	Out string

	Insecure  bool
	LogFormat string
	LogLevel  string

	// RawArgs is the original args slice (useful for debugging/tests).
	RawArgs []string
}

// ParseArgs parses a slice of args and returns CLIArgs. The function is
// deterministic and does not read os.Args.
func ParseArgs(args []string) (*CLIArgs, error) {
	fs := flag.NewFlagSet("ssoprobe", flag.ContinueOnError)
	var (
		page       = fs.String("page", "", "Console page URL, e.g. https://sso.example.com/ (required)")
		probes     = fs.String("probe", "all", "Probes to run: echo,frame,fetch,token or all")
		target     = fs.String("url", "", "Frame/fetch input URL (relative URLs resolve against -page)")
		repeat     = fs.Int("repeat", 1, "Number of token activations")
		timeout    = fs.Duration("timeout", 0, "Per-activation timeout (0=use default)")
		render     = fs.Bool("render", false, "Load frame targets in headless Chrome")
		screenshot = fs.String("screenshot", "", "Write the frame screenshot (PNG) to this path")
		out        = fs.String("out", "", "Write the rendered console page to this path")
		insecure   = fs.Bool("insecure", false, "Skip TLS certificate verification")
		logFormat  = fs.String("log-format", "text", "Log format: json|text|ecs")
		logLevel   = fs.String("log-level", "info", "Log level: debug|info|warn|error")
	)

	// Ensure Parse doesn't write to stdout/stderr in tests
	fs.SetOutput(io.Discard)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if strings.TrimSpace(*page) == "" {
		return nil, fmt.Errorf("missing required -page argument")
	}
	kinds, err := ParseProbes(*probes)
	if err != nil {
		return nil, err
	}
	if *repeat < 1 {
		return nil, fmt.Errorf("-repeat must be at least 1, got %d", *repeat)
	}
	if *timeout < 0 {
		return nil, fmt.Errorf("-timeout must not be negative")
	}

	return &CLIArgs{
		Page:       strings.TrimSpace(*page),
		Probes:     kinds,
		URL:        *target,
		Repeat:     *repeat,
		Timeout:    *timeout,
		Render:     *render || *screenshot != "",
		Screenshot: *screenshot,
		Out:        *out,
		Insecure:   *insecure,
		LogFormat:  *logFormat,
		LogLevel:   *logLevel,
		RawArgs:    args,
	}, nil
}

// ParseProbes reads a comma-separated probe list. "all" selects every probe;
// duplicates are dropped and the result follows console order.
func ParseProbes(raw string) ([]model.ProbeKind, error) {
	selected := map[model.ProbeKind]bool{}
	for _, part := range strings.Split(raw, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		switch {
		case name == "":
			continue
		case name == "all":
			for _, k := range model.AllProbeKinds() {
				selected[k] = true
			}
		case model.ProbeKind(name).Valid():
			selected[model.ProbeKind(name)] = true
		default:
			return nil, fmt.Errorf("unknown probe %q", name)
		}
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("no probe selected")
	}

	out := make([]model.ProbeKind, 0, len(selected))
	for _, k := range model.AllProbeKinds() {
		if selected[k] {
			out = append(out, k)
		}
	}
	return out, nil
}
