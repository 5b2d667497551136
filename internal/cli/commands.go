package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/yuin/goldmark"

	"github.com/arthur-debert/linkify/internal/version"
	"github.com/arthur-debert/linkify/pkg/errors"
	"github.com/arthur-debert/linkify/pkg/events"
	"github.com/arthur-debert/linkify/pkg/linkifier"
	"github.com/arthur-debert/linkify/pkg/logging"
	"github.com/arthur-debert/linkify/pkg/markdown"
	"github.com/arthur-debert/linkify/pkg/metrics"
	"github.com/arthur-debert/linkify/pkg/rules"
	"github.com/arthur-debert/linkify/pkg/scanner"
	"github.com/arthur-debert/linkify/pkg/table"
	"github.com/arthur-debert/linkify/pkg/watch"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	var verbosity int

	rootCmd := &cobra.Command{
		Use:   "linkify",
		Short: "Turn recurring text patterns into links",
		Long: `linkify matches admin-defined patterns like issue numbers or ticket
references in plain text and markdown, and turns each occurrence into
a link built from a URL template.

Definitions live in a small TOML or YAML file and can be swapped into
a running process, from disk or over NATS.`,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Setup logging based on verbosity
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}

	// Global flags
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Definitions file (default is $XDG_CONFIG_HOME/linkify/linkifiers.toml)")

	// Add all commands
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newScanCmd())
	rootCmd.AddCommand(newRenderCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newPublishCmd())
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

// configPath resolves the definitions file from the persistent flag,
// falling back to the XDG default.
func configPath(cmd *cobra.Command) string {
	path, _ := cmd.Root().PersistentFlags().GetString("config")
	if path == "" {
		return rules.DefaultPath()
	}
	return path
}

// loadTable reads the definitions file and builds a table from it.
// Definitions that fail to compile are dropped and logged, matching
// what an embedding host would see.
func loadTable(cmd *cobra.Command) (*table.Table, error) {
	defs, err := rules.Load(configPath(cmd))
	if err != nil {
		return nil, err
	}
	tbl := table.New()
	tbl.Initialize(defs)
	return tbl, nil
}

// readInput returns the contents of the file argument, or stdin when
// the argument is absent or "-".
func readInput(args []string) ([]byte, error) {
	if len(args) == 1 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrInvalidInput, "failed to read input file")
		}
		return data, nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidInput, "failed to read stdin")
	}
	return data, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including commit hash and build date`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("linkify version %s\n", version.Version)
			if version.Commit != "" {
				fmt.Printf("Commit: %s\n", version.Commit)
			}
			if version.Date != "" {
				fmt.Printf("Built:  %s\n", version.Date)
			}
		},
	}
}

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter definitions file",
		Long: `Init writes a starter definitions file with commented examples to the
config location, ready to edit.`,
		Example: `  # Write to the default location
  linkify init

  # Write somewhere else
  linkify init --config ./linkifiers.toml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath(cmd)
			force, _ := cmd.Flags().GetBool("force")

			if _, err := os.Stat(path); err == nil && !force {
				return errors.Newf(errors.ErrInvalidInput, "%s already exists, use --force to overwrite", path)
			}

			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return errors.Wrap(err, errors.ErrInternal, "failed to create config directory")
			}
			if err := os.WriteFile(path, []byte(rules.SampleConfig()), 0o644); err != nil {
				return errors.Wrap(err, errors.ErrInternal, "failed to write definitions file")
			}

			defs, err := rules.Sample()
			if err != nil {
				return err
			}

			fmt.Printf("Created %s with starter definitions:\n", path)
			for _, def := range defs {
				fmt.Printf("  ✓ %s\n", def.String())
			}

			return nil
		},
	}

	cmd.Flags().Bool("force", false, "Overwrite an existing definitions file")

	return cmd
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Compile every definition and report failures",
		Long: `Check loads the definitions file and compiles each entry the same way a
running table would, reporting per-definition results. It exits
non-zero when any definition fails, so it slots into CI.`,
		Example: `  linkify check
  linkify check --config ./linkifiers.toml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath(cmd)
			defs, err := rules.Load(path)
			if err != nil {
				return err
			}

			log.Info().Str("path", path).Int("count", len(defs)).Msg("Checking definitions")

			failed := 0
			for _, def := range defs {
				if _, err := linkifier.Compile(def); err != nil {
					failed++
					fmt.Printf("  %s %s\n", ErrorStyle.Render("✗"), def.String())
					fmt.Printf("    %s\n", MutedStyle.Render(err.Error()))
					continue
				}
				fmt.Printf("  %s %s\n", SuccessStyle.Render("✓"), def.String())
			}

			fmt.Printf("\nChecked %d definitions: %d ok, %d failed\n", len(defs), len(defs)-failed, failed)

			if failed > 0 {
				return errors.Newf(errors.ErrInvalidInput, "%d of %d definitions failed to compile", failed, len(defs))
			}
			return nil
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the loaded definitions",
		Long:  `List renders the definitions file as a table in the terminal.`,
		Example: `  linkify list
  linkify list --config ./linkifiers.toml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			defs, err := rules.Load(configPath(cmd))
			if err != nil {
				return err
			}

			if len(defs) == 0 {
				fmt.Println("No definitions found.")
				return nil
			}

			var sb strings.Builder
			sb.WriteString("# Linkifiers\n\n")
			sb.WriteString("| Pattern | URL template |\n")
			sb.WriteString("|---------|--------------|\n")
			for _, def := range defs {
				sb.WriteString(fmt.Sprintf("| `%s` | `%s` |\n",
					escapeCell(def.Pattern), escapeCell(def.URLTemplate)))
			}

			fmt.Print(renderMarkdownTerm(sb.String()))
			return nil
		},
	}
}

// escapeCell keeps regex alternation characters from breaking the
// markdown table.
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

// renderMarkdownTerm renders markdown for the terminal, falling back
// to the raw text when rendering fails.
func renderMarkdownTerm(content string) string {
	renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
	if err != nil {
		return content
	}
	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [text]",
		Short: "Find linkifiable spans in text",
		Long: `Scan runs the loaded definitions over text and prints every span that
would become a link, with the URL it expands to.

The text comes from the argument, or from stdin when the argument is
absent or "-".`,
		Args: cobra.MaximumNArgs(1),
		Example: `  linkify scan "fixes #42"
  cat notes.txt | linkify scan`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, err := loadTable(cmd)
			if err != nil {
				return err
			}

			var text string
			if len(args) == 1 && args[0] != "-" {
				text = args[0]
			} else {
				data, err := io.ReadAll(os.Stdin)
				if err != nil {
					return errors.Wrap(err, errors.ErrInvalidInput, "failed to read stdin")
				}
				text = string(data)
			}

			all, _ := cmd.Flags().GetBool("all")
			s := scanner.New(tbl)
			var hits []scanner.Hit
			if all {
				hits = s.ScanAll(text)
			} else {
				hits = s.Scan(text)
			}

			if len(hits) == 0 {
				fmt.Println("No matches.")
				return nil
			}
			for _, h := range hits {
				fmt.Printf("  %s %s -> %s\n",
					MutedStyle.Render(fmt.Sprintf("[%d:%d]", h.Match.Start, h.Match.End)),
					PatternStyle.Render(h.Match.Text),
					URLStyle.Render(h.URL))
			}
			return nil
		},
	}

	cmd.Flags().Bool("all", false, "Report overlapping matches from every rule, not just the first-rule-wins set")

	return cmd
}

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render markdown or plain text with links applied",
		Long: `Render converts markdown to HTML with every matching span turned into a
link. Code spans, code blocks and existing links are left alone.

With --plain the input is treated as plain text instead and comes back
as a single XHTML paragraph.`,
		Args: cobra.MaximumNArgs(1),
		Example: `  linkify render notes.md
  echo "see #42" | linkify render --plain`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, err := loadTable(cmd)
			if err != nil {
				return err
			}

			input, err := readInput(args)
			if err != nil {
				return err
			}

			plain, _ := cmd.Flags().GetBool("plain")
			if plain {
				fragment, err := scanner.New(tbl).Fragment(strings.TrimRight(string(input), "\n"))
				if err != nil {
					return err
				}
				fmt.Println(fragment)
				return nil
			}

			md := goldmark.New(goldmark.WithExtensions(markdown.NewExtension(tbl)))
			var buf bytes.Buffer
			if err := md.Convert(input, &buf); err != nil {
				return errors.Wrap(err, errors.ErrInternal, "failed to render markdown")
			}
			fmt.Print(buf.String())
			return nil
		},
	}

	cmd.Flags().Bool("plain", false, "Treat input as plain text and emit a single paragraph")

	return cmd
}

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep a table loaded, reloading on changes",
		Long: `Watch loads the definitions file into a table and keeps it current,
reloading whenever the file changes. With --nats-url it also applies
rule updates published on a NATS subject, and with --metrics-addr it
serves Prometheus metrics about rebuilds.

Run with -vv to see exactly how each definitions change is applied.`,
		Example: `  linkify watch
  linkify watch --nats-url nats://localhost:4222 --metrics-addr :9402`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath(cmd)
			debounce, _ := cmd.Flags().GetDuration("debounce")
			natsURL, _ := cmd.Flags().GetString("nats-url")
			subject, _ := cmd.Flags().GetString("subject")
			metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

			reporters := []table.Reporter{table.NewLogReporter()}

			if metricsAddr != "" {
				reg := prometheus.NewRegistry()
				reporters = append(reporters, metrics.NewReporter(reg))

				mux := http.NewServeMux()
				mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
				server := &http.Server{Addr: metricsAddr, Handler: mux}
				go func() {
					if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
						log.Error().Err(err).Msg("Metrics server failed")
					}
				}()
				defer func() { _ = server.Close() }()
				log.Info().Str("addr", metricsAddr).Msg("Serving metrics")
			}

			tbl := table.New(table.WithReporter(table.Multi(reporters...)))

			if natsURL != "" {
				subscriber := events.NewSubscriber(events.Config{URL: natsURL, Subject: subject}, tbl)
				if err := subscriber.Start(); err != nil {
					return err
				}
				defer subscriber.Close()
			}

			watcher, err := watch.New(watch.Config{Path: path, Debounce: debounce}, tbl)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Printf("Watching %s (Ctrl-C to stop)\n", path)
			return watcher.Run(ctx)
		},
	}

	cmd.Flags().Duration("debounce", 200*time.Millisecond, "Quiet period between a file change and the reload")
	cmd.Flags().String("nats-url", "", "NATS server to receive rule updates from")
	cmd.Flags().String("subject", events.DefaultSubject, "NATS subject carrying rule updates")
	cmd.Flags().String("metrics-addr", "", "Address to serve Prometheus metrics on (e.g. :9402)")

	return cmd
}

func newPublishCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish the definitions file to a NATS subject",
		Long: `Publish reads the definitions file and publishes the complete list to a
NATS subject, where running watchers pick it up and swap their tables.`,
		Example: `  linkify publish --nats-url nats://localhost:4222`,
		RunE: func(cmd *cobra.Command, args []string) error {
			natsURL, _ := cmd.Flags().GetString("nats-url")
			subject, _ := cmd.Flags().GetString("subject")

			defs, err := rules.Load(configPath(cmd))
			if err != nil {
				return err
			}

			payload, err := rules.EncodeJSON(defs)
			if err != nil {
				return err
			}

			conn, err := nats.Connect(natsURL, nats.Name("linkify"))
			if err != nil {
				return errors.Wrap(err, errors.ErrEventStream, "failed to connect to NATS").
					WithDetail("url", natsURL)
			}
			defer conn.Close()

			if err := conn.Publish(subject, payload); err != nil {
				return errors.Wrap(err, errors.ErrEventStream, "failed to publish definitions")
			}
			if err := conn.Flush(); err != nil {
				return errors.Wrap(err, errors.ErrEventStream, "failed to flush publish")
			}

			fmt.Printf("Published %d definitions to %s\n", len(defs), subject)
			return nil
		},
	}

	cmd.Flags().String("nats-url", nats.DefaultURL, "NATS server to publish to")
	cmd.Flags().String("subject", events.DefaultSubject, "NATS subject to publish on")

	return cmd
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion script",
		Long: `To load completions:

Bash:
  $ source <(linkify completion bash)

Zsh:
  $ linkify completion zsh > "${fpath[1]}/_linkify"

Fish:
  $ linkify completion fish | source

PowerShell:
  PS> linkify completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}
}
