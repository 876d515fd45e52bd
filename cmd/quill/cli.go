package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/quill/internal/errors"
	"github.com/hpungsan/quill/internal/gateway"
	"github.com/hpungsan/quill/internal/history"
	"github.com/hpungsan/quill/internal/logger"
	"github.com/hpungsan/quill/internal/ops"
	"github.com/hpungsan/quill/internal/prompt"
	"github.com/hpungsan/quill/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(store *history.Store, gw *gateway.Gateway, log *logger.Logger) *cli.App {
	if log == nil {
		log = logger.Nop()
	}

	app := &cli.App{
		Name:    "quill",
		Usage:   "Structured prompt studio",
		Version: Version,
		Commands: []*cli.Command{
			serveCmd(store, gw, log),
			compileCmd(store),
			generateCmd(store, gw, log),
			historyCmd(store),
			templatesCmd(),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// serveCmd creates the serve command.
func serveCmd(store *history.Store, gw *gateway.Gateway, log *logger.Logger) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the studio web UI and JSON API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Aliases: []string{"b"}, Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 8080, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			srv, err := web.NewServer(store, gw, log, Version, c.String("bind"), c.Int("port"))
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			return web.Run(c.Context, srv, log)
		},
	}
}

// compileCmd creates the compile command.
func compileCmd(store *history.Store) *cli.Command {
	return &cli.Command{
		Name:  "compile",
		Usage: "Compile a structured prompt (goal via --goal or stdin)",
		Flags: fieldFlags(),
		Action: func(c *cli.Context) error {
			input, err := compileInput(c)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Compile(store, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// generateCmd creates the generate command.
func generateCmd(store *history.Store, refiner ops.Refiner, log *logger.Logger) *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Compile, refine through the provider and save to history",
		Flags: fieldFlags(),
		Action: func(c *cli.Context) error {
			input, err := compileInput(c)
			if err != nil {
				return outputError(err)
			}

			output, err := ops.Generate(c.Context, store, refiner, log, ops.GenerateInput{
				CompileInput: input,
				ClientID:     ops.LocalClient,
			})
			if err != nil {
				return outputError(err)
			}

			if output.Notice != "" {
				fmt.Fprintln(os.Stderr, output.Notice)
			}
			return outputJSON(output)
		},
	}
}

// historyCmd creates the history command and its subcommands.
func historyCmd(store *history.Store) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Browse and manage saved prompts",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List saved prompts, most recent first",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "favorites", Aliases: []string{"f"}, Usage: "Only favorite entries"},
					&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultListLimit, Usage: "Max entries to return"},
					&cli.IntFlag{Name: "offset", Usage: "Entries to skip"},
				},
				Action: func(c *cli.Context) error {
					output, err := ops.ListHistory(store, ops.ListHistoryInput{
						FavoritesOnly: c.Bool("favorites"),
						Limit:         c.Int("limit"),
						Offset:        c.Int("offset"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "show",
				Usage:     "Show one saved prompt",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					output, err := ops.ShowHistory(store, ops.ShowHistoryInput{ID: c.Args().First()})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "favorite",
				Usage:     "Toggle the favorite flag of a saved prompt",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					output, err := ops.ToggleFavorite(c.Context, store, ops.ToggleFavoriteInput{ID: c.Args().First()})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:  "clear",
				Usage: "Delete every saved prompt",
				Action: func(c *cli.Context) error {
					output, err := ops.ClearHistory(c.Context, store)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
		},
	}
}

// templatesCmd creates the templates command.
func templatesCmd() *cli.Command {
	return &cli.Command{
		Name:  "templates",
		Usage: "List built-in templates, personas and lengths",
		Action: func(c *cli.Context) error {
			output, err := ops.ListTemplates()
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// fieldFlags are the Field Set, quality and continuity flags shared by compile and generate.
func fieldFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "template", Aliases: []string{"t"}, Usage: "Built-in template whose values fill blank fields"},
		&cli.StringFlag{Name: "goal", Aliases: []string{"g"}, Usage: "What the AI should do (or pipe via stdin)"},
		&cli.StringFlag{Name: "persona", Usage: "Role line"},
		&cli.StringFlag{Name: "audience", Usage: "Target audience"},
		&cli.StringFlag{Name: "context", Usage: "Background the AI should know"},
		&cli.StringFlag{Name: "references", Usage: "Reference material"},
		&cli.StringFlag{Name: "constraints", Usage: "Rules the output must follow"},
		&cli.StringFlag{Name: "format", Usage: "Output format"},
		&cli.StringFlag{Name: "tone", Usage: "Tone of voice"},
		&cli.StringFlag{Name: "length", Usage: "Desired length"},
		&cli.StringFlag{Name: "language", Usage: "Output language"},
		&cli.StringFlag{Name: "success-criteria", Usage: "How to judge the result"},
		&cli.BoolFlag{Name: "no-clarify", Usage: "Do not ask clarifying questions"},
		&cli.BoolFlag{Name: "no-assumptions", Usage: "Do not ask for stated assumptions"},
		&cli.BoolFlag{Name: "checklist", Usage: "Ask for a checklist before the output"},
		&cli.BoolFlag{Name: "history", Usage: "Fold recent history entries in as prior outputs"},
		&cli.IntFlag{Name: "depth", Value: prompt.DefaultHistoryDepth, Usage: "How many recent entries to include"},
	}
}

// compileInput builds an ops.CompileInput from fieldFlags. The goal falls back
// to piped stdin when --goal is not given.
func compileInput(c *cli.Context) (ops.CompileInput, error) {
	goal := c.String("goal")
	if goal == "" && stdinHasData() {
		text, err := readStdin()
		if err != nil {
			return ops.CompileInput{}, errors.NewInternal(err)
		}
		goal = text
	}

	flags := prompt.QualityFlags{
		AskClarifying:    !c.Bool("no-clarify"),
		StateAssumptions: !c.Bool("no-assumptions"),
		IncludeChecklist: c.Bool("checklist"),
	}

	return ops.CompileInput{
		Template: c.String("template"),
		Fields: prompt.FieldSet{
			Goal:            goal,
			Persona:         c.String("persona"),
			Audience:        c.String("audience"),
			Context:         c.String("context"),
			References:      c.String("references"),
			Constraints:     c.String("constraints"),
			Format:          c.String("format"),
			Tone:            c.String("tone"),
			Length:          c.String("length"),
			Language:        c.String("language"),
			SuccessCriteria: c.String("success-criteria"),
		},
		Flags:          &flags,
		IncludeHistory: c.Bool("history"),
		HistoryDepth:   c.Int("depth"),
	}, nil
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	qErr := errors.As(err)
	return cli.Exit(fmt.Sprintf("[%s] %s", qErr.Code, qErr.Message), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
