package main

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/hpungsan/degreeplan/internal/advisor"
	"github.com/hpungsan/degreeplan/internal/config"
	"github.com/hpungsan/degreeplan/internal/course"
	"github.com/hpungsan/degreeplan/internal/errors"
	"github.com/hpungsan/degreeplan/internal/ops"
	"github.com/hpungsan/degreeplan/internal/web"
)

// appDeps carries what the commands need. db and cfg are nil for --help.
type appDeps struct {
	db      *sql.DB
	cfg     *config.Config
	advisor *advisor.Advisor
	logger  *zap.Logger
	level   zap.AtomicLevel
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(d *appDeps) *cli.App {
	app := &cli.App{
		Name:    "degreeplan",
		Usage:   "Major progress from a course list",
		Version: Version,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Usage: "Log at debug level"},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("verbose") {
				d.level.SetLevel(zap.DebugLevel)
			}
			return nil
		},
		Commands: []*cli.Command{
			importCmd(d),
			exportCmd(d),
			majorsCmd(d),
			evaluateCmd(d),
			suggestCmd(d),
			adviseCmd(d),
			previewCmd(d),
			historyCmd(d),
			showCmd(d),
			purgeCmd(d),
			serveCmd(d),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// Flags shared by several commands. Each command gets its own instance.
func majorFlag() cli.Flag {
	return &cli.StringFlag{Name: "major", Aliases: []string{"m"}, Usage: "Major name"}
}

func degreeTypeFlag() cli.Flag {
	return &cli.StringFlag{Name: "degree-type", Aliases: []string{"d"}, Usage: "Degree type (default: the major's, else BA)"}
}

func coursesFlag() cli.Flag {
	return &cli.StringFlag{Name: "courses", Aliases: []string{"c"}, Usage: "Course list JSON file, or - for stdin (default: piped stdin)"}
}

func saveFlag() cli.Flag {
	return &cli.BoolFlag{Name: "save", Usage: "Save the evaluation to history"}
}

// importCmd creates the import command.
func importCmd(d *appDeps) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import majors from a JSON or YAML catalog file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Required: true, Usage: "Catalog file path"},
			&cli.StringFlag{Name: "mode", Value: "error", Usage: "Collision mode: error|replace"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.ImportCatalog(c.Context, d.db, ops.ImportInput{
				Path: c.String("path"),
				Mode: ops.ImportMode(c.String("mode")),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(d *appDeps) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export the stored catalog to a JSON or YAML file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: ~/.degreeplan/exports/catalog-<timestamp>.json)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.ExportCatalog(c.Context, d.db, ops.ExportInput{Path: c.String("path")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// majorsCmd creates the majors command.
func majorsCmd(d *appDeps) *cli.Command {
	return &cli.Command{
		Name:  "majors",
		Usage: "List imported majors",
		Action: func(c *cli.Context) error {
			output, err := ops.ListMajors(c.Context, d.db)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// evaluateCmd creates the evaluate command.
func evaluateCmd(d *appDeps) *cli.Command {
	return &cli.Command{
		Name:  "evaluate",
		Usage: "Score a course list against a major",
		Flags: []cli.Flag{majorFlag(), degreeTypeFlag(), coursesFlag(), saveFlag()},
		Action: func(c *cli.Context) error {
			rows, err := readCourses(c)
			if err != nil {
				return outputError(err)
			}
			output, err := ops.Evaluate(c.Context, d.db, ops.EvaluateInput{
				Major:          c.String("major"),
				DegreeType:     c.String("degree-type"),
				StudentCourses: rows,
				Save:           c.Bool("save"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// suggestCmd creates the suggest command.
func suggestCmd(d *appDeps) *cli.Command {
	return &cli.Command{
		Name:  "suggest",
		Usage: "List untaken courses that would advance a major",
		Flags: []cli.Flag{majorFlag(), coursesFlag()},
		Action: func(c *cli.Context) error {
			rows, err := readCourses(c)
			if err != nil {
				return outputError(err)
			}
			output, err := ops.Suggest(c.Context, d.db, ops.SuggestInput{
				Major:          c.String("major"),
				StudentCourses: rows,
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// adviseCmd creates the advise command.
func adviseCmd(d *appDeps) *cli.Command {
	return &cli.Command{
		Name:  "advise",
		Usage: "Evaluate a major and write advising text",
		Flags: []cli.Flag{
			majorFlag(), degreeTypeFlag(), coursesFlag(), saveFlag(),
			&cli.BoolFlag{Name: "require-generated", Usage: "Fail instead of returning the offline summary"},
		},
		Action: func(c *cli.Context) error {
			rows, err := readCourses(c)
			if err != nil {
				return outputError(err)
			}
			output, err := ops.Advise(c.Context, d.db, d.advisor, ops.AdviseInput{
				Major:            c.String("major"),
				DegreeType:       c.String("degree-type"),
				StudentCourses:   rows,
				Save:             c.Bool("save"),
				RequireGenerated: c.Bool("require-generated"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// previewCmd creates the preview command.
func previewCmd(d *appDeps) *cli.Command {
	return &cli.Command{
		Name:  "preview",
		Usage: "Rank every major by approximate completion",
		Flags: []cli.Flag{
			coursesFlag(), degreeTypeFlag(),
			&cli.IntFlag{Name: "top", Aliases: []string{"n"}, Value: ops.DefaultTopN, Usage: "Number of majors to return"},
		},
		Action: func(c *cli.Context) error {
			rows, err := readCourses(c)
			if err != nil {
				return outputError(err)
			}
			output, err := ops.Preview(c.Context, d.db, ops.PreviewInput{
				StudentCourses: rows,
				DegreeType:     c.String("degree-type"),
				TopN:           c.Int("top"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// historyCmd creates the history command.
func historyCmd(d *appDeps) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List saved evaluations, newest first",
		Flags: []cli.Flag{
			majorFlag(),
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultListLimit, Usage: "Maximum items to return"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Items to skip"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.ListEvaluations(c.Context, d.db, ops.ListInput{
				Major:  c.String("major"),
				Limit:  c.Int("limit"),
				Offset: c.Int("offset"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// showCmd creates the show command.
func showCmd(d *appDeps) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show a saved evaluation",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.FetchEvaluation(c.Context, d.db, ops.FetchInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// purgeCmd creates the purge command.
func purgeCmd(d *appDeps) *cli.Command {
	return &cli.Command{
		Name:  "purge",
		Usage: "Permanently delete saved evaluations",
		Flags: []cli.Flag{
			majorFlag(),
			&cli.StringFlag{Name: "older-than", Usage: "Only purge if saved more than N days ago (e.g., 30d)"},
		},
		Action: func(c *cli.Context) error {
			input := ops.PurgeInput{}

			if major := c.String("major"); major != "" {
				input.Major = &major
			}
			if olderThan := c.String("older-than"); olderThan != "" {
				days, err := parseDuration(olderThan)
				if err != nil {
					return outputError(errors.NewInvalidRequest(err.Error()))
				}
				input.OlderThanDays = &days
			}

			output, err := ops.PurgeEvaluations(c.Context, d.db, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, output)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(d *appDeps) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API and history pages",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Usage: "Bind address (default: from config, 127.0.0.1)"},
			&cli.IntFlag{Name: "port", Usage: "Port (default: from config, 8000)"},
		},
		Action: func(c *cli.Context) error {
			cfg := *d.cfg
			if c.IsSet("bind") {
				cfg.Web.Bind = c.String("bind")
			}
			if c.IsSet("port") {
				cfg.Web.Port = c.Int("port")
			}

			srv, err := web.NewServer(d.db, &cfg, d.advisor, d.logger, Version)
			if err != nil {
				return outputError(errors.NewInternal(err))
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return web.Run(ctx, srv, d.logger)
		},
	}
}

// Helper functions

// outputJSON writes result to the app's writer as indented JSON.
func outputJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if pErr, ok := errors.As(err); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", pErr.Code, pErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// readCourses loads the course list named by --courses, or piped stdin.
func readCourses(c *cli.Context) ([]course.Row, error) {
	var data []byte
	var err error

	switch path := c.String("courses"); path {
	case "-":
		data, err = io.ReadAll(c.App.Reader)
	case "":
		if !stdinHasData() {
			return nil, errors.NewInvalidRequest("course list must be given with --courses or piped via stdin")
		}
		data, err = io.ReadAll(c.App.Reader)
	default:
		data, err = os.ReadFile(path)
		if os.IsNotExist(err) {
			return nil, errors.NewFileNotFound(path)
		}
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return parseCourses(data)
}

// parseCourses accepts a bare array of course rows or an object with a
// studentCourses array, the shape the HTTP API takes.
func parseCourses(data []byte) ([]course.Row, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.NewInvalidRequest("course list is empty")
	}

	if data[0] == '[' {
		var rows []course.Row
		if err := json.Unmarshal(data, &rows); err != nil {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid course list: %v", err))
		}
		return rows, nil
	}

	var body struct {
		StudentCourses []course.Row `json:"studentCourses"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid course list: %v", err))
	}
	if body.StudentCourses == nil {
		return nil, errors.NewInvalidRequest("course list object must have a studentCourses array")
	}
	return body.StudentCourses, nil
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// parseDuration parses "7d" format to days.
func parseDuration(s string) (int, error) {
	if numStr, ok := strings.CutSuffix(s, "d"); ok {
		days, err := strconv.Atoi(numStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		if days < 0 {
			return 0, fmt.Errorf("duration must be non-negative")
		}
		return days, nil
	}
	return 0, fmt.Errorf("duration must end with 'd' (days), e.g., 7d")
}
