package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kingrea/pmfarchive/internal/config"
	"github.com/kingrea/pmfarchive/internal/logbook"
	"github.com/kingrea/pmfarchive/internal/logging"
	"github.com/kingrea/pmfarchive/internal/pmf"
)

// session carries what every subcommand needs once the config is loaded.
type session struct {
	projectDir string
	stderr     io.Writer

	cfg     *config.Config
	log     *logging.Logger
	history *logbook.Logbook
}

// run executes the CLI with args.
func run(args []string, stdout, stderr io.Writer) error {
	return execute(newSession(stderr), args, stdout)
}

func newSession(stderr io.Writer) *session {
	return &session{stderr: stderr, log: logging.Discard()}
}

// execute runs one command. The log file opened during setup is closed on
// every path, including failed commands.
func execute(s *session, args []string, stdout io.Writer) error {
	defer func() {
		if err := s.log.Close(); err != nil {
			fmt.Fprintf(s.stderr, "close log: %v\n", err)
		}
	}()
	root := newRootCmd(s, stdout, s.stderr)
	root.SetArgs(args)
	return root.Execute()
}

func newRootCmd(s *session, stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "pmfx",
		Short:         "Read and write PMF COMBINE archives of predictive microbiology models",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return s.setup(cmd)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVarP(&s.projectDir, "project", "C", "", "project directory holding .pmfx (defaults to cwd)")

	root.AddCommand(
		newInitCmd(s),
		newInspectCmd(s),
		newShowCmd(s),
		newReadCmd(s),
		newBrowseCmd(s),
		newConvertCmd(s),
		newHistoryCmd(s),
	)
	return root
}

// setup loads the project config. Only an initialized project (one with
// .pmfx/config.yaml) gets a log file and a history; elsewhere nothing is
// written to disk.
func (s *session) setup(cmd *cobra.Command) error {
	if s.projectDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("determine working directory: %w", err)
		}
		s.projectDir = cwd
	}
	abs, err := filepath.Abs(s.projectDir)
	if err != nil {
		return fmt.Errorf("resolve project dir: %w", err)
	}
	s.projectDir = abs

	if cmd.Name() == "init" {
		if err := config.Init(abs); err != nil {
			return err
		}
	}
	s.cfg, err = config.Load(abs)
	if err != nil {
		return err
	}
	_, statErr := os.Stat(s.cfg.ConfigPath())
	initialized := statErr == nil
	if !initialized {
		s.cfg.Project.Log.File = ""
	}
	s.log, err = logging.New(s.cfg, s.stderr)
	if err != nil {
		return err
	}
	if initialized {
		s.history, err = logbook.New(s.cfg.HistoryFile())
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *session) mapper() *pmf.Mapper {
	return pmf.NewMapper(
		pmf.WithLogger(s.log.Logger),
		pmf.WithReadme(s.cfg.Project.Readme),
	)
}

// record appends to the history. A failure is logged, not returned.
func (s *session) record(level logbook.Level, op, path string, details map[string]any) {
	if err := s.history.Record(level, op, path, details); err != nil {
		s.log.Warn("history not updated", "err", err)
	}
}

// archivePath resolves an archive argument, appending the configured profile
// extension when the argument has none.
func (s *session) archivePath(arg string) string {
	if filepath.Ext(arg) == "" {
		arg += s.cfg.Extension()
	}
	if filepath.IsAbs(arg) {
		return arg
	}
	return filepath.Join(s.projectDir, arg)
}

// modelTypeFlag parses --type, returning 0 when the flag was left empty.
func modelTypeFlag(value string) (pmf.ModelType, error) {
	if value == "" {
		return 0, nil
	}
	t, err := pmf.ParseModelType(value)
	if err != nil {
		return 0, fmt.Errorf("%w (one of %s)", err, modelTypeList())
	}
	return t, nil
}

func modelTypeList() string {
	names := make([]string, 0, len(pmf.ModelTypes()))
	for _, t := range pmf.ModelTypes() {
		names = append(names, t.String())
	}
	return strings.Join(names, ", ")
}
