package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/kingrea/pmfarchive/internal/combine"
	"github.com/kingrea/pmfarchive/internal/logbook"
	"github.com/kingrea/pmfarchive/internal/pmf"
	"github.com/kingrea/pmfarchive/internal/tui"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	masterStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

func newInitCmd(s *session) *cobra.Command {
	var profile, level string
	var noReadme bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create .pmfx/config.yaml in the project directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("profile") || flags.Changed("log-level") || flags.Changed("no-readme") {
				if flags.Changed("profile") {
					s.cfg.Project.Profile = profile
				}
				if flags.Changed("log-level") {
					s.cfg.Project.Log.Level = level
				}
				if flags.Changed("no-readme") {
					s.cfg.Project.Readme = !noReadme
				}
				if err := s.cfg.Save(); err != nil {
					return err
				}
			}
			if err := s.history.Info("init %s profile=%s", s.cfg.ConfigPath(), s.cfg.Project.Profile); err != nil {
				s.log.Warn("history not updated", "err", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized %s (profile %s)\n", s.cfg.ConfigPath(), s.cfg.Project.Profile)
			return nil
		},
	}
	cmd.Flags().StringVar(&profile, "profile", "", "archive profile: pmf, pmfx or fskx")
	cmd.Flags().StringVar(&level, "log-level", "", "log level: debug, info, warn or error")
	cmd.Flags().BoolVar(&noReadme, "no-readme", false, "do not add readme.txt to written archives")
	return cmd
}

func newInspectCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <archive>",
		Short: "List the entries of an archive with their formats and checksums",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := s.archivePath(args[0])
			archive, err := combine.Open(path)
			if err != nil {
				return err
			}
			defer archive.Close()
			writeInspection(cmd.OutOrStdout(), archive)
			return nil
		},
	}
}

func writeInspection(w io.Writer, archive *combine.Archive) {
	fmt.Fprintln(w, titleStyle.Render(archive.Path()))
	if desc, err := pmf.DecodeDescriptor(archive.Description()); err == nil {
		fmt.Fprintf(w, "type: %s\n", desc.Type)
	} else {
		fmt.Fprintln(w, mutedStyle.Render("type: undeclared"))
	}
	entries := archive.Entries("")
	if len(entries) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("no entries"))
		return
	}
	width := 0
	for _, e := range entries {
		width = max(width, len(e.Name))
	}
	for _, e := range entries {
		line := fmt.Sprintf("%-*s  %-5s  %8d  %016x", width, e.Name, e.Format.Short(), e.Size, e.Checksum)
		if e.Master {
			line += "  " + masterStyle.Render("master")
		}
		fmt.Fprintln(w, line)
	}
}

func newShowCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "show <archive> <entry>",
		Short: "Print the raw content of one archive entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			archive, err := combine.Open(s.archivePath(args[0]))
			if err != nil {
				return err
			}
			defer archive.Close()
			body, err := archive.ReadText(args[1])
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(body)
			return err
		},
	}
}

func newReadCmd(s *session) *cobra.Command {
	var typeName string
	cmd := &cobra.Command{
		Use:   "read <archive>",
		Short: "Resolve an archive and list its root aggregates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := s.archivePath(args[0])
			res, err := s.read(path, typeName)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s  %s  %d aggregates\n", titleStyle.Render(path), res.Type, len(res.Aggregates))
			for _, agg := range res.Aggregates {
				fmt.Fprintf(out, "  %s\n", agg.EntryName())
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&typeName, "type", "t", "", typeFlagUsage())
	return cmd
}

func newBrowseCmd(s *session) *cobra.Command {
	var typeName string
	cmd := &cobra.Command{
		Use:   "browse <archive>",
		Short: "Browse the resolved object graph of an archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := s.archivePath(args[0])
			res, err := s.read(path, typeName)
			if err != nil {
				return err
			}
			return tui.Run(path, res, s.history)
		},
	}
	cmd.Flags().StringVarP(&typeName, "type", "t", "", typeFlagUsage())
	return cmd
}

func newConvertCmd(s *session) *cobra.Command {
	var typeName string
	cmd := &cobra.Command{
		Use:   "convert <source> <target>",
		Short: "Read an archive and write its aggregates to another archive",
		Long: `Convert resolves every root of the source archive and writes them again
to the target. The target extension selects the profile: .pmf stores models
as plain SBML, .pmfx and .fskx as PMF-annotated SBML.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, dst := s.archivePath(args[0]), s.archivePath(args[1])
			if src == dst {
				return errors.New("source and target are the same file")
			}
			res, err := s.read(src, typeName)
			if err != nil {
				return err
			}
			if err := s.mapper().Write(dst, res.Type, res.Aggregates); err != nil {
				s.record(logbook.LevelError, "convert", dst, map[string]any{"err": err})
				return err
			}
			s.record(logbook.LevelInfo, "convert", dst, map[string]any{
				"source":     src,
				"type":       res.Type,
				"aggregates": len(res.Aggregates),
			})
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d %s aggregates to %s\n", len(res.Aggregates), res.Type, dst)
			return nil
		},
	}
	cmd.Flags().StringVarP(&typeName, "type", "t", "", typeFlagUsage())
	return cmd
}

func newHistoryCmd(s *session) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the most recent archive operations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("limit") {
				limit = s.cfg.Project.History.Tail
			}
			lines, total := s.history.Tail(limit)
			out := cmd.OutOrStdout()
			if total == 0 {
				fmt.Fprintln(out, mutedStyle.Render("no history yet"))
				return nil
			}
			fmt.Fprintln(out, strings.Join(lines, "\n"))
			if total > len(lines) {
				fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("(%d of %d entries)", len(lines), total)))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "number of entries to show (defaults to history.tail)")
	return cmd
}

// read resolves path, optionally forcing a model type, and records the
// outcome in the history.
func (s *session) read(path, typeName string) (*pmf.Result, error) {
	t, err := modelTypeFlag(typeName)
	if err != nil {
		return nil, err
	}
	m := s.mapper()
	var res *pmf.Result
	if t == 0 {
		res, err = m.Read(path)
	} else {
		res, err = m.ResolveAs(path, t)
	}
	if err != nil {
		s.record(logbook.LevelError, "read", path, map[string]any{"err": err})
		return nil, err
	}
	s.record(logbook.LevelInfo, "read", path, map[string]any{
		"type":       res.Type,
		"aggregates": len(res.Aggregates),
	})
	return res, nil
}

func typeFlagUsage() string {
	return "model type to read as, defaults to the archive's descriptor (" + modelTypeList() + ")"
}
