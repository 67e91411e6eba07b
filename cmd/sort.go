package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/brettbedarf/picsort"
	"github.com/brettbedarf/picsort/internal/util"
	"github.com/brettbedarf/picsort/session"
	"github.com/spf13/cobra"
)

var (
	// Sort command flags
	order     string
	depth     int
	dests     []string
	destRoots []string
)

var sortCmd = &cobra.Command{
	Use:   "sort [dir...]",
	Short: "Interactively sort the images in the given directories",
	Long: `Sort loads the images in each directory (the current directory when none is
given) and reads one command per line from standard input:

  m <n|dir>   move the image to destination n (see l) or to a registered dir
  d           delete the image (kept in the holding directory until purged)
  s           skip the image
  u, r        undo, redo
  a <dir>     add a destination folder
  f <dir>     add every subfolder of dir as a destination
  c           clear destinations
  l           list destinations
  p, P        purge unreachable held images, purge every held image
  q           quit

Subfolders of the loaded directories become destinations.`,
	RunE: runSort,
}

func init() {
	sortCmd.Flags().StringVar(&order, "order", "", "working set order: name or capture_time")
	sortCmd.Flags().IntVar(&depth, "depth", 0, "directory levels to scan below each dir; 0 is unlimited")
	sortCmd.Flags().StringSliceVar(&dests, "dest", nil, "extra destination folder (repeatable)")
	sortCmd.Flags().StringSliceVar(&destRoots, "dest-root", nil, "register every subfolder of this dir as a destination (repeatable)")
}

func runSort(cmd *cobra.Command, args []string) error {
	ctx, cancel := setupSignalHandler()
	defer cancel()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	s, err := session.New(cfg)
	if err != nil {
		return err
	}

	roots := args
	if len(roots) == 0 {
		roots = []string{"."}
	}
	if _, err := s.Load(ctx, roots); err != nil {
		return err
	}
	for _, root := range destRoots {
		if _, err := s.LoadFolders(ctx, root); err != nil {
			return err
		}
	}
	for _, d := range dests {
		if err := s.AddFolder(d); err != nil {
			return err
		}
	}

	replErr := runREPL(ctx, s, cmd.InOrStdin(), cmd.OutOrStdout())
	if err := s.Close(); err != nil {
		logger := util.GetLogger("main")
		logger.Error().Err(err).Msg("Failed to close session")
	}
	return replErr
}

// runREPL executes commands from in until "q", EOF or ctx is done. Command
// errors are printed and do not end the loop.
func runREPL(ctx context.Context, s *session.Session, in io.Reader, out io.Writer) error {
	printStatus(s, out)
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		cmd, arg, _ := strings.Cut(strings.TrimSpace(scanner.Text()), " ")
		arg = strings.TrimSpace(arg)
		if cmd == "" {
			continue
		}
		if cmd == "q" {
			return nil
		}
		if err := dispatch(ctx, s, cmd, arg, out); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
		printStatus(s, out)
	}
	return scanner.Err()
}

func dispatch(ctx context.Context, s *session.Session, cmd, arg string, out io.Writer) error {
	switch cmd {
	case "m":
		dest, err := destination(s, arg)
		if err != nil {
			return err
		}
		if err := s.MoveCurrent(dest); err != nil {
			return err
		}
		s.Advance()
	case "d":
		if err := s.DeleteCurrent(); err != nil {
			return err
		}
		s.Advance()
	case "s":
		if err := s.SkipCurrent(); err != nil {
			return err
		}
		s.Advance()
	case "u":
		return s.Undo()
	case "r":
		return s.Redo()
	case "a":
		return s.AddFolder(arg)
	case "f":
		res, err := s.LoadFolders(ctx, arg)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "added %d destinations\n", len(res.Folders))
	case "c":
		s.ClearDestinations()
	case "l":
		for i, d := range s.Destinations() {
			fmt.Fprintf(out, "%3d  %s\n", i+1, d.Path)
		}
	case "p", "P":
		purge := s.Purge
		if cmd == "P" {
			purge = s.PurgeAll
		}
		n, err := purge()
		fmt.Fprintf(out, "purged %d held images\n", n)
		return err
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

// destination maps a 1-based destination number or a folder path to a
// folder path
func destination(s *session.Session, arg string) (string, error) {
	if arg == "" {
		return "", picsort.ErrNoDestination
	}
	n, err := strconv.Atoi(arg)
	if err != nil {
		return arg, nil
	}
	dest, ok := s.Destination(n - 1)
	if !ok {
		return "", fmt.Errorf("%w: %d is not in 1..%d", picsort.ErrNoDestination, n, len(s.Destinations()))
	}
	return dest.Path, nil
}

func printStatus(s *session.Session, out io.Writer) {
	cur, ok := s.CurrentImage()
	if !ok {
		fmt.Fprintf(out, "[done] %d images, undo %d, redo %d\n", s.FileCount(), s.UndoDepth(), s.RedoDepth())
		return
	}
	done := s.FileCount() - s.RemainingCount()
	fmt.Fprintf(out, "[%d/%d] %s\n", done+1, s.FileCount(), cur.Path)
}
