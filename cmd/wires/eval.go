package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	buildinfo "github.com/pborges/wires"
	"github.com/pborges/wires/internal/report"
	"github.com/pborges/wires/internal/wires"
)

func newEvalCmd(a *app) *cobra.Command {
	var (
		wireNames  []string
		sets       []string
		reportPath string
	)
	cmd := &cobra.Command{
		Use:   "eval FILE...",
		Short: "Resolve wires in one or more circuit files",
		Long: `Resolve wires in one or more circuit files. Each file is its own circuit
and files are evaluated concurrently. Without --wire every wire is resolved.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("wire") {
				wireNames = a.cfg.Wires
			}
			if !cmd.Flags().Changed("report") {
				reportPath = a.cfg.Report
			}
			overrides, err := mergeOverrides(a.cfg.Overrides, sets)
			if err != nil {
				return err
			}
			if reportPath != "" && len(args) != 1 {
				return errors.New("--report needs exactly one circuit file")
			}

			results := make([]evalResult, len(args))
			g, ctx := errgroup.WithContext(cmd.Context())
			for i, path := range args {
				g.Go(func() error {
					if err := ctx.Err(); err != nil {
						return err
					}
					res, err := a.evalFile(path, wireNames, overrides)
					if err != nil {
						return errors.Wrap(err, path)
					}
					results[i] = res
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, res := range results {
				printValues(out, res, len(results) > 1)
			}
			if reportPath != "" {
				return writeReport(reportPath, results[0])
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&wireNames, "wire", "w", nil, "wire to resolve (repeatable); default all")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "override a wire before resolving, as WIRE=VALUE (repeatable)")
	cmd.Flags().StringVarP(&reportPath, "report", "o", "", "write a report of the resolved wires to this file")
	return cmd
}

type evalResult struct {
	path    string
	session string
	values  []wires.WireValue
}

func (a *app) evalFile(path string, names []string, overrides map[string]uint16) (evalResult, error) {
	c, err := a.loadCircuit(path)
	if err != nil {
		return evalResult{}, err
	}
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := c.Override(k, overrides[k]); err != nil {
			return evalResult{}, errors.Wrap(err, "override")
		}
	}

	values, err := resolve(c, names)
	if err != nil {
		return evalResult{}, err
	}
	return evalResult{path: path, session: c.Session(), values: values}, nil
}

func (a *app) loadCircuit(path string) (*wires.Circuit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	logger := log.With(a.logger, "file", path)
	c, err := wires.Load(f, wires.WithLogger(logger), wires.WithMetrics(a.metrics))
	if err != nil {
		return nil, err
	}
	level.Info(logger).Log("msg", "circuit loaded", "wires", c.Len(), "session", c.Session())
	return c, nil
}

func resolve(c *wires.Circuit, names []string) ([]wires.WireValue, error) {
	if len(names) == 0 {
		return c.Values()
	}
	out := make([]wires.WireValue, 0, len(names))
	for _, name := range names {
		v, err := c.Value(name)
		if err != nil {
			return nil, err
		}
		out = append(out, wires.WireValue{Name: name, Value: v})
	}
	return out, nil
}

func printValues(w io.Writer, res evalResult, withPath bool) {
	for _, wv := range res.values {
		if withPath {
			fmt.Fprintf(w, "%s\t%s\t%d\n", res.path, wv.Name, wv.Value)
		} else {
			fmt.Fprintf(w, "%s\t%d\n", wv.Name, wv.Value)
		}
	}
}

func writeReport(path string, res evalResult) error {
	text := report.Make(report.Config{
		Version: buildinfo.Version(),
		Session: res.session,
		Header:  []string{fmt.Sprintf("%-8s%s", "Source", res.path)},
	}, res.values)
	return errors.Wrap(os.WriteFile(path, []byte(text), 0644), "writing report")
}

func mergeOverrides(base map[string]uint16, sets []string) (map[string]uint16, error) {
	out := make(map[string]uint16, len(base)+len(sets))
	for k, v := range base {
		out[k] = v
	}
	for _, s := range sets {
		name, val, ok := strings.Cut(s, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, errors.Errorf("--set %q: want WIRE=VALUE", s)
		}
		v, err := strconv.ParseUint(strings.TrimSpace(val), 10, 16)
		if err != nil {
			return nil, errors.Errorf("--set %q: value must fit in 16 bits", s)
		}
		out[name] = uint16(v)
	}
	return out, nil
}

func newFeedbackCmd(a *app) *cobra.Command {
	var from, into string
	cmd := &cobra.Command{
		Use:   "feedback FILE",
		Short: "Resolve a wire, feed its signal into another wire and resolve it again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.loadCircuit(args[0])
			if err != nil {
				return err
			}
			first, second, err := wires.Feedback(c, from, into)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\t%d\n", from, first)
			fmt.Fprintf(out, "%s\t%d\t(%s=%d)\n", from, second, into, first)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "a", "wire to resolve")
	cmd.Flags().StringVar(&into, "into", "b", "wire that receives the first signal")
	return cmd
}

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check FILE",
		Short: "Report undefined wires and dependency cycles without resolving",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.loadCircuit(args[0])
			if err != nil {
				return err
			}
			problems := c.Check()
			for _, p := range problems {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			if len(problems) > 0 {
				return errors.Errorf("%s: %d problem(s)", args[0], len(problems))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok, %d wires\n", args[0], c.Len())
			return nil
		},
	}
}
