package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/wippyai/jsonplan"
	"github.com/wippyai/jsonplan/engine"
	"github.com/wippyai/jsonplan/plan"
)

func newDumpCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "dump [sample...]",
		Short: "Print the compiled plan of each sample",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = sampleNames()
			}
			out := cmd.OutOrStdout()
			for i, name := range args {
				s, err := lookupSample(name)
				if err != nil {
					return err
				}
				prog, err := s.build(g.options())
				if err != nil {
					return fmt.Errorf("compile %s: %w", name, err)
				}
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "; sample %s: %s\n", name, s.help)
				fmt.Fprint(out, plan.Disassemble(prog.plan))
			}
			return nil
		},
	}
}

func newSerializeCmd(g *globals) *cobra.Command {
	var (
		every     int
		threshold int
		gzipLevel int
		output    string
	)

	cmd := &cobra.Command{
		Use:   "serialize <sample>",
		Short: "Stream a sample value and report chunk statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := lookupSample(args[0])
			if err != nil {
				return err
			}
			prog, err := s.build(g.options())
			if err != nil {
				return fmt.Errorf("compile %s: %w", args[0], err)
			}

			opts := g.cfg.StreamOptions()
			switch {
			case every > 0 && threshold > 0:
				opts = append(opts, jsonplan.WithPolicy(engine.Any(engine.EveryN(every), engine.Buffered(threshold))))
			case every > 0:
				opts = append(opts, jsonplan.WithPolicy(engine.EveryN(every)))
			case threshold > 0:
				opts = append(opts, jsonplan.WithFlushThreshold(threshold))
			}
			if cmd.Flags().Changed("gzip") {
				opts = append(opts, jsonplan.WithGzip(gzipLevel))
			}

			var dst io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer f.Close()
				dst = f
			}

			rec := &flushRecorder{w: dst}
			if err := prog.encode(cmd.Context(), rec, opts...); err != nil {
				return err
			}
			if output == "" {
				fmt.Fprintln(cmd.OutOrStdout())
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %d flushes, %d bytes, largest %d bytes, %d convert steps in plan\n",
				args[0], rec.flushes, rec.bytes, rec.largest, prog.plan.ConvertSteps())
			return nil
		},
	}

	cmd.Flags().IntVar(&every, "every", 0, "end a chunk after n conversions")
	cmd.Flags().IntVar(&threshold, "threshold", 0, "end a chunk once n bytes are pending")
	cmd.Flags().IntVar(&gzipLevel, "gzip", 6, "gzip the output at the given level")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	return cmd
}

// flushRecorder counts the non-empty writes Encode makes, one per chunk.
type flushRecorder struct {
	w       io.Writer
	flushes int
	bytes   int
	largest int
}

func (r *flushRecorder) Write(p []byte) (int, error) {
	if len(p) > 0 {
		r.flushes++
		r.largest = max(r.largest, len(p))
	}
	n, err := r.w.Write(p)
	r.bytes += n
	return n, err
}
