package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/cwbudde/algo-stretch/dsp/stretch"
	"github.com/cwbudde/algo-stretch/dsp/window"
	"github.com/cwbudde/algo-stretch/internal/config"
	"github.com/spf13/cobra"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print preset geometry, latency and window properties",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			return printInfo(cmd.OutOrStdout(), cfg)
		},
	}
}

// printInfo writes one row per preset for the configured sample rate and
// window.
func printInfo(w io.Writer, cfg config.Config) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if _, err := fmt.Fprintf(tw, "Preset\tBlock\tInterval\tFFT\tIn Latency [ms]\tOut Latency [ms]\tWindow\tENBW [bins]\tSidelobe [dB]\tOverlap Gain\n"); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	if _, err := fmt.Fprintf(tw, "------\t-----\t--------\t---\t---------------\t----------------\t------\t-----------\t-------------\t------------\n"); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, preset := range []string{config.PresetDefault, config.PresetCheaper} {
		c := cfg
		c.Engine.Preset = preset

		s, err := newEngine(c)
		if err != nil {
			return err
		}

		row, err := describe(s, preset)
		if err != nil {
			return err
		}

		if _, err := fmt.Fprintln(tw, row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	return nil
}

func describe(s *stretch.Stretch, preset string) (string, error) {
	analysis := window.Generate(s.Window(), s.BlockLength(), window.WithPeriodic())

	enbw, err := window.EquivalentNoiseBandwidth(analysis)
	if err != nil {
		return "", err
	}

	synthesis, err := window.Synthesis(analysis, s.Interval())
	if err != nil {
		return "", err
	}

	lo, hi, err := window.OverlapGain(analysis, synthesis, s.Interval())
	if err != nil {
		return "", err
	}

	ms := 1000 / s.SampleRate()
	meta := window.Info(s.Window())

	return fmt.Sprintf("%s\t%d\t%d\t%d\t%d (%.1f)\t%d (%.1f)\t%s\t%.4f\t%.1f\t%.6f..%.6f",
		preset,
		s.BlockLength(),
		s.Interval(),
		s.FFTSize(),
		s.InputLatency(), float64(s.InputLatency())*ms,
		s.OutputLatency(), float64(s.OutputLatency())*ms,
		meta.Name,
		enbw,
		meta.HighestSidelobe,
		lo, hi,
	), nil
}
