// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFmpegBridge - FFmpeg 执行桥接层

package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/ZSC714725/ffmpegbridge/internal/ffmpeg"
	"github.com/ZSC714725/ffmpegbridge/internal/ffmpeg/parse"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "run [flags] -- <ffmpeg arguments...>",
		Short: "Execute an FFmpeg command and stream its progress",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, _, err := ctx.session()
			if err != nil {
				return err
			}

			if !quiet {
				sess.EnableLogCallback(func(event ffmpeg.LogEvent) {
					fmt.Fprintln(os.Stderr, event.Message)
				})
				sess.EnableStatisticsCallback(func(s parse.Statistics) {
					fmt.Fprintf(os.Stderr, "\rframe=%d fps=%.1f size=%dkB time=%.1fs speed=%.2fx",
						s.Frame, s.Fps, s.Size/1024, s.Time, s.Speed)
				})
			} else {
				sess.SetLogLevel(ffmpeg.LevelQuiet)
				sess.EnableLogCallback(func(event ffmpeg.LogEvent) {})
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			go func() {
				<-runCtx.Done()
				sess.Cancel()
			}()

			rc, err := sess.Execute(cmd.Context(), joinArguments(args))
			if !quiet {
				fmt.Fprintln(os.Stderr)
			}
			if err != nil {
				return err
			}
			if rc != 0 {
				return fmt.Errorf("ffmpeg exited with return code %d", rc)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress FFmpeg output")

	return cmd
}
