// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFmpegBridge - FFmpeg 执行桥接层

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newProbeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Show the capabilities of the wrapped FFmpeg binary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, engine, err := ctx.session()
			if err != nil {
				return err
			}

			s := engine.Skills()

			fmt.Printf("ffmpeg %s\n", s.FFmpeg.Version)
			if s.FFmpeg.Compiler != "" {
				fmt.Printf("  built with %s\n", s.FFmpeg.Compiler)
			}
			for _, l := range s.FFmpeg.Libraries {
				fmt.Printf("  %-16s %s / %s\n", l.Name, l.Compiled, l.Linked)
			}

			if len(s.HWAccels) > 0 {
				fmt.Println("hardware acceleration:")
				for _, a := range s.HWAccels {
					fmt.Printf("  %s\n", a.Id)
				}
			}

			fmt.Printf("codecs: %d video, %d audio, %d subtitle\n",
				len(s.Codecs.Video), len(s.Codecs.Audio), len(s.Codecs.Subtitle))
			fmt.Printf("protocols: %d input, %d output\n",
				len(s.Protocols.Input), len(s.Protocols.Output))

			return nil
		},
	}
}
