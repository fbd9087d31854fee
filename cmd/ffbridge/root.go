// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFmpegBridge - FFmpeg 执行桥接层

package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var ffmpegFlag string

	ctx := newCommandContext(&configFlag, &ffmpegFlag)

	rootCmd := &cobra.Command{
		Use:           "ffbridge",
		Short:         "Run FFmpeg commands through the bridge",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&ffmpegFlag, "ffmpeg", "", "FFmpeg binary path (overrides config)")

	rootCmd.AddCommand(newRunCommand(ctx))
	rootCmd.AddCommand(newVersionCommand(ctx))
	rootCmd.AddCommand(newProbeCommand(ctx))

	return rootCmd
}
