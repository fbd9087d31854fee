// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFmpegBridge - FFmpeg 执行桥接层

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Report the wrapped FFmpeg version and platform",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, _, err := ctx.session()
			if err != nil {
				return err
			}

			fmt.Printf("ffmpeg %s on %s\n", sess.GetFFmpegVersion(), sess.GetPlatform())
			return nil
		},
	}
}
