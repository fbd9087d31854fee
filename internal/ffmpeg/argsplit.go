// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFmpegBridge - FFmpeg 执行桥接层

package ffmpeg

import "strings"

// SplitArguments breaks a raw command-line string into argv elements.
// Whitespace separates arguments; single and double quotes group them;
// a backslash escapes the next rune outside single quotes.
func SplitArguments(parameters string) []string {
	var args []string
	var current strings.Builder

	inSingle := false
	inDouble := false
	escaped := false
	pending := false

	flush := func() {
		if pending {
			args = append(args, current.String())
			current.Reset()
			pending = false
		}
	}

	for _, r := range parameters {
		if escaped {
			current.WriteRune(r)
			pending = true
			escaped = false
			continue
		}
		switch {
		case r == '\\' && !inSingle:
			escaped = true
			pending = true
		case r == '\'' && !inDouble:
			inSingle = !inSingle
			pending = true
		case r == '"' && !inSingle:
			inDouble = !inDouble
			pending = true
		case (r == ' ' || r == '\t' || r == '\n') && !inSingle && !inDouble:
			flush()
		default:
			current.WriteRune(r)
			pending = true
		}
	}
	flush()

	return args
}
