// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFmpegBridge - FFmpeg 执行桥接层

package ffmpeg

import (
	"fmt"
	"os"
	"path/filepath"
)

type fontconfigState struct {
	configPath string
	fontsConf  string
}

const fontsConfTemplate = `<?xml version="1.0"?>
<!DOCTYPE fontconfig SYSTEM "fonts.dtd">
<fontconfig>
    <dir>%s</dir>
    <cachedir>%s</cachedir>
</fontconfig>
`

// SetFontconfigConfigurationPath points spawned processes at an existing
// fontconfig configuration directory. Pass-through: the path is not checked.
func (e *engine) SetFontconfigConfigurationPath(path string) {
	e.mu.Lock()
	e.fontconfig.configPath = path
	e.mu.Unlock()
}

// SetFontDirectory generates a fontconfig configuration listing the given
// font directory and exports it to spawned processes.
func (e *engine) SetFontDirectory(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("font directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("font directory: %s is not a directory", path)
	}

	cacheDir := filepath.Join(os.TempDir(), "ffmpegbridge-fontcache")
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return fmt.Errorf("font cache directory: %w", err)
	}

	confPath := filepath.Join(os.TempDir(), "ffmpegbridge-fonts.conf")
	conf := fmt.Sprintf(fontsConfTemplate, path, cacheDir)
	if err := os.WriteFile(confPath, []byte(conf), 0o644); err != nil {
		return fmt.Errorf("write fontconfig configuration: %w", err)
	}

	e.mu.Lock()
	e.fontconfig.fontsConf = confPath
	e.mu.Unlock()

	if e.logger != nil {
		e.logger.Debug("font directory %s registered via %s", path, confPath)
	}
	return nil
}

// processEnv is the environment for spawned FFmpeg processes: the parent
// environment plus fontconfig state. Returns nil while nothing is set so
// exec.Cmd inherits as usual.
func (e *engine) processEnv() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.fontconfig.configPath == "" && e.fontconfig.fontsConf == "" {
		return nil
	}

	env := os.Environ()
	if e.fontconfig.configPath != "" {
		env = append(env, "FONTCONFIG_PATH="+e.fontconfig.configPath)
	}
	if e.fontconfig.fontsConf != "" {
		env = append(env, "FONTCONFIG_FILE="+e.fontconfig.fontsConf)
	}
	return env
}
