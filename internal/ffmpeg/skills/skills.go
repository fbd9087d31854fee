// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFmpegBridge - FFmpeg 执行桥接层
//
// Package skills probes the FFmpeg binary for its version and capabilities.

package skills

import (
	"bufio"
	"bytes"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
)

// Codec represents a codec with encoders and decoders
type Codec struct {
	Id       string
	Name     string
	Encoders []string
	Decoders []string
}

// Protocol represents a supported protocol
type Protocol struct {
	Id   string
	Name string
}

// HWAccel represents hardware acceleration
type HWAccel struct {
	Id   string
	Name string
}

// Library represents a linked av library
type Library struct {
	Name     string
	Compiled string
	Linked   string
}

// FFmpegInfo is the parsed -version banner
type FFmpegInfo struct {
	Version       string
	Compiler      string
	Configuration string
	Libraries     []Library
}

// CodecSet groups codecs by media type
type CodecSet struct {
	Audio    []Codec
	Video    []Codec
	Subtitle []Codec
}

// ProtocolSet groups protocols by direction
type ProtocolSet struct {
	Input  []Protocol
	Output []Protocol
}

// Skills are the detected capabilities of FFmpeg
type Skills struct {
	FFmpeg    FFmpegInfo
	HWAccels  []HWAccel
	Codecs    CodecSet
	Protocols ProtocolSet
}

// New returns all skills that FFmpeg provides
func New(binary string) (Skills, error) {
	c := Skills{}

	ff, err := getVersion(binary)
	if err != nil {
		return Skills{}, fmt.Errorf("can't parse ffmpeg version: %w", err)
	}
	if ff.Version == "" {
		return Skills{}, fmt.Errorf("can't parse ffmpeg version")
	}
	c.FFmpeg = ff

	c.HWAccels = getHWAccels(binary)
	c.Codecs = getCodecs(binary)
	c.Protocols = getProtocols(binary)

	return c, nil
}

func getVersion(binary string) (FFmpegInfo, error) {
	cmd := exec.Command(binary, "-version")
	cmd.Env = []string{}
	out, err := cmd.CombinedOutput()
	if err != nil {
		return FFmpegInfo{}, err
	}
	return parseVersion(out), nil
}

func parseVersion(data []byte) FFmpegInfo {
	f := FFmpegInfo{}
	reVersion := regexp.MustCompile(`^ffmpeg version ([0-9]+\.[0-9]+(\.[0-9]+)?)`)
	reCompiler := regexp.MustCompile(`(?m)^\s*built with (.*)$`)
	reConfiguration := regexp.MustCompile(`(?m)^\s*configuration: (.*)$`)
	reLibrary := regexp.MustCompile(`(?m)^\s*(lib(?:[a-z]+))\s+([0-9]+\.\s*[0-9]+\.\s*[0-9]+) /\s+([0-9]+\.\s*[0-9]+\.\s*[0-9]+)`)

	if m := reVersion.FindSubmatch(data); m != nil {
		f.Version = string(m[1])
		if len(m[2]) == 0 {
			f.Version += ".0"
		}
	}
	if m := reCompiler.FindSubmatch(data); m != nil {
		f.Compiler = string(m[1])
	}
	if m := reConfiguration.FindSubmatch(data); m != nil {
		f.Configuration = string(m[1])
	}
	for _, m := range reLibrary.FindAllSubmatch(data, -1) {
		f.Libraries = append(f.Libraries, Library{
			Name:     string(m[1]),
			Compiled: string(m[2]),
			Linked:   string(m[3]),
		})
	}
	return f
}

func getCodecs(binary string) CodecSet {
	cmd := exec.Command(binary, "-codecs")
	cmd.Env = []string{}
	stdout, _ := cmd.Output()
	return parseCodecs(stdout)
}

func parseCodecs(data []byte) CodecSet {
	codecs := CodecSet{}
	re := regexp.MustCompile(`^\s([D.])([E.])([VAS]).{3} ([0-9A-Za-z_]+)\s+(.*?)(?:\(decoders:([^\)]+)\))?\s?(?:\(encoders:([^\)]+)\))?$`)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		c := Codec{Id: m[4], Name: strings.TrimSpace(m[5])}
		if m[1] == "D" {
			if len(m[6]) == 0 {
				c.Decoders = []string{m[4]}
			} else {
				c.Decoders = strings.Split(strings.TrimSpace(m[6]), " ")
			}
		}
		if m[2] == "E" {
			if len(m[7]) == 0 {
				c.Encoders = []string{m[4]}
			} else {
				c.Encoders = strings.Split(strings.TrimSpace(m[7]), " ")
			}
		}
		switch m[3] {
		case "V":
			codecs.Video = append(codecs.Video, c)
		case "A":
			codecs.Audio = append(codecs.Audio, c)
		case "S":
			codecs.Subtitle = append(codecs.Subtitle, c)
		}
	}
	return codecs
}

func getProtocols(binary string) ProtocolSet {
	cmd := exec.Command(binary, "-protocols")
	cmd.Env = []string{}
	stdout, _ := cmd.Output()
	return parseProtocols(stdout)
}

func parseProtocols(data []byte) ProtocolSet {
	p := ProtocolSet{}
	mode := ""
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "Input:" {
			mode = "input"
			continue
		}
		if line == "Output:" {
			mode = "output"
			continue
		}
		if mode == "" {
			continue
		}
		id := strings.TrimSpace(line)
		proto := Protocol{Id: id, Name: id}
		if mode == "input" {
			p.Input = append(p.Input, proto)
		} else {
			p.Output = append(p.Output, proto)
		}
	}
	return p
}

func getHWAccels(binary string) []HWAccel {
	cmd := exec.Command(binary, "-hwaccels")
	cmd.Env = []string{}
	stdout, _ := cmd.Output()
	return parseHWAccels(stdout)
}

func parseHWAccels(data []byte) []HWAccel {
	var accels []HWAccel
	re := regexp.MustCompile(`^[A-Za-z0-9]+$`)
	start := false
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "Hardware acceleration methods:" {
			start = true
			continue
		}
		if !start || !re.MatchString(line) {
			continue
		}
		id := strings.TrimSpace(line)
		accels = append(accels, HWAccel{Id: id, Name: id})
	}
	return accels
}
