// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFmpegBridge - FFmpeg 执行桥接层

package parse

import (
	"container/ring"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ZSC714725/ffmpegbridge/internal/process"
)

// Statistics holds the FFmpeg execution counters parsed from stderr
type Statistics struct {
	Frame   uint64  `json:"frame"`
	Fps     float64 `json:"fps"`
	Quality float64 `json:"q"`
	Size    uint64  `json:"size_bytes"`
	Time    float64 `json:"time_seconds"`
	Bitrate float64 `json:"bitrate_kbits"`
	Speed   float64 `json:"speed"`
	Drop    uint64  `json:"drop"`
	Dup     uint64  `json:"dup"`
}

// Parser implements process.Parser and parses FFmpeg stderr
type Parser interface {
	process.Parser
	Statistics() Statistics
}

type parser struct {
	re struct {
		frame     *regexp.Regexp
		fps       *regexp.Regexp
		quality   *regexp.Regexp
		size      *regexp.Regexp
		sizeBytes *regexp.Regexp
		time      *regexp.Regexp
		timeMs    *regexp.Regexp
		bitrate   *regexp.Regexp
		speed     *regexp.Regexp
		drop      *regexp.Regexp
		dup       *regexp.Regexp
	}

	log      *ring.Ring
	logLines int

	stats Statistics
	lock  sync.RWMutex

	onLog        func(process.Line)
	onStatistics func(Statistics)
}

// Config for the parser
type Config struct {
	LogLines     int
	OnLog        func(process.Line)
	OnStatistics func(Statistics)
}

// New creates a Parser
func New(config Config) Parser {
	p := &parser{
		logLines:     config.LogLines,
		onLog:        config.OnLog,
		onStatistics: config.OnStatistics,
	}
	if p.logLines <= 0 {
		p.logLines = 100
	}
	p.re.frame = regexp.MustCompile(`frame=\s*([0-9]+)`)
	p.re.fps = regexp.MustCompile(`fps=\s*([0-9\.]+)`)
	p.re.quality = regexp.MustCompile(`q=\s*(-?[0-9\.]+)`)
	p.re.size = regexp.MustCompile(`size=\s*([0-9]+)kB`)
	p.re.time = regexp.MustCompile(`time=\s*([0-9]+):([0-9]{2}):([0-9]{2})\.([0-9]+)`)
	p.re.timeMs = regexp.MustCompile(`out_time_ms=\s*([0-9]+)`)   // -progress 输出
	p.re.sizeBytes = regexp.MustCompile(`total_size=\s*([0-9]+)`) // -progress 输出
	p.re.bitrate = regexp.MustCompile(`bitrate=\s*([0-9\.]+)kbits/s`)
	p.re.speed = regexp.MustCompile(`speed=\s*([0-9\.]+)x`)
	p.re.drop = regexp.MustCompile(`drop=\s*([0-9]+)|drop_frames=\s*([0-9]+)`)
	p.re.dup = regexp.MustCompile(`dup=\s*([0-9]+)|dup_frames=\s*([0-9]+)`)

	p.log = ring.New(p.logLines)
	return p
}

// Parse consumes one stderr line. Statistics lines update the counters and
// emit a statistics event; everything else is a log line.
func (p *parser) Parse(line string) uint64 {
	isStats := isStatisticsLine(line)
	now := time.Now()

	p.lock.Lock()
	p.log.Value = process.Line{Timestamp: now, Data: line}
	p.log = p.log.Next()

	if !isStats {
		onLog := p.onLog
		p.lock.Unlock()
		if onLog != nil {
			onLog(process.Line{Timestamp: now, Data: line})
		}
		return 0
	}

	if m := p.re.frame.FindStringSubmatch(line); m != nil {
		if x, err := strconv.ParseUint(m[1], 10, 64); err == nil {
			p.stats.Frame = x
		}
	}
	if m := p.re.fps.FindStringSubmatch(line); m != nil {
		if x, err := strconv.ParseFloat(m[1], 64); err == nil {
			p.stats.Fps = x
		}
	}
	if m := p.re.quality.FindStringSubmatch(line); m != nil {
		if x, err := strconv.ParseFloat(m[1], 64); err == nil {
			p.stats.Quality = x
		}
	}
	if m := p.re.size.FindStringSubmatch(line); m != nil {
		if x, err := strconv.ParseUint(m[1], 10, 64); err == nil {
			p.stats.Size = x * 1024
		}
	}
	if m := p.re.sizeBytes.FindStringSubmatch(line); m != nil {
		if x, err := strconv.ParseUint(m[1], 10, 64); err == nil {
			p.stats.Size = x
		}
	}
	if m := p.re.time.FindStringSubmatch(line); m != nil {
		h, _ := strconv.Atoi(m[1])
		mm, _ := strconv.Atoi(m[2])
		s, _ := strconv.Atoi(m[3])
		frac := 0.0
		if len(m) > 4 && len(m[4]) > 0 {
			if x, err := strconv.ParseUint(m[4], 10, 64); err == nil {
				div := 1.0
				for range m[4] {
					div *= 10
				}
				frac = float64(x) / div
			}
		}
		p.stats.Time = float64(h*3600+mm*60+s) + frac
	}
	if m := p.re.timeMs.FindStringSubmatch(line); m != nil {
		if x, err := strconv.ParseUint(m[1], 10, 64); err == nil {
			p.stats.Time = float64(x) / 1000000.0 // out_time_ms 实为微秒
		}
	}
	if m := p.re.bitrate.FindStringSubmatch(line); m != nil {
		if x, err := strconv.ParseFloat(m[1], 64); err == nil {
			p.stats.Bitrate = x
		}
	}
	if m := p.re.speed.FindStringSubmatch(line); m != nil {
		if x, err := strconv.ParseFloat(m[1], 64); err == nil {
			p.stats.Speed = x
		}
	}
	if m := p.re.drop.FindStringSubmatch(line); m != nil {
		for i := 1; i < len(m); i++ {
			if m[i] != "" {
				if x, err := strconv.ParseUint(m[i], 10, 64); err == nil {
					p.stats.Drop = x
					break
				}
			}
		}
	}
	if m := p.re.dup.FindStringSubmatch(line); m != nil {
		for i := 1; i < len(m); i++ {
			if m[i] != "" {
				if x, err := strconv.ParseUint(m[i], 10, 64); err == nil {
					p.stats.Dup = x
					break
				}
			}
		}
	}

	stats := p.stats
	onStatistics := p.onStatistics
	frame := p.stats.Frame
	p.lock.Unlock()

	if onStatistics != nil {
		onStatistics(stats)
	}

	return frame
}

// isStatisticsLine matches both the classic aggregate stderr line
// ("frame= 123 fps= 25 ... speed=1.01x") and the key=value lines produced
// by the -progress flag.
func isStatisticsLine(line string) bool {
	if strings.Contains(line, "frame=") {
		return true
	}
	trimmed := strings.TrimSpace(line)
	for _, prefix := range []string{"fps=", "total_size=", "out_time_ms=", "out_time=", "bitrate=", "speed=", "progress=", "drop_frames=", "dup_frames="} {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	return false
}

func (p *parser) ResetStats() {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.stats = Statistics{}
}

func (p *parser) ResetLog() {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.log = ring.New(p.logLines)
}

func (p *parser) Log() []process.Line {
	var out []process.Line
	p.lock.RLock()
	p.log.Do(func(v interface{}) {
		if v != nil {
			out = append(out, v.(process.Line))
		}
	})
	p.lock.RUnlock()
	return out
}

func (p *parser) Statistics() Statistics {
	p.lock.RLock()
	defer p.lock.RUnlock()
	return p.stats
}
