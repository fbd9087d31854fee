// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFmpegBridge - FFmpeg 执行桥接层

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ZSC714725/ffmpegbridge/internal/ffmpeg/skills"
)

// SkillsLibrary in API format
type SkillsLibrary struct {
	Name     string `json:"name"`
	Compiled string `json:"compiled"`
	Linked   string `json:"linked"`
}

// SkillsCodec in API format
type SkillsCodec struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Encoders []string `json:"encoders,omitempty"`
	Decoders []string `json:"decoders,omitempty"`
}

// SkillsResponse is the probe surface of the wrapped binary
type SkillsResponse struct {
	Version       string          `json:"version"`
	Compiler      string          `json:"compiler"`
	Configuration string          `json:"configuration"`
	Libraries     []SkillsLibrary `json:"libraries"`
	HWAccels      []string        `json:"hwaccels"`
	Codecs        struct {
		Audio    []SkillsCodec `json:"audio"`
		Video    []SkillsCodec `json:"video"`
		Subtitle []SkillsCodec `json:"subtitle"`
	} `json:"codecs"`
	Protocols struct {
		Input  []string `json:"input"`
		Output []string `json:"output"`
	} `json:"protocols"`
}

// Skills GET /api/v1/skills
func (h *Handler) Skills(c *gin.Context) {
	c.JSON(http.StatusOK, skillsToAPI(h.engine.Skills()))
}

// ReloadSkills POST /api/v1/skills/reload
func (h *Handler) ReloadSkills(c *gin.Context) {
	if err := h.engine.ReloadSkills(); err != nil {
		errResp(c, http.StatusInternalServerError, "Reload failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, skillsToAPI(h.engine.Skills()))
}

func skillsToAPI(s skills.Skills) SkillsResponse {
	out := SkillsResponse{
		Version:       s.FFmpeg.Version,
		Compiler:      s.FFmpeg.Compiler,
		Configuration: s.FFmpeg.Configuration,
	}

	for _, l := range s.FFmpeg.Libraries {
		out.Libraries = append(out.Libraries, SkillsLibrary{Name: l.Name, Compiled: l.Compiled, Linked: l.Linked})
	}
	for _, a := range s.HWAccels {
		out.HWAccels = append(out.HWAccels, a.Id)
	}

	out.Codecs.Audio = codecsToAPI(s.Codecs.Audio)
	out.Codecs.Video = codecsToAPI(s.Codecs.Video)
	out.Codecs.Subtitle = codecsToAPI(s.Codecs.Subtitle)

	for _, p := range s.Protocols.Input {
		out.Protocols.Input = append(out.Protocols.Input, p.Id)
	}
	for _, p := range s.Protocols.Output {
		out.Protocols.Output = append(out.Protocols.Output, p.Id)
	}

	return out
}

func codecsToAPI(codecs []skills.Codec) []SkillsCodec {
	out := make([]SkillsCodec, 0, len(codecs))
	for _, c := range codecs {
		out = append(out, SkillsCodec{ID: c.Id, Name: c.Name, Encoders: c.Encoders, Decoders: c.Decoders})
	}
	return out
}
