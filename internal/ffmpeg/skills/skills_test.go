// Copyright (c) 2026 Kevin Zang (kevinzang). All rights reserved.
// Use of this source code is governed by the MIT License.
//
// FFmpegBridge - FFmpeg 执行桥接层

package skills

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const versionOutput = `ffmpeg version 6.1.1 Copyright (c) 2000-2023 the FFmpeg developers
built with gcc 13 (GCC)
configuration: --prefix=/usr --enable-gpl --enable-libx264
libavutil      58. 29.100 / 58. 29.100
libavcodec     60. 31.102 / 60. 31.102
libavformat    60. 16.100 / 60. 16.100
`

func TestParseVersion(t *testing.T) {
	info := parseVersion([]byte(versionOutput))

	assert.Equal(t, "6.1.1", info.Version)
	assert.Equal(t, "gcc 13 (GCC)", info.Compiler)
	assert.Equal(t, "--prefix=/usr --enable-gpl --enable-libx264", info.Configuration)

	require.Len(t, info.Libraries, 3)
	assert.Equal(t, "libavutil", info.Libraries[0].Name)
	assert.Equal(t, "58. 29.100", info.Libraries[0].Compiled)
}

func TestParseVersionPadsShortVersion(t *testing.T) {
	info := parseVersion([]byte("ffmpeg version 7.0 Copyright (c) 2000-2024 the FFmpeg developers\n"))
	assert.Equal(t, "7.0.0", info.Version)
}

func TestParseVersionGarbage(t *testing.T) {
	info := parseVersion([]byte("not ffmpeg at all\n"))
	assert.Equal(t, "", info.Version)
}

const codecsOutput = `Codecs:
 D..... = Decoding supported
 .E.... = Encoding supported
 ..V... = Video codec
 -------
 DEV.L. h264                 H.264 / AVC / MPEG-4 AVC / MPEG-4 part 10 (decoders: h264 h264_v4l2m2m ) (encoders: libx264 libx264rgb )
 DEA.L. aac                  AAC (Advanced Audio Coding)
 D.S... dvd_subtitle         DVD subtitles (decoders: dvdsub )
`

func TestParseCodecs(t *testing.T) {
	codecs := parseCodecs([]byte(codecsOutput))

	require.Len(t, codecs.Video, 1)
	assert.Equal(t, "h264", codecs.Video[0].Id)
	assert.Equal(t, []string{"h264", "h264_v4l2m2m"}, codecs.Video[0].Decoders)
	assert.Equal(t, []string{"libx264", "libx264rgb"}, codecs.Video[0].Encoders)

	require.Len(t, codecs.Audio, 1)
	assert.Equal(t, "aac", codecs.Audio[0].Id)
	assert.Equal(t, []string{"aac"}, codecs.Audio[0].Decoders)
	assert.Equal(t, []string{"aac"}, codecs.Audio[0].Encoders)

	require.Len(t, codecs.Subtitle, 1)
	assert.Equal(t, "dvd_subtitle", codecs.Subtitle[0].Id)
	assert.Empty(t, codecs.Subtitle[0].Encoders)
}

const protocolsOutput = `Supported file protocols:
Input:
  file
  http
Output:
  file
  rtmp
`

func TestParseProtocols(t *testing.T) {
	protocols := parseProtocols([]byte(protocolsOutput))

	require.Len(t, protocols.Input, 2)
	assert.Equal(t, "file", protocols.Input[0].Id)
	assert.Equal(t, "http", protocols.Input[1].Id)

	require.Len(t, protocols.Output, 2)
	assert.Equal(t, "rtmp", protocols.Output[1].Id)
}

const hwaccelsOutput = `Hardware acceleration methods:
vaapi
cuda
`

func TestParseHWAccels(t *testing.T) {
	accels := parseHWAccels([]byte(hwaccelsOutput))

	require.Len(t, accels, 2)
	assert.Equal(t, "vaapi", accels[0].Id)
	assert.Equal(t, "cuda", accels[1].Id)
}
