package transcode

import (
	"fmt"
	"strings"

	"github.com/edmetrics/lessons-media-go/internal/model"
)

// BuildMasterPlaylist renders the adaptive manifest referencing each
// completed tier's playlist by relative path. Bandwidth is the summed
// video and audio bitrate in bits per second.
func BuildMasterPlaylist(tiers []model.QualityTier) string {
	var b strings.Builder
	b.WriteString("#EXTM3U\n")
	b.WriteString("#EXT-X-VERSION:3\n")
	for _, t := range tiers {
		bandwidth := (t.VideoBitrate + t.AudioBitrate) * 1000
		fmt.Fprintf(&b, "#EXT-X-STREAM-INF:BANDWIDTH=%d,RESOLUTION=%dx%d,NAME=%q\n", bandwidth, t.Width, t.Height, t.Label)
		fmt.Fprintf(&b, "%s/playlist.m3u8\n", t.Label)
	}
	return b.String()
}
