package search

import (
	"fmt"
	"net/url"
	"strings"

	apperrors "github.com/JoaquinMayer/youtube-channel-search/internal/core/errors"
)

const (
	channelIDPrefix    = "UC"
	relatedQueryWords  = 3
	channelPathSegment = "channel"
)

// ChannelRef is a parsed channel URL: either a raw channel id or a @handle
// that still needs resolving.
type ChannelRef struct {
	ID     string
	Handle string
}

// ParseChannelURL extracts a channel reference from a YouTube channel URL.
// Supported formats: youtube.com/channel/UC… and youtube.com/@handle. A
// /channel/ segment that is not a UC id is a legacy username and still needs
// resolving.
func ParseChannelURL(rawURL string) (ChannelRef, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ChannelRef{}, fmt.Errorf("%w: channel url %q", apperrors.ErrInvalidInput, rawURL)
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")

	for i, segment := range segments {
		if segment == channelPathSegment && i+1 < len(segments) && segments[i+1] != "" {
			if strings.HasPrefix(segments[i+1], channelIDPrefix) {
				return ChannelRef{ID: segments[i+1]}, nil
			}

			return ChannelRef{Handle: segments[i+1]}, nil
		}
	}

	if len(segments) > 0 && strings.HasPrefix(segments[0], "@") && len(segments[0]) > 1 {
		return ChannelRef{Handle: segments[0][1:]}, nil
	}

	return ChannelRef{}, fmt.Errorf("%w: unrecognized channel url format %q", apperrors.ErrInvalidInput, rawURL)
}

// relatedQuery builds the search query for related channels from the source
// channel's extracted keywords.
func relatedQuery(keywords []string) string {
	n := min(relatedQueryWords, len(keywords))

	return strings.Join(keywords[:n], " ")
}
