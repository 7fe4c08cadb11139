package treeclient

import (
	"net/url"
	"strconv"
	"strings"
)

// DocumentURL returns the content url of a document, relative to the
// backend origin. The viewer session is keyed by this url.
func DocumentURL(id string) string {
	return "/api/tree/" + url.PathEscape(id) + "/pdf"
}

// ThumbnailURL returns the thumbnail url of a 0-indexed page of a document.
func ThumbnailURL(id string, pageIndex int) string {
	return "/api/tree/" + url.PathEscape(id) + "/thumbnail/" + strconv.Itoa(pageIndex)
}

// ItemIDFromURL extracts the item id from a document url produced by
// DocumentURL, absolute or relative. Returns "" if the url does not name a
// tree item.
func ItemIDFromURL(docURL string) string {
	path := docURL
	if u, err := url.Parse(docURL); err == nil {
		path = u.EscapedPath()
	}

	const prefix = "/api/tree/"
	idx := strings.Index(path, prefix)
	if idx < 0 {
		return ""
	}

	rest := path[idx+len(prefix):]
	if slash := strings.IndexByte(rest, '/'); slash >= 0 {
		rest = rest[:slash]
	}
	if rest == "" {
		return ""
	}

	id, err := url.PathUnescape(rest)
	if err != nil {
		return ""
	}
	return id
}
