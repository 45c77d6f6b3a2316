package nestedarchive

import (
	"context"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/archscan/classpathfs/classpatherr"
)

// HTTPDoer is the collaborator interface needed to download remote
// archive roots, satisfied by *http.Client and easy to fake in tests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

func defaultHTTPClient() HTTPDoer {
	return &http.Client{Timeout: 5 * time.Minute}
}

// isRemote reports whether raw names a remote archive root.
func isRemote(raw string) bool {
	return strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://")
}

// downloadRemote fetches url to a registered temp file and returns its
// path. Any partial file is deleted (and forgotten by the registry) on
// failure.
func (h *Handler) downloadRemote(ctx context.Context, url string) (string, error) {
	leaf := path.Base(url)
	if leaf == "" || leaf == "/" || leaf == "." {
		leaf = "remote-archive"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", classpatherr.Wrap(err, classpatherr.CodeNotFound, "nestedarchive.downloadRemote", url)
	}
	resp, err := h.httpClient.Do(req)
	if err != nil {
		return "", classpatherr.Wrap(err, classpatherr.CodeNotFound, "nestedarchive.downloadRemote", url)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", classpatherr.Newf(classpatherr.CodeNotFound, "nestedarchive.downloadRemote", url, "unexpected status %d", resp.StatusCode)
	}

	f, err := h.tempFiles.create(leaf)
	if err != nil {
		return "", classpatherr.Wrap(err, classpatherr.CodeExtraction, "nestedarchive.downloadRemote", url)
	}
	name := f.Name()

	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = f.Close()
		h.tempFiles.forget(name)
		_ = removeIgnoreNotExist(name)
		return "", classpatherr.Wrap(err, classpatherr.CodeExtraction, "nestedarchive.downloadRemote", url)
	}
	if err := f.Close(); err != nil {
		h.tempFiles.forget(name)
		_ = removeIgnoreNotExist(name)
		return "", classpatherr.Wrap(err, classpatherr.CodeExtraction, "nestedarchive.downloadRemote", url)
	}
	return name, nil
}
