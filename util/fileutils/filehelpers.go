package fileutils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/mrnavastar/mcpm/util"
	"github.com/pterm/pterm"
)

// Progress observes a running download. Start is called once with the total
// size and the offset the transfer resumes from.
type Progress interface {
	Start(total int64, offset int64)
	Set(current int64)
	Stop()
}

// NewProgress creates the observer for one download.
type NewProgress func(title string) Progress

type barProgress struct {
	title string
	bar   *pterm.ProgressbarPrinter
	shown int64
}

// PtermProgress renders downloads as a pterm progress bar.
func PtermProgress(title string) Progress {
	return &barProgress{title: title}
}

func (p *barProgress) Start(total int64, offset int64) {
	if total <= 0 {
		return
	}
	bar, err := pterm.DefaultProgressbar.WithTotal(int(total)).WithTitle(p.title).Start()
	if err != nil {
		return
	}
	p.bar = bar
	p.Set(offset)
}

func (p *barProgress) Set(current int64) {
	if p.bar == nil || current <= p.shown {
		return
	}
	p.bar.Add(int(current - p.shown))
	p.shown = current
}

func (p *barProgress) Stop() {
	if p.bar != nil {
		p.bar.Stop()
	}
}

// WriteCounter tracks bytes written to the destination file and forwards a
// monotonic position, capped at Total, to a Progress.
type WriteCounter struct {
	Total    int64
	Size     int64
	progress Progress
}

func (wc *WriteCounter) Write(p []byte) (int, error) {
	n := len(p)
	wc.Size = min(wc.Size+int64(n), wc.Total)
	wc.progress.Set(wc.Size)
	return n, nil
}

// Downloader streams artifacts to disk and resumes from partial files.
type Downloader struct {
	client   *resty.Client
	progress NewProgress
}

func NewDownloader(client *resty.Client, progress NewProgress) *Downloader {
	if client == nil {
		client = resty.New()
	}
	if progress == nil {
		progress = PtermProgress
	}
	return &Downloader{client: client, progress: progress}
}

var contentRange = regexp.MustCompile(`^bytes (?:\*|(\d+)-\d+)/(\d+)$`)

// Download fetches url into dest. An existing file at dest is treated as a
// prefix of the remote content and only the remaining bytes are requested.
// On failure the partial file is left in place for the next attempt.
func (d *Downloader) Download(ctx context.Context, url string, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return util.FileSystemError("create mods directory", err)
	}

	var offset int64
	if info, err := os.Stat(dest); err == nil {
		offset = info.Size()
	} else if !errors.Is(err, os.ErrNotExist) {
		return util.FileSystemError("stat "+dest, err)
	}

	resp, err := d.get(ctx, url, offset)
	if err != nil {
		return err
	}
	body := resp.RawBody()
	defer body.Close()

	flags := os.O_CREATE | os.O_WRONLY
	switch {
	case offset > 0 && resp.StatusCode() == http.StatusRequestedRangeNotSatisfiable:
		if total, ok := rangeTotal(resp); ok && total == offset {
			return nil
		}
		// the partial file is longer than the remote content
		body.Close()
		return d.restart(ctx, url, dest)
	case offset > 0 && resp.StatusCode() == http.StatusPartialContent:
		if start, ok := rangeStart(resp); !ok || start != offset {
			body.Close()
			return d.restart(ctx, url, dest)
		}
		flags |= os.O_APPEND
	case resp.IsError():
		return util.NetworkError("download "+url, fmt.Errorf("unexpected response %s", resp.Status()))
	default:
		// fresh download, or the server ignored the range
		offset = 0
		flags |= os.O_TRUNC
	}

	length := resp.RawResponse.ContentLength
	if length < 0 {
		length, err = strconv.ParseInt(resp.Header().Get("Content-Length"), 10, 64)
		if err != nil {
			return util.NetworkError("download "+url, util.ErrMissingContentLength)
		}
	}
	total := offset + length

	file, err := os.OpenFile(dest, flags, 0644)
	if err != nil {
		return util.FileSystemError("open "+dest, err)
	}
	defer file.Close()

	progress := d.progress("Downloading " + filepath.Base(dest))
	progress.Start(total, offset)
	defer progress.Stop()

	counter := &WriteCounter{Total: total, Size: offset, progress: progress}
	if _, err := io.Copy(io.MultiWriter(file, counter), body); err != nil {
		var pathErr *os.PathError
		if errors.As(err, &pathErr) {
			return util.FileSystemError("write "+dest, err)
		}
		return util.NetworkError("download "+url, err)
	}
	return nil
}

func (d *Downloader) get(ctx context.Context, url string, offset int64) (*resty.Response, error) {
	req := d.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true)
	if offset > 0 {
		req.SetHeader("Range", fmt.Sprintf("bytes=%d-", offset))
	}
	resp, err := req.Get(url)
	if err != nil {
		return nil, util.NetworkError("download "+url, err)
	}
	return resp, nil
}

// restart drops the partial file and fetches url from the first byte.
func (d *Downloader) restart(ctx context.Context, url string, dest string) error {
	if err := os.Truncate(dest, 0); err != nil {
		return util.FileSystemError("truncate "+dest, err)
	}
	return d.Download(ctx, url, dest)
}

func rangeStart(resp *resty.Response) (int64, bool) {
	m := contentRange.FindStringSubmatch(resp.Header().Get("Content-Range"))
	if m == nil || m[1] == "" {
		return 0, false
	}
	start, err := strconv.ParseInt(m[1], 10, 64)
	return start, err == nil
}

func rangeTotal(resp *resty.Response) (int64, bool) {
	m := contentRange.FindStringSubmatch(resp.Header().Get("Content-Range"))
	if m == nil {
		return 0, false
	}
	total, err := strconv.ParseInt(m[2], 10, 64)
	return total, err == nil
}
