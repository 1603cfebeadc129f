package adapter_bubbletea

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/nfnt/resize"

	"github.com/ionut-t/mdlive/config"
)

const maxImageBytes = 16 << 20

var (
	errRemoteImagesDisabled = errors.New("remote images are disabled")
	errUnsupportedScheme    = errors.New("unsupported image location")
	errEmptyLocation        = errors.New("empty image location")
)

type imageLoadedMsg struct {
	url  string
	rows []string
	err  error
}

type imageEntry struct {
	rows    []string
	err     error
	loading bool
}

// imageRenderer loads image widgets and renders them as half-block rows.
// entries is only touched from the update loop.
type imageRenderer struct {
	cfg     config.Images
	baseDir string
	client  *retryablehttp.Client
	entries map[string]*imageEntry
}

func newImageRenderer(cfg config.Images, baseDir string, logger *slog.Logger) *imageRenderer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.HTTPClient.Timeout = cfg.Timeout.Std()
	client.Logger = logger

	return &imageRenderer{
		cfg:     cfg,
		baseDir: baseDir,
		client:  client,
		entries: make(map[string]*imageEntry),
	}
}

func (r *imageRenderer) entry(location string) (*imageEntry, bool) {
	e, ok := r.entries[location]
	return e, ok
}

// request starts loading location unless it was requested before.
func (r *imageRenderer) request(location string) tea.Cmd {
	if !r.cfg.Enabled {
		return nil
	}
	if _, ok := r.entries[location]; ok {
		return nil
	}
	r.entries[location] = &imageEntry{loading: true}

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), r.cfg.Timeout.Std())
		defer cancel()

		img, err := r.load(ctx, location)
		if err != nil {
			return imageLoadedMsg{url: location, err: err}
		}
		thumb := resize.Thumbnail(uint(r.cfg.MaxWidth), uint(r.cfg.MaxHeight*2), img, resize.Lanczos3)
		return imageLoadedMsg{url: location, rows: renderHalfBlocks(thumb)}
	}
}

func (r *imageRenderer) store(msg imageLoadedMsg) {
	r.entries[msg.url] = &imageEntry{rows: msg.rows, err: msg.err}
}

func (r *imageRenderer) load(ctx context.Context, location string) (image.Image, error) {
	rc, err := r.open(ctx, location)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	img, _, err := image.Decode(io.LimitReader(rc, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", location, err)
	}
	return img, nil
}

func (r *imageRenderer) open(ctx context.Context, location string) (io.ReadCloser, error) {
	if strings.TrimSpace(location) == "" {
		return nil, errEmptyLocation
	}
	parsed, err := url.Parse(location)
	if err != nil {
		return nil, err
	}

	switch parsed.Scheme {
	case "", "file":
		path := parsed.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(r.baseDir, path)
		}
		return os.Open(path)

	case "http", "https":
		if !r.cfg.FetchRemote {
			return nil, errRemoteImagesDisabled
		}
		req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, location, nil)
		if err != nil {
			return nil, err
		}
		resp, err := r.client.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("fetching %s: %s", location, resp.Status)
		}
		return resp.Body, nil

	default:
		return nil, fmt.Errorf("%w: %q", errUnsupportedScheme, parsed.Scheme)
	}
}

// renderHalfBlocks draws two pixel rows per terminal row using the upper
// half block with foreground for the top pixel and background for the bottom.
func renderHalfBlocks(img image.Image) []string {
	bounds := img.Bounds()
	rows := make([]string, 0, (bounds.Dy()+1)/2)

	for y := bounds.Min.Y; y < bounds.Max.Y; y += 2 {
		var sb strings.Builder
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			style := lipgloss.NewStyle().Foreground(hexColor(img.At(x, y)))
			if y+1 < bounds.Max.Y {
				style = style.Background(hexColor(img.At(x, y+1)))
			}
			sb.WriteString(style.Render("▀"))
		}
		rows = append(rows, sb.String())
	}
	return rows
}

func hexColor(c color.Color) lipgloss.Color {
	r, g, b, _ := c.RGBA()
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8))
}
