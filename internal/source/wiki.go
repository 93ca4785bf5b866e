package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ivlev/vhstape/internal/config"
	"github.com/ivlev/vhstape/internal/theme"
)

const (
	wikiAPIFormat  = "https://%s.wikipedia.org/w/api.php"
	commonsAPI     = "https://commons.wikimedia.org/w/api.php"
	thumbWidth     = 1400
	pickedTitles   = 3
	searchLimit    = 8
	maxImageBytes  = 16 << 20
	commonsFileNS  = "6"
	imageListLimit = "50"
)

// WikiProvider scrapes Wikipedia text and Wikimedia Commons images
type WikiProvider struct {
	cfg        config.ScrapeConfig
	httpClient *http.Client
	logger     *slog.Logger

	// overridable in tests
	WikiAPI    string
	CommonsAPI string
}

func NewWikiProvider(cfg config.ScrapeConfig, logger *slog.Logger) *WikiProvider {
	timeout := time.Duration(cfg.TimeoutS * float64(time.Second))
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	lang := cfg.WikipediaLang
	if lang == "" {
		lang = "en"
	}
	return &WikiProvider{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		WikiAPI:    fmt.Sprintf(wikiAPIFormat, lang),
		CommonsAPI: commonsAPI,
	}
}

func (w *WikiProvider) Fetch(ctx context.Context, th *theme.Theme, workDir string) *Bundle {
	rng := theme.NewRand(th.RngInt)

	titles := w.searchTitles(ctx, th)
	rng.Shuffle(len(titles), func(i, j int) { titles[i], titles[j] = titles[j], titles[i] })
	if len(titles) > pickedTitles {
		titles = titles[:pickedTitles]
	}

	b := &Bundle{Titles: titles}
	imgDir := filepath.Join(workDir, "imgs")
	if err := os.MkdirAll(imgDir, 0755); err != nil {
		w.logger.Warn("image dir unavailable", "err", err)
		imgDir = ""
	}

	for _, t := range titles {
		extract, err := w.extract(ctx, t)
		if err != nil {
			w.logger.Warn("wiki extract failed", "title", t, "err", err)
		} else {
			b.Paragraphs = append(b.Paragraphs, PickParagraphs(extract, w.cfg.MaxWikiParagraphs)...)
		}

		if !w.wantImages(b) || imgDir == "" {
			continue
		}
		urls, err := w.pageImages(ctx, t)
		if err != nil {
			w.logger.Warn("wiki images failed", "title", t, "err", err)
			continue
		}
		w.downloadAll(ctx, rng, urls, imgDir, b)
	}

	if len(b.Images) == 0 && w.wantImages(b) && w.cfg.CommonsSearchFallback && imgDir != "" {
		urls, err := w.commonsSearch(ctx, th.Anchor)
		if err != nil {
			w.logger.Warn("commons search failed", "query", th.Anchor, "err", err)
		} else {
			w.downloadAll(ctx, rng, urls, imgDir, b)
		}
	}

	return b
}

// wantImages reports whether b still has room for downloads; max_images 0
// disables images altogether
func (w *WikiProvider) wantImages(b *Bundle) bool {
	return w.cfg.AllowWikimedia && len(b.Images) < w.cfg.MaxImages
}

func (w *WikiProvider) searchTitles(ctx context.Context, th *theme.Theme) []string {
	for _, q := range []string{th.Anchor, th.Keyword} {
		titles, err := w.search(ctx, q)
		if err != nil {
			w.logger.Warn("wiki search failed", "query", q, "err", err)
			continue
		}
		if len(titles) > 0 {
			return titles
		}
	}
	return append([]string(nil), FallbackTitles...)
}

func (w *WikiProvider) downloadAll(ctx context.Context, rng *rand.Rand, urls []string, dir string, b *Bundle) {
	rng.Shuffle(len(urls), func(i, j int) { urls[i], urls[j] = urls[j], urls[i] })
	for _, u := range urls {
		if len(b.Images) >= w.cfg.MaxImages {
			return
		}
		out := filepath.Join(dir, fmt.Sprintf("img_%02d%s", len(b.Images), imageExt(u)))
		if err := w.download(ctx, u, out); err != nil {
			w.logger.Warn("image download failed", "url", u, "err", err)
			continue
		}
		b.Images = append(b.Images, out)
		b.ImageURLs = append(b.ImageURLs, u)
	}
}

type queryResponse struct {
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
		Pages map[string]struct {
			Title   string `json:"title"`
			Extract string `json:"extract"`
			Images  []struct {
				Title string `json:"title"`
			} `json:"images"`
			ImageInfo []struct {
				URL      string `json:"url"`
				ThumbURL string `json:"thumburl"`
			} `json:"imageinfo"`
		} `json:"pages"`
	} `json:"query"`
}

func (w *WikiProvider) search(ctx context.Context, query string) ([]string, error) {
	var resp queryResponse
	err := w.get(ctx, w.WikiAPI, url.Values{
		"action":   {"query"},
		"list":     {"search"},
		"srsearch": {query},
		"srlimit":  {fmt.Sprint(searchLimit)},
		"format":   {"json"},
	}, &resp)
	if err != nil {
		return nil, err
	}
	var titles []string
	for _, s := range resp.Query.Search {
		titles = append(titles, s.Title)
	}
	return titles, nil
}

func (w *WikiProvider) extract(ctx context.Context, title string) (string, error) {
	var resp queryResponse
	err := w.get(ctx, w.WikiAPI, url.Values{
		"action":      {"query"},
		"prop":        {"extracts"},
		"explaintext": {"1"},
		"titles":      {title},
		"format":      {"json"},
	}, &resp)
	if err != nil {
		return "", err
	}
	for _, p := range resp.Query.Pages {
		return p.Extract, nil
	}
	return "", nil
}

func (w *WikiProvider) pageImages(ctx context.Context, title string) ([]string, error) {
	var resp queryResponse
	err := w.get(ctx, w.WikiAPI, url.Values{
		"action":  {"query"},
		"titles":  {title},
		"prop":    {"images"},
		"imlimit": {imageListLimit},
		"format":  {"json"},
	}, &resp)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, p := range resp.Query.Pages {
		for _, img := range p.Images {
			if isRasterName(img.Title) {
				files = append(files, img.Title)
			}
		}
	}

	limit := w.cfg.MaxImages * 3
	var urls []string
	for i, name := range files {
		if i >= limit {
			break
		}
		u, err := w.thumbURL(ctx, name)
		if err != nil {
			w.logger.Debug("imageinfo failed", "file", name, "err", err)
			continue
		}
		if u != "" {
			urls = append(urls, u)
		}
		if len(urls) >= w.cfg.MaxImages {
			break
		}
	}
	return urls, nil
}

func (w *WikiProvider) commonsSearch(ctx context.Context, query string) ([]string, error) {
	var resp queryResponse
	err := w.get(ctx, w.CommonsAPI, url.Values{
		"action":      {"query"},
		"list":        {"search"},
		"srsearch":    {query},
		"srnamespace": {commonsFileNS},
		"srlimit":     {fmt.Sprint(searchLimit)},
		"format":      {"json"},
	}, &resp)
	if err != nil {
		return nil, err
	}

	var urls []string
	for _, s := range resp.Query.Search {
		if !isRasterName(s.Title) {
			continue
		}
		u, err := w.thumbURL(ctx, s.Title)
		if err != nil || u == "" {
			continue
		}
		urls = append(urls, u)
	}
	return urls, nil
}

func (w *WikiProvider) thumbURL(ctx context.Context, file string) (string, error) {
	var resp queryResponse
	err := w.get(ctx, w.CommonsAPI, url.Values{
		"action":     {"query"},
		"titles":     {file},
		"prop":       {"imageinfo"},
		"iiprop":     {"url"},
		"iiurlwidth": {fmt.Sprint(thumbWidth)},
		"format":     {"json"},
	}, &resp)
	if err != nil {
		return "", err
	}
	for _, p := range resp.Query.Pages {
		if len(p.ImageInfo) == 0 {
			continue
		}
		if p.ImageInfo[0].ThumbURL != "" {
			return p.ImageInfo[0].ThumbURL, nil
		}
		return p.ImageInfo[0].URL, nil
	}
	return "", nil
}

func (w *WikiProvider) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	w.setHeaders(req)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d from %s", resp.StatusCode, endpoint)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (w *WikiProvider) download(ctx context.Context, u, out string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	w.setHeaders(req)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	_, err = io.Copy(f, io.LimitReader(resp.Body, maxImageBytes))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(out)
	}
	return err
}

func (w *WikiProvider) setHeaders(req *http.Request) {
	if w.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", w.cfg.UserAgent)
	}
}

func isRasterName(name string) bool {
	n := strings.ToLower(name)
	return strings.HasSuffix(n, ".jpg") || strings.HasSuffix(n, ".jpeg") || strings.HasSuffix(n, ".png")
}

func imageExt(u string) string {
	if parsed, err := url.Parse(u); err == nil {
		ext := strings.ToLower(filepath.Ext(parsed.Path))
		switch ext {
		case ".jpg", ".jpeg", ".png", ".webp":
			return ext
		}
	}
	return ".jpg"
}
