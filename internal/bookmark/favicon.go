package bookmark

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hitoshi/lifehub/internal/model"
	"github.com/hitoshi/lifehub/internal/security"
	"golang.org/x/net/html"
)

// maxHTMLSize はfavicon検出のために読み込むHTMLの最大サイズ（512KB）。
const maxHTMLSize = 512 * 1024

// faviconTimeout はfavicon検出のタイムアウト。
const faviconTimeout = 5 * time.Second

// FaviconResolverService はブックマーク対象サイトのfavicon URL解決のインターフェース。
// クライアントがiconフィールドの初期値を取得するために使用する。
type FaviconResolverService interface {
	// ResolveFaviconURL はサイトURLからfaviconの絶対URLを解決する。
	// HTMLの<link rel="icon">を探し、見つからない場合は/favicon.icoにフォールバックする。
	ResolveFaviconURL(ctx context.Context, siteURL string) (string, error)
}

// FaviconResolver はFaviconResolverServiceの実装。
// 外部サイトへのアクセスはSSRF防止機能付きクライアントで行う。
type FaviconResolver struct {
	guard security.URLGuardService
}

// NewFaviconResolver はFaviconResolverを生成する。
func NewFaviconResolver(guard security.URLGuardService) *FaviconResolver {
	return &FaviconResolver{
		guard: guard,
	}
}

// ResolveFaviconURL はサイトURLからfaviconの絶対URLを解決する。
// サイトのHTML取得に失敗した場合もエラーにせず、/favicon.icoへフォールバックする。
func (f *FaviconResolver) ResolveFaviconURL(ctx context.Context, siteURL string) (string, error) {
	// 1. 対象URLの安全性を検証（プライベートIP等へのアクセスを拒否）
	if err := f.guard.ValidateFetchURL(siteURL); err != nil {
		return "", model.NewValidationError(map[string]string{
			"url": "有効なURL形式（http:// または https:// で始まるURL）を入力してください。",
		})
	}

	baseU, err := url.Parse(siteURL)
	if err != nil {
		return "", model.NewValidationError(map[string]string{
			"url": "有効なURL形式（http:// または https:// で始まるURL）を入力してください。",
		})
	}

	// 2. サイトのHTMLからlink rel="icon"を探す
	if iconURL := f.findIconLink(ctx, baseU); iconURL != "" {
		return iconURL, nil
	}

	// 3. フォールバック: /favicon.ico
	return defaultFaviconURL(baseU), nil
}

// findIconLink はサイトのHTMLを取得し、headのlink rel="icon"からfavicon URLを解決する。
// 取得失敗・検出失敗時は空文字列を返す（呼び出し側でフォールバックする）。
func (f *FaviconResolver) findIconLink(ctx context.Context, baseU *url.URL) string {
	client := f.guard.NewSafeClient(faviconTimeout)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseU.String(), nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", "Lifehub/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ""
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxHTMLSize))
	if err != nil {
		return ""
	}

	return parseIconLinkFromHTML(body, baseU)
}

// parseIconLinkFromHTML はHTMLのheadタグからlink rel="icon"を解析する。
// 相対URLはbaseUを基準に絶対URLに解決される。
func parseIconLinkFromHTML(htmlBody []byte, baseU *url.URL) string {
	tokenizer := html.NewTokenizer(bytes.NewReader(htmlBody))
	inHead := false

	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return ""

		case html.StartTagToken, html.SelfClosingTagToken:
			tn, hasAttr := tokenizer.TagName()
			tagName := string(tn)

			if tagName == "head" {
				inHead = true
				continue
			}

			if tagName == "body" {
				// bodyに入ったらheadの解析を終了
				return ""
			}

			if !inHead || tagName != "link" || !hasAttr {
				continue
			}

			var rel, href string
			for {
				key, val, more := tokenizer.TagAttr()
				switch strings.ToLower(string(key)) {
				case "rel":
					rel = strings.ToLower(string(val))
				case "href":
					href = string(val)
				}
				if !more {
					break
				}
			}

			// rel="icon"、rel="shortcut icon"、rel="apple-touch-icon"等を対象
			if href == "" || !strings.Contains(rel, "icon") {
				continue
			}

			ref, err := url.Parse(href)
			if err != nil {
				continue
			}
			return baseU.ResolveReference(ref).String()

		case html.EndTagToken:
			tn, _ := tokenizer.TagName()
			if string(tn) == "head" {
				return ""
			}
		}
	}
}

// defaultFaviconURL はサイトURLからデフォルトのfavicon URLを組み立てる。
func defaultFaviconURL(baseU *url.URL) string {
	return fmt.Sprintf("%s://%s/favicon.ico", baseU.Scheme, baseU.Host)
}

// compile-time interface check
var _ FaviconResolverService = (*FaviconResolver)(nil)
