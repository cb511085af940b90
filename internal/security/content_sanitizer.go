package security

import (
	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizer はノート本文のサニタイズ機能のインターフェースを定義する。
// 公開ノートは第三者のブラウザでレンダリングされ得るため、
// 保存前にHTMLをサニタイズしてXSSを防ぐ。
type ContentSanitizer interface {
	// SanitizeContent は本文をサニタイズして安全なHTMLを返す。
	// 許可タグ（p, br, a, ul, ol, li, blockquote, pre, code, strong, em,
	// h1〜h3）のみを通過させ、scriptタグやon*イベント属性を除去する。
	// 空文字列の入力には空文字列を返す。同一入力には常に同一出力を返す。
	SanitizeContent(raw string) string

	// SanitizeTitle はタイトルからすべてのHTMLタグを除去し、
	// プレーンテキストのみを返す。
	SanitizeTitle(raw string) string
}

// noteSanitizer はContentSanitizerの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type noteSanitizer struct {
	content *bluemonday.Policy
	title   *bluemonday.Policy
}

// NewContentSanitizer はContentSanitizerの新しいインスタンスを生成する。
// 本文用の許可リストベースのポリシーと、タイトル用の全タグ除去ポリシーを構築する。
func NewContentSanitizer() *noteSanitizer {
	p := bluemonday.NewPolicy()

	// 許可タグ（属性なしのシンプルなタグ）。
	// scriptやiframe、on*イベント属性は許可リストに含めないことで除去される。
	p.AllowElements(
		"p", "br", "ul", "ol", "li",
		"blockquote", "pre", "code",
		"strong", "em",
		"h1", "h2", "h3",
	)

	// aタグはhref属性のみ許可し、リンクには
	// target="_blank" と rel="noopener noreferrer" を強制付与する。
	p.AllowAttrs("href").OnElements("a")
	p.AllowRelativeURLs(false)
	p.AllowURLSchemes("http", "https")
	p.RequireNoFollowOnLinks(false)
	p.AddTargetBlankToFullyQualifiedLinks(true)

	return &noteSanitizer{
		content: p,
		title:   bluemonday.StrictPolicy(),
	}
}

// SanitizeContent は本文をサニタイズして安全なHTMLを返す。
func (s *noteSanitizer) SanitizeContent(raw string) string {
	return s.content.Sanitize(raw)
}

// SanitizeTitle はタイトルからすべてのHTMLタグを除去する。
func (s *noteSanitizer) SanitizeTitle(raw string) string {
	return s.title.Sanitize(raw)
}

// compile-time interface check
var _ ContentSanitizer = (*noteSanitizer)(nil)
