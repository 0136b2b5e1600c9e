package scraper

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// fieldStrategy looks for one field's value inside sel and reports whether it
// found an acceptable one
type fieldStrategy func(sel *goquery.Selection) (string, bool)

// firstMatch runs strategies in order and returns the first value found
func firstMatch(sel *goquery.Selection, strategies []fieldStrategy) (string, bool) {
	for _, strategy := range strategies {
		if v, ok := strategy(sel); ok {
			return v, true
		}
	}
	return "", false
}

// firstText matches the first element for selector whose trimmed text is
// non-empty and passes every accept check
func firstText(selector string, accept ...func(string) bool) fieldStrategy {
	return func(sel *goquery.Selection) (string, bool) {
		var (
			found string
			ok    bool
		)
		sel.Find(selector).EachWithBreak(func(_ int, el *goquery.Selection) bool {
			text := strings.TrimSpace(el.Text())
			if text == "" || !acceptAll(text, accept) {
				return true
			}
			found, ok = text, true
			return false
		})
		return found, ok
	}
}

// firstAttr matches the first element for selector with a non-empty attr
func firstAttr(selector, attr string) fieldStrategy {
	return func(sel *goquery.Selection) (string, bool) {
		var (
			found string
			ok    bool
		)
		sel.Find(selector).EachWithBreak(func(_ int, el *goquery.Selection) bool {
			v := strings.TrimSpace(el.AttrOr(attr, ""))
			if v == "" {
				return true
			}
			found, ok = v, true
			return false
		})
		return found, ok
	}
}

// contentOrText matches the first element for selector that carries either a
// metadata content attribute or text. Content wins when both are present.
func contentOrText(selector string) fieldStrategy {
	return func(sel *goquery.Selection) (string, bool) {
		var (
			found string
			ok    bool
		)
		sel.Find(selector).EachWithBreak(func(_ int, el *goquery.Selection) bool {
			if content := strings.TrimSpace(el.AttrOr("content", "")); content != "" {
				found, ok = content, true
				return false
			}
			if text := strings.TrimSpace(el.Text()); text != "" {
				found, ok = text, true
				return false
			}
			return true
		})
		return found, ok
	}
}

// firstImageSource matches the src of the first img element
func firstImageSource(sel *goquery.Selection) (string, bool) {
	src := strings.TrimSpace(sel.Find("img").First().AttrOr("src", ""))
	return src, src != ""
}

func acceptAll(text string, accept []func(string) bool) bool {
	for _, fn := range accept {
		if !fn(text) {
			return false
		}
	}
	return true
}

func shorterThan(n int) func(string) bool {
	return func(s string) bool {
		return utf8.RuneCountInString(s) < n
	}
}

func longerThan(n int) func(string) bool {
	return func(s string) bool {
		return utf8.RuneCountInString(s) > n
	}
}

func singleLine(s string) bool {
	return !strings.Contains(s, "\n")
}
