// Package util provides content hashing, input sanitization and front matter parsing.
package util

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gomarkdown/markdown"
	"github.com/microcosm-cc/bluemonday"
	"github.com/mmarkdown/mmark/v2/mast"
)

var ErrNoFrontMatter = errors.New("invalid front matter format")

func ContentHash(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}

func ContentHashString(content string) string {
	return ContentHash([]byte(content))
}

var strictPolicy = bluemonday.StrictPolicy()

// maxSanitizePasses bounds the decode loop in Sanitize.
const maxSanitizePasses = 64

// Sanitize strips every HTML element (and the bodies of script/style) from s
// and trims surrounding whitespace. Entities are decoded between passes until
// the text stops changing, so escaped markup cannot survive as text. Input
// still decoding after maxSanitizePasses is returned in escaped form.
func Sanitize(s string) string {
	out := s
	for i := 0; i < maxSanitizePasses; i++ {
		next := html.UnescapeString(strictPolicy.Sanitize(out))
		if next == out {
			return strings.TrimSpace(out)
		}
		out = next
	}
	return strings.TrimSpace(strictPolicy.Sanitize(out))
}

// FrontMatter is the TOML block delimited by %%% at the top of an imported
// markdown file. Body is what follows the closing delimiter.
type FrontMatter struct {
	*mast.TitleData
	Body []byte
}

func GetFrontMatter(md []byte) (*FrontMatter, error) {
	md = markdown.NormalizeNewlines(md)
	md = bytes.TrimLeft(md, "\n \t\r")

	delimiter := []byte("%%%")

	if len(md) < 2*len(delimiter) || !bytes.HasPrefix(md, delimiter) {
		return nil, ErrNoFrontMatter
	}

	rest := md[len(delimiter):]
	second := bytes.Index(rest, delimiter)
	if second == -1 {
		return nil, ErrNoFrontMatter
	}

	info := &FrontMatter{TitleData: &mast.TitleData{}}
	if _, err := toml.Decode(string(rest[:second]), info.TitleData); err != nil {
		return nil, fmt.Errorf("failed to decode front matter: %w", err)
	}

	if info.Language == "" {
		info.Language = "en"
	}
	info.Body = bytes.TrimLeft(rest[second+len(delimiter):], "\n")

	return info, nil
}
