package storage

import (
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// languageMimeTypes maps go-enry language names to MIME types
var languageMimeTypes = map[string]string{
	"Go":         "text/x-go",
	"JavaScript": "text/javascript",
	"TypeScript": "text/x-typescript",
	"Python":     "text/x-python",
	"Java":       "text/x-java",
	"C":          "text/x-c",
	"C++":        "text/x-c++",
	"C#":         "text/x-csharp",
	"Ruby":       "text/x-ruby",
	"Rust":       "text/x-rust",
	"Shell":      "text/x-shellscript",
	"Markdown":   "text/markdown",
	"HTML":       "text/html",
	"CSS":        "text/css",
	"JSON":       "application/json",
	"YAML":       "text/x-yaml",
	"TOML":       "application/toml",
	"XML":        "text/xml",
	"SQL":        "text/x-sql",
	"Dockerfile": "text/x-dockerfile",
	"Makefile":   "text/x-makefile",
	"Text":       "text/plain",
}

// DetectMimeType guesses the MIME type from the file name and, when available, its content.
// Detection order: go-enry language, content sniffing, extension table.
func DetectMimeType(path string, content []byte) string {
	name := filepath.Base(path)

	if content != nil && !enry.IsBinary(content) {
		if mt, ok := languageMimeTypes[enry.GetLanguage(name, content)]; ok {
			return mt
		}
	}

	if len(content) > 0 {
		return stripParams(http.DetectContentType(content))
	}

	if mt := mime.TypeByExtension(filepath.Ext(name)); mt != "" {
		return stripParams(mt)
	}
	if lang, _ := enry.GetLanguageByExtension(name); lang != "" {
		if mt, ok := languageMimeTypes[lang]; ok {
			return mt
		}
	}
	return "application/octet-stream"
}

func stripParams(mt string) string {
	if idx := strings.Index(mt, ";"); idx != -1 {
		mt = mt[:idx]
	}
	return strings.TrimSpace(mt)
}
