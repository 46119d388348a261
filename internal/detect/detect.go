// Package detect maps upload metadata and content to a document kind.
package detect

import (
	"mime"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"

	"github.com/vasudevanstar/MediCloak---AI-Privacy-Protector/internal/domain"
)

// Accepted MIME identifiers
const (
	MIMEPlainText = "text/plain"
	MIMEJPEG      = "image/jpeg"
	MIMEPNG       = "image/png"
	MIMEPDF       = "application/pdf"

	// MIMEOctetStream is what clients send when they do not know the type
	MIMEOctetStream = "application/octet-stream"
)

// headerSize is the number of leading bytes filetype needs
const headerSize = 261

// KindFromMIME maps one of the accepted MIME types to a Kind. Parameters
// such as charset are ignored. Anything else is KindUnknown.
func KindFromMIME(declared string) domain.Kind {
	mt, _, err := mime.ParseMediaType(declared)
	if err != nil {
		mt = strings.ToLower(strings.TrimSpace(declared))
	}
	switch mt {
	case MIMEPlainText:
		return domain.KindPlainText
	case MIMEJPEG, MIMEPNG:
		return domain.KindImage
	case MIMEPDF:
		return domain.KindPagedDocument
	default:
		return domain.KindUnknown
	}
}

// KindFromExtension maps a file name's extension to a Kind
func KindFromExtension(name string) domain.Kind {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt":
		return domain.KindPlainText
	case ".jpg", ".jpeg", ".png":
		return domain.KindImage
	case ".pdf":
		return domain.KindPagedDocument
	default:
		return domain.KindUnknown
	}
}

// KindFromContent sniffs the leading bytes of data
func KindFromContent(data []byte) domain.Kind {
	buf := data
	truncated := len(buf) > headerSize
	if truncated {
		buf = buf[:headerSize]
	}

	switch {
	case filetype.IsType(buf, matchers.TypePdf):
		return domain.KindPagedDocument
	case filetype.IsType(buf, matchers.TypeJpeg), filetype.IsType(buf, matchers.TypePng):
		return domain.KindImage
	case filetype.IsImage(buf), filetype.IsArchive(buf), filetype.IsDocument(buf), filetype.IsVideo(buf), filetype.IsAudio(buf):
		return domain.KindUnknown
	case isText(buf, truncated):
		return domain.KindPlainText
	default:
		return domain.KindUnknown
	}
}

// Detect resolves the kind of an upload. A declared MIME type is
// authoritative: an accepted one wins and any other is rejected. Only an
// empty or generic (application/octet-stream) declaration falls back to the
// file extension and then to the content itself.
func Detect(name, declaredMIME string, data []byte) domain.Kind {
	if k := KindFromMIME(declaredMIME); k.Valid() {
		return k
	}
	if !isGenericMIME(declaredMIME) {
		return domain.KindUnknown
	}
	if k := KindFromExtension(name); k.Valid() {
		return k
	}
	return KindFromContent(data)
}

func isGenericMIME(declared string) bool {
	mt, _, err := mime.ParseMediaType(declared)
	if err != nil {
		mt = strings.ToLower(strings.TrimSpace(declared))
	}
	return mt == "" || mt == MIMEOctetStream
}

// DocumentFrom builds a Document, or returns an unsupported-kind error
func DocumentFrom(name, declaredMIME string, data []byte) (domain.Document, error) {
	kind := Detect(name, declaredMIME, data)
	if !kind.Valid() {
		return domain.Document{}, domain.UnsupportedKindError(kind)
	}
	return domain.Document{Kind: kind, Data: data, Name: name}, nil
}

func isText(buf []byte, truncated bool) bool {
	if truncated {
		// a multi-byte rune may be cut at the header boundary
		for i := len(buf) - 1; i >= 0 && i >= len(buf)-utf8.UTFMax; i-- {
			if utf8.RuneStart(buf[i]) {
				if !utf8.FullRune(buf[i:]) {
					buf = buf[:i]
				}
				break
			}
		}
	}
	if !utf8.Valid(buf) {
		return false
	}
	for _, b := range buf {
		if b == 0 {
			return false
		}
	}
	return true
}
