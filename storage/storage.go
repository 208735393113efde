// Package storage keeps uploaded files and hands back their public URL.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
)

// Upload types accepted by the upload endpoint.
const (
	TypePrescription = "prescription"
	TypeProfile      = "profile"
)

var Types = []string{TypePrescription, TypeProfile}

type Upload struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

type FileStore interface {
	Save(ctx context.Context, typeTag, originalName, contentType string, body io.Reader) (*Upload, error)
}

// ObjectName builds the stored name: <type>_<unix millis>.<ext of original>.
func ObjectName(typeTag, originalName string, at time.Time) string {
	name := fmt.Sprintf("%s_%d", typeTag, at.UnixMilli())
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filepath.Base(originalName)), "."))
	if ext == "" {
		return name
	}
	return name + "." + ext
}
