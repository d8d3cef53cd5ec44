// Package storage publishes finished decks to durable object storage.
package storage

import (
	"errors"
	"path"
	"strings"
)

// ContentTypePPTX is the media type of published decks.
const ContentTypePPTX = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

// ErrObjectNotFound is returned by Open when the key does not exist.
var ErrObjectNotFound = errors.New("storage object not found")

// ObjectKey returns the storage key for a job's deck.
func ObjectKey(prefix, jobID string) string {
	prefix = strings.Trim(prefix, "/")
	name := jobID + ".pptx"
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
