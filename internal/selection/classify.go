package selection

import (
	"path/filepath"
	"strings"

	"ctxmenu/internal/config"
)

// Class is the media category of a file path.
type Class int

const (
	ClassOther Class = iota
	ClassImage
	ClassVideo
)

func (c Class) String() string {
	switch c {
	case ClassImage:
		return "image"
	case ClassVideo:
		return "video"
	default:
		return "other"
	}
}

// Classifier maps file extensions to classes. It is immutable after construction.
type Classifier struct {
	images map[string]struct{}
	videos map[string]struct{}
}

// NewClassifier builds a classifier from the configured extension sets.
func NewClassifier(media config.Media) *Classifier {
	c := &Classifier{
		images: make(map[string]struct{}, len(media.ImageExtensions)),
		videos: make(map[string]struct{}, len(media.VideoExtensions)),
	}
	for _, ext := range media.ImageExtensions {
		c.images[normalizeExt(ext)] = struct{}{}
	}
	for _, ext := range media.VideoExtensions {
		c.videos[normalizeExt(ext)] = struct{}{}
	}
	return c
}

// Classify returns the class of path by case-insensitive suffix match.
func (c *Classifier) Classify(path string) Class {
	ext := normalizeExt(filepath.Ext(path))
	if ext == "" {
		return ClassOther
	}
	if _, ok := c.images[ext]; ok {
		return ClassImage
	}
	if _, ok := c.videos[ext]; ok {
		return ClassVideo
	}
	return ClassOther
}

// Partition splits paths into images, videos, and everything else, preserving order.
type Partition struct {
	Images []string
	Videos []string
	Other  []string
}

// Partition classifies every path.
func (c *Classifier) Partition(paths []string) Partition {
	var p Partition
	for _, path := range paths {
		switch c.Classify(path) {
		case ClassImage:
			p.Images = append(p.Images, path)
		case ClassVideo:
			p.Videos = append(p.Videos, path)
		default:
			p.Other = append(p.Other, path)
		}
	}
	return p
}

// IsMP4 reports whether path already carries the .mp4 extension.
func IsMP4(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".mp4")
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
