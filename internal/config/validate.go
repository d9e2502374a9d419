package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/text/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateMedia(); err != nil {
		return err
	}
	if err := c.validateEncoding(); err != nil {
		return err
	}
	if err := c.validateTranslate(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateMedia() error {
	images := make(map[string]struct{}, len(c.Media.ImageExtensions))
	for _, ext := range c.Media.ImageExtensions {
		images[ext] = struct{}{}
	}
	for _, ext := range c.Media.VideoExtensions {
		if _, clash := images[ext]; clash {
			return fmt.Errorf("media: extension %q listed as both image and video", ext)
		}
	}
	if c.Media.ImageWorkers > 64 {
		return errors.New("media.image_workers must be 64 or fewer")
	}
	return nil
}

func (c *Config) validateEncoding() error {
	if c.Encoding.SoftwareCRF < 0 || c.Encoding.SoftwareCRF > 51 {
		return errors.New("encoding.software_crf must be between 0 and 51")
	}
	if strings.ContainsAny(c.Encoding.CompressedSuffix, `/\`) {
		return errors.New("encoding.compressed_suffix must not contain path separators")
	}
	return nil
}

func (c *Config) validateTranslate() error {
	parsed, err := url.Parse(c.Translate.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("translate.base_url must be an absolute URL, got %q", c.Translate.BaseURL)
	}
	if _, err := language.Parse(c.Translate.TargetLang); err != nil {
		return fmt.Errorf("translate.target_lang %q: %w", c.Translate.TargetLang, err)
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.NtfyTopic == "" {
		return nil
	}
	parsed, err := url.Parse(c.Notifications.NtfyTopic)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("notifications.ntfy_topic must be a full URL, got %q", c.Notifications.NtfyTopic)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
}
