package middleware

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Input validation and sanitization utilities

const maxNameLength = 255

// ValidateUploadFilename checks the uploaded file is a .pptx and its
// name cannot escape the per-deck upload directory.
func ValidateUploadFilename(name string) error {
	if name == "" {
		return fmt.Errorf("filename is required")
	}
	if !strings.EqualFold(filepath.Ext(name), ".pptx") {
		return fmt.Errorf("only .pptx files are supported")
	}
	if strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return fmt.Errorf("invalid filename")
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("filename too long (max %d)", maxNameLength)
	}
	return nil
}

// ValidateSermonName checks the required display name.
func ValidateSermonName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("sermonName is required")
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("sermonName too long (max %d)", maxNameLength)
	}
	return nil
}

// ValidateSlideNumber checks for 1-based slide numbering.
func ValidateSlideNumber(n int) error {
	if n < 1 {
		return fmt.Errorf("invalid slide number")
	}
	return nil
}
