package cli

import (
	"fmt"
	"regexp"
	"strings"
)

// formatBytes converts bytes to human-readable size
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// formatBool converts bool to string
func formatBool(value bool) string {
	if value {
		return "Yes"
	}
	return "No"
}

// formatReadStatus converts the read flag to a list marker
func formatReadStatus(isRead bool) string {
	if isRead {
		return ""
	}
	return "unread"
}

// formatAttachmentFlag converts the attachment flag to a list marker
func formatAttachmentFlag(hasAttachments bool) string {
	if hasAttachments {
		return "Y"
	}
	return ""
}

var htmlTagPattern = regexp.MustCompile("<[^>]*>")

// formatBody processes message content based on body type and output mode
func formatBody(body, bodyType, outputMode string) string {
	if outputMode == "json" || bodyType != "HTML" {
		return body
	}

	// Plain and rich modes: strip HTML tags
	return strings.TrimSpace(htmlTagPattern.ReplaceAllString(body, ""))
}
