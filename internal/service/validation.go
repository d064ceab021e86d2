package service

import (
	"strings"
	"unicode/utf8"
)

const (
	MaxTitleLength   = 200
	MaxMessageLength = 5000
)

// ValidateTitle 去除首尾空白后 1..200 个字符
func ValidateTitle(title string) (string, error) {
	t := strings.TrimSpace(title)
	if t == "" {
		return "", invalid("title", "thread title must not be empty")
	}
	if utf8.RuneCountInString(t) > MaxTitleLength {
		return "", invalid("title", "thread title must not exceed 200 characters")
	}
	return t, nil
}

// ValidateMessage 去除首尾空白后 1..5000 个字符
func ValidateMessage(message string) (string, error) {
	m := strings.TrimSpace(message)
	if m == "" {
		return "", invalid("message", "message must not be empty")
	}
	if utf8.RuneCountInString(m) > MaxMessageLength {
		return "", invalid("message", "message must not exceed 5000 characters")
	}
	return m, nil
}
