/*
 * Copyright (C) 2025-2026, StoreForge Authors. All rights reserved.
 * See LICENSE for license information.
 */

package store

import (
	"fmt"
	"regexp"
	"strings"

	"k8s.io/apimachinery/pkg/util/validation"
)

// MinNameLength is the minimum accepted store name length.
const MinNameLength = 3

var (
	invalidChars    = regexp.MustCompile(`[^a-z0-9-]`)
	repeatedHyphens = regexp.MustCompile(`-+`)
)

// NormalizeName maps an arbitrary name onto the constrained store identity
// alphabet: lowercase letters, digits and hyphens, with hyphen runs
// collapsed and leading/trailing hyphens trimmed. Normalization is
// idempotent.
func NormalizeName(name string) string {
	n := strings.ToLower(name)
	n = invalidChars.ReplaceAllString(n, "-")
	n = repeatedHyphens.ReplaceAllString(n, "-")
	return strings.Trim(n, "-")
}

// NameError reports an invalid store name together with a usable suggestion
// when one exists.
type NameError struct {
	Name       string
	Suggestion string
	Reason     string
}

func (e *NameError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("Invalid name. Suggested: %s", e.Suggestion)
	}
	return e.Reason
}

// ValidateName checks that name is a usable store identity. The identity
// doubles as the release name and the cluster namespace, so it must satisfy
// the cluster's DNS-1123 label rules on top of the local constraints.
func ValidateName(name string) error {
	normalized := NormalizeName(name)
	if len(normalized) < MinNameLength {
		return &NameError{
			Name:   name,
			Reason: fmt.Sprintf("Store name must be at least %d characters (letters, numbers, hyphens)", MinNameLength),
		}
	}
	if name != normalized {
		return &NameError{Name: name, Suggestion: normalized}
	}
	if errs := validation.IsDNS1123Label(name); len(errs) > 0 {
		return &NameError{Name: name, Reason: fmt.Sprintf("Invalid name: %s", errs[0])}
	}
	return nil
}
