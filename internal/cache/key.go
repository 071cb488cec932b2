// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/zeebo/xxh3"
)

// maxKeyLen is the longest key stored verbatim. Longer keys are hashed.
const maxKeyLen = 64

// KeyFor derives a cache key from query parameters.
// Struct fields serialize in declaration order and map keys are sorted,
// so logically identical parameters always yield the same key.
func KeyFor(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("building cache key: %w", err)
	}
	return compact(data), nil
}

// JoinKey builds a key from a prefix and serialized parameters.
// Format: {prefix}:{params}
func JoinKey(prefix string, v any) (string, error) {
	k, err := KeyFor(v)
	if err != nil {
		return "", err
	}
	return prefix + ":" + k, nil
}

// IDKey returns the detail-cache key for an item id.
func IDKey(id string) string {
	return "id:" + id
}

func compact(data []byte) string {
	if len(data) <= maxKeyLen {
		return string(data)
	}
	sum := xxh3.Hash128(data).Bytes()
	return "h:" + hex.EncodeToString(sum[:])
}
