package analyzer

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// stripCodeFence removes a markdown code-block wrapper (```json ... ```)
// if the response is wrapped in one; models asked for "no markdown" still
// sometimes add one.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) > 0 {
		lines = lines[1:]
	}
	if len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[len(lines)-1]), "```") {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

// digestItemPattern matches one complete {"text":..., "confidence":...,
// "priority":...} object for regex repair of malformed digest JSON.
var digestItemPattern = regexp.MustCompile(
	`\{\s*"text"\s*:\s*"(?:[^"\\]|\\.)*"\s*(?:,\s*"[^"]+"\s*:\s*(?:"(?:[^"\\]|\\.)*"|[\d.]+|\[[^\]]*\]|true|false|null))*\s*\}`,
)

// extractedItemPattern matches one complete {"content":..., "knowledge_type":...}
// object for regex repair of malformed extraction JSON.
var extractedItemPattern = regexp.MustCompile(
	`\{\s*"content"\s*:\s*"(?:[^"\\]|\\.)*"\s*,\s*"knowledge_type"\s*:\s*"[^"]+"\s*(?:,\s*"[^"]+"\s*:\s*(?:"(?:[^"\\]|\\.)*"|[\d.]+|\[[^\]]*\]|true|false|null))*\s*\}`,
)

// parseDigest parses a raw model response into a Digest, falling back to
// regex repair of individual item objects if the overall JSON is malformed.
func parseDigest(raw string) (*Digest, error) {
	cleaned := stripCodeFence(strings.TrimSpace(raw))
	if cleaned == "" {
		return &Digest{}, nil
	}

	var d Digest
	if err := json.Unmarshal([]byte(cleaned), &d); err == nil {
		return &d, nil
	}

	matches := digestItemPattern.FindAllString(cleaned, -1)
	if len(matches) == 0 {
		return nil, fmt.Errorf("analyzer: failed to parse digest response")
	}
	for _, m := range matches {
		var item DigestItem
		if err := json.Unmarshal([]byte(m), &item); err != nil {
			continue
		}
		d.Decisions = append(d.Decisions, item)
	}
	return &d, nil
}

// parseExtraction parses a raw model response into an Extraction, falling
// back to regex repair of individual item objects if the overall JSON is
// malformed.
func parseExtraction(raw string) (*Extraction, error) {
	cleaned := stripCodeFence(strings.TrimSpace(raw))
	if cleaned == "" {
		return &Extraction{}, nil
	}

	var e Extraction
	if err := json.Unmarshal([]byte(cleaned), &e); err == nil {
		return filterExtraction(&e), nil
	}

	matches := extractedItemPattern.FindAllString(cleaned, -1)
	if len(matches) == 0 {
		return nil, fmt.Errorf("analyzer: failed to parse extraction response")
	}
	items := make([]ExtractedItem, 0, len(matches))
	for _, m := range matches {
		var item ExtractedItem
		if err := json.Unmarshal([]byte(m), &item); err != nil {
			continue
		}
		items = append(items, item)
	}
	return filterExtraction(&Extraction{Items: items}), nil
}

// filterExtraction drops items with empty (after trimming) content or an
// empty knowledge_type, and defaults a missing or non-positive confidence
// to 0.7, matching the extraction service's conservative default.
func filterExtraction(e *Extraction) *Extraction {
	out := make([]ExtractedItem, 0, len(e.Items))
	for _, item := range e.Items {
		item.Content = strings.TrimSpace(item.Content)
		if item.Content == "" || item.KnowledgeType == "" {
			continue
		}
		if item.Confidence <= 0 {
			item.Confidence = 0.7
		}
		out = append(out, item)
	}
	e.Items = out
	return e
}
