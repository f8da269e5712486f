package waiter

// #region imports
import (
	"strings"

	"github.com/umaplay/career-agent/internal/domain"
)

// #endregion

// #region normalize

// normalizeOCR lowercases and collapses whitespace, per spec §4.3's detail
// floor for forbid-text matching.
func normalizeOCR(s string) string {
	fields := strings.Fields(strings.ToLower(s))
	return strings.Join(fields, " ")
}

// #endregion

// #region matching

// ocrMatches reports whether any read contains a positive text and no read
// above the forbid threshold contains a forbidden text.
func ocrMatches(reads []domain.OCRResult, texts, forbidTexts []string, threshold float32) bool {
	if containsForbidden(reads, forbidTexts, threshold) {
		return false
	}
	if len(texts) == 0 {
		return true
	}
	for _, r := range reads {
		norm := normalizeOCR(r.Text)
		for _, want := range texts {
			if strings.Contains(norm, normalizeOCR(want)) {
				return true
			}
		}
	}
	return false
}

// containsForbidden reports whether any read whose confidence is above
// threshold contains (by substring, normalized) a forbidTexts entry.
func containsForbidden(reads []domain.OCRResult, forbidTexts []string, threshold float32) bool {
	if len(forbidTexts) == 0 {
		return false
	}
	for _, r := range reads {
		if r.Confidence < threshold {
			continue
		}
		norm := normalizeOCR(r.Text)
		for _, bad := range forbidTexts {
			if strings.Contains(norm, normalizeOCR(bad)) {
				return true
			}
		}
	}
	return false
}

// #endregion
