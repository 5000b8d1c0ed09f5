// Package classify provides a fast, rule-based dialectic-tag classifier:
// an Aho-Corasick keyword scan over Korean risk/constraint/opportunity
// vocabulary, used by the ingestion pipeline's non-LLM paths (free-form and
// action ingestion) where a full analyzer call would be overkill for a
// single short string.
package classify

import (
	"github.com/coregx/ahocorasick"
)

// Keyword sets per dialectic tag. Order within a set doesn't matter; order
// across tagOrder does — it is the tie-break priority when a string hits
// keywords from more than one set.
var keywordSets = map[string][]string{
	"risk":           {"위험", "리스크", "누락", "지연 우려", "실패 가능성"},
	"client_concern": {"클라이언트 불만", "항의", "컨펌 거부", "신뢰 하락"},
	"constraint":     {"예산 부족", "일정 부족", "불가능", "제약", "한계"},
	"quality":        {"품질 이슈", "퀄리티 저하", "재작업 필요"},
	"opportunity":    {"확장 가능", "추가 제안", "신규 기회"},
}

// tagOrder is the priority used when a string matches more than one set:
// earlier entries win.
var tagOrder = []string{"risk", "client_concern", "constraint", "quality", "opportunity"}

// Classifier scans text for dialectic-tag keywords using a single
// Aho-Corasick automaton built once at construction time.
type Classifier struct {
	ac        *ahocorasick.Automaton
	tagByIdx  []string
}

// New compiles the keyword automaton.
func New() (*Classifier, error) {
	c := &Classifier{}

	var patterns []string
	for _, tag := range tagOrder {
		for _, kw := range keywordSets[tag] {
			patterns = append(patterns, kw)
			c.tagByIdx = append(c.tagByIdx, tag)
		}
	}

	ac, err := ahocorasick.NewBuilder().
		AddStrings(patterns).
		SetMatchKind(ahocorasick.LeftmostLongest).
		SetPrefilter(true).
		Build()
	if err != nil {
		return nil, err
	}
	c.ac = ac
	return c, nil
}

// DialecticTag scans text and returns the highest-priority dialectic tag
// it matches, or nil if no keyword hits.
func (c *Classifier) DialecticTag(text string) *string {
	matches := c.ac.FindAllOverlapping([]byte(text))
	if len(matches) == 0 {
		return nil
	}

	best := -1
	for _, m := range matches {
		tag := c.tagByIdx[m.PatternID]
		rank := tagRank(tag)
		if best == -1 || rank < best {
			best = rank
		}
	}
	tag := tagOrder[best]
	return &tag
}

func tagRank(tag string) int {
	for i, t := range tagOrder {
		if t == tag {
			return i
		}
	}
	return len(tagOrder)
}
