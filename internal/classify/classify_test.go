package classify

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDialecticTagMatchesRisk(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	tag := c.DialecticTag("이 계약 건은 납기 누락 위험이 있습니다")
	require.NotNil(t, tag)
	require.Equal(t, "risk", *tag)
}

func TestDialecticTagPrefersHigherPriorityOnOverlap(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	tag := c.DialecticTag("예산 부족 상황인데 클라이언트 불만도 접수되었습니다")
	require.NotNil(t, tag)
	require.Equal(t, "client_concern", *tag)
}

func TestDialecticTagNoMatch(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	tag := c.DialecticTag("오늘 회의는 순조롭게 진행되었습니다")
	require.Nil(t, tag)
}
