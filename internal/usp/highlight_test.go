package usp_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reviewlens/backend/internal/usp"
)

func TestHighlightSpans(t *testing.T) {
	d := usp.Load("", "", "")

	text := "Glowy finish, saw it on TikTok"
	spans := d.HighlightSpans(text)

	require.Len(t, spans, 2)
	require.Equal(t, "visual", spans[0].Category)
	require.Equal(t, "glowy", text[spans[0].Start:spans[0].End])
	require.Equal(t, "viral", spans[1].Category)
	require.Equal(t, "TikTok", text[spans[1].Start:spans[1].End])
}

func TestHighlightSpansMergesOverlaps(t *testing.T) {
	d := usp.Load("", "", "")

	// "glow" and "glowing" overlap at the same offset
	spans := d.HighlightSpans("such a glowing look")

	require.Len(t, spans, 1)
	require.Equal(t, "visual", spans[0].Category)
	require.Equal(t, 7, spans[0].Start)
	require.Equal(t, 7+len("glowing"), spans[0].End)
}

func TestHighlightSpansEmpty(t *testing.T) {
	d := usp.Load("", "", "")

	require.Empty(t, d.HighlightSpans("plain text with nothing special"))
}
