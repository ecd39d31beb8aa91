package bot

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"phoenix-analyzer/internal/features/linkage"
	"phoenix-analyzer/internal/features/report"
)

func TestRenderReportShortStaysUntrimmed(t *testing.T) {
	t.Parallel()

	rep := &report.Report{Mint: "So11111111111111111111111111111111111111112"}
	text, _ := RenderReport(rep)
	if strings.Contains(text, "(trimmed)") {
		t.Fatalf("short report should not be trimmed:\n%s", text)
	}
	if !strings.Contains(text, rep.Mint) {
		t.Fatalf("report text missing the mint")
	}
}

func TestRenderReportTrimKeepsValidUTF8(t *testing.T) {
	t.Parallel()

	// Padding shifts the byte offset of the cut, so it sweeps every
	// phase of the three-byte block glyphs.
	for pad := 0; pad < 4; pad++ {
		pad := pad
		t.Run(fmt.Sprintf("pad=%d", pad), func(t *testing.T) {
			t.Parallel()

			rep := &report.Report{
				Mint: "So11111111111111111111111111111111111111112",
				Linkage: linkage.Risk{
					Label:   "high risk (clusters)",
					Reasons: []string{strings.Repeat(" ", pad) + strings.Repeat("█", 1600)},
				},
			}
			text, _ := RenderReport(rep)
			if len(text) > maxMessageLen {
				t.Fatalf("trimmed message is %d bytes, want <= %d", len(text), maxMessageLen)
			}
			if !strings.HasSuffix(text, "… (trimmed)") {
				t.Fatalf("long report should carry the trim marker")
			}
			if !utf8.ValidString(text) {
				t.Fatalf("trimmed message is not valid UTF-8 near the cut")
			}
		})
	}
}
