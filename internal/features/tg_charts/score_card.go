// Package tg_charts renders report score cards as PNG attachments for
// Telegram replies.
package tg_charts

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"phoenix-analyzer/internal/features/format"
	"phoenix-analyzer/internal/features/report"
	logging "phoenix-analyzer/internal/infra/log"

	"github.com/fogleman/gg"
	"go.uber.org/zap"
)

const (
	cardWidth  = 900
	cardHeight = 420

	barLeft   = 260.0
	barWidth  = 560.0
	barHeight = 42.0
	barGap    = 84.0
	barTop    = 120.0

	labelX = 40.0
)

type scoreRow struct {
	label string
	score int
}

// GenerateScoreCard draws the three component scores as horizontal
// bars and writes the PNG to the temp dir, returning its path.
func GenerateScoreCard(rep *report.Report) (string, error) {
	if rep == nil {
		return "", fmt.Errorf("no report to render")
	}

	dc := gg.NewContext(cardWidth, cardHeight)
	dc.SetRGB(0.07, 0.08, 0.12)
	dc.Clear()

	dc.SetRGB(1, 1, 1)
	title := fmt.Sprintf("PHOENIX ANALYZER — %s", format.ShortAddr(rep.Mint))
	dc.DrawString(title, labelX, 60)

	rows := []scoreRow{
		{label: "Safety", score: rep.Safety.Score},
		{label: "LP Risk", score: rep.LpRisk.Score},
		{label: "Clusters", score: rep.Linkage.Score},
	}
	for i, row := range rows {
		y := barTop + float64(i)*barGap
		drawScoreBar(dc, row, y)
	}

	if len(rep.RugFlags) > 0 {
		dc.SetRGB(1, 0.35, 0.35)
		dc.DrawString(fmt.Sprintf("%d rug flag(s) raised", len(rep.RugFlags)), labelX, barTop+3*barGap+20)
	} else {
		dc.SetRGB(0.4, 0.85, 0.4)
		dc.DrawString("No obvious rug flags", labelX, barTop+3*barGap+20)
	}

	path := filepath.Join(os.TempDir(), fmt.Sprintf("phx_score_%d.png", time.Now().UnixNano()))
	if err := dc.SavePNG(path); err != nil {
		return "", fmt.Errorf("failed to save score card: %w", err)
	}
	logging.LogDebug("Score card rendered", zap.String("path", path), zap.String("mint", rep.Mint))
	return path, nil
}

func drawScoreBar(dc *gg.Context, row scoreRow, y float64) {
	dc.SetRGB(0.85, 0.85, 0.9)
	dc.DrawString(row.label, labelX, y+barHeight/2+5)

	// track
	dc.SetRGB(0.18, 0.2, 0.26)
	dc.DrawRoundedRectangle(barLeft, y, barWidth, barHeight, 8)
	dc.Fill()

	// fill, colored by band
	switch {
	case row.score >= 75:
		dc.SetRGB(0.22, 0.72, 0.36)
	case row.score >= 50:
		dc.SetRGB(0.92, 0.76, 0.2)
	default:
		dc.SetRGB(0.88, 0.26, 0.26)
	}
	fillW := barWidth * float64(row.score) / 100
	if fillW > 0 {
		dc.DrawRoundedRectangle(barLeft, y, fillW, barHeight, 8)
		dc.Fill()
	}

	dc.SetRGB(1, 1, 1)
	dc.DrawString(fmt.Sprintf("%d/100", row.score), barLeft+barWidth+12, y+barHeight/2+5)
}
