package playback

import "github.com/ketoprak/askandsign/internal/signs"

// AssetReport describes one table entry after a load attempt
type AssetReport struct {
	Phrase string
	File   string
	Width  int
	Height int
	Frames int
	Err    error
}

// OK reports whether the asset decoded
func (r AssetReport) OK() bool { return r.Err == nil }

// Check loads every asset named by table, in table order. It never stops
// early; failures are recorded per report.
func (p *Player) Check(table *signs.Table) []AssetReport {
	entries := table.Entries()
	reports := make([]AssetReport, 0, len(entries))
	for _, e := range entries {
		r := AssetReport{Phrase: e.Phrase, File: e.File}
		frames, err := p.Load(e.File)
		if err != nil {
			r.Err = err
		} else {
			r.Frames = len(frames)
			if len(frames) > 0 {
				b := frames[0].Bounds()
				r.Width, r.Height = b.Dx(), b.Dy()
			}
		}
		reports = append(reports, r)
	}
	return reports
}
