// Package settlement turns game results and configured stakes into signed
// amounts per player. Every function is pure and every settlement it
// produces sums to zero. Amounts are integer cents.
package settlement

import (
	"fmt"
	"sort"

	"github.com/attaboy/fairway/internal/domain"
	"github.com/attaboy/fairway/internal/games"
)

// Payouts maps player ID to signed cents.
type Payouts map[string]int64

// Total sums the payouts. It is zero for any valid settlement.
func (p Payouts) Total() int64 {
	var t int64
	for _, v := range p {
		t += v
	}
	return t
}

func (p Payouts) add(other Payouts) {
	for id, v := range other {
		p[id] += v
	}
}

// Statement is the settlement of every format a group played.
type Statement struct {
	Version  int64                     `json:"version"`
	ByFormat map[domain.Format]Payouts `json:"by_format"`
	Net      Payouts                   `json:"net"`
}

// Settle settles one format from a computed summary.
func Settle(format domain.Format, sum *games.Summary, cfg domain.GameConfig) (Payouts, error) {
	switch format {
	case domain.FormatNassau:
		if sum.Nassau == nil {
			return nil, notPlayed(format)
		}
		return SettleNassau(*sum.Nassau, cfg.Nassau), nil
	case domain.FormatNines:
		if sum.Nines == nil {
			return nil, notPlayed(format)
		}
		return SettleNines(*sum.Nines, cfg.Nines), nil
	case domain.FormatSixes:
		if sum.Sixes == nil {
			return nil, notPlayed(format)
		}
		return SettleSixes(*sum.Sixes, cfg.Sixes), nil
	case domain.FormatSkins:
		return SettleSkins(sum.Skins, cfg.Skins), nil
	}
	return nil, domain.ErrValidation(fmt.Sprintf("unknown format %q", format))
}

// SettleAll settles every format in the summary and nets them per player.
func SettleAll(sum *games.Summary, cfg domain.GameConfig) (*Statement, error) {
	st := &Statement{Version: sum.Version, ByFormat: make(map[domain.Format]Payouts, len(sum.Formats))}
	for _, f := range sum.Formats {
		p, err := Settle(f, sum, cfg)
		if err != nil {
			return nil, err
		}
		st.ByFormat[f] = p
	}
	st.Net = Combine(st.ByFormat)
	return st, nil
}

// Combine nets several per-format payouts into one amount per player.
func Combine(byFormat map[domain.Format]Payouts) Payouts {
	out := make(Payouts)
	for _, p := range byFormat {
		out.add(p)
	}
	return out
}

// Lines flattens a statement into stable, sorted settlement lines.
func (s *Statement) Lines() []domain.SettlementLine {
	var lines []domain.SettlementLine
	for f, p := range s.ByFormat {
		for id, amount := range p {
			lines = append(lines, domain.SettlementLine{Format: f, PlayerID: id, Amount: amount})
		}
	}
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].Format != lines[j].Format {
			return lines[i].Format < lines[j].Format
		}
		return lines[i].PlayerID < lines[j].PlayerID
	})
	return lines
}

func notPlayed(f domain.Format) error {
	return domain.ErrValidation(fmt.Sprintf("%s was not played by this group", f))
}
