package ballot

import (
	"fmt"
	"math/big"
	"sort"
	"strings"
	"text/tabwriter"
)

// displayRow is one line of the profile table.
type displayRow struct {
	ranking string
	weight  *big.Rat
	share   *big.Rat
}

func (p *PreferenceProfile) rows() []displayRow {
	total := p.TotalWeight()
	rows := make([]displayRow, 0, len(p.ballots))
	for _, b := range p.ballots {
		parts := make([]string, 0, len(b.Ranking))
		for _, rank := range b.Ranking {
			if rank.Tied() {
				for _, cand := range rank {
					parts = append(parts, cand+" (Tie)")
				}
				continue
			}
			parts = append(parts, rank...)
		}
		share := new(big.Rat)
		if total.Sign() != 0 {
			share.Quo(new(big.Rat).Set(b.Weight), total)
		}
		rows = append(rows, displayRow{
			ranking: strings.Join(parts, " > "),
			weight:  new(big.Rat).Set(b.Weight),
			share:   share,
		})
	}
	return rows
}

func renderRows(rows []displayRow, withShare bool) string {
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 2, 4, 2, ' ', 0)
	if withShare {
		fmt.Fprintln(w, "Ballot\tWeight\tVoter Share")
	} else {
		fmt.Fprintln(w, "Ballot\tWeight")
	}
	for _, row := range rows {
		if withShare {
			fmt.Fprintf(w, "%s\t%s\t%s\n", row.ranking, formatRat(row.weight), row.share.FloatString(4))
		} else {
			fmt.Fprintf(w, "%s\t%s\n", row.ranking, formatRat(row.weight))
		}
	}
	_ = w.Flush()
	return strings.TrimRight(sb.String(), "\n")
}

func formatRat(r *big.Rat) string {
	if r.IsInt() {
		return r.Num().String()
	}
	return r.RatString()
}

// Head renders the n heaviest ballots as a table. With withShare set, a
// voter-share column is included.
func (p *PreferenceProfile) Head(n int, withShare bool) string {
	rows := p.rows()
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].weight.Cmp(rows[j].weight) > 0
	})
	if n < len(rows) {
		rows = rows[:n]
	}
	return renderRows(rows, withShare)
}

// Tail renders the n lightest ballots as a table.
func (p *PreferenceProfile) Tail(n int, withShare bool) string {
	rows := p.rows()
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].weight.Cmp(rows[j].weight) < 0
	})
	if n < len(rows) {
		rows = rows[:n]
	}
	return renderRows(rows, withShare)
}

// String shows the top ballots of the profile, capped at 15 lines.
func (p *PreferenceProfile) String() string {
	n := len(p.ballots)
	if n > 15 {
		n = 15
	}
	return p.Head(n, false)
}
