package score

import (
	"bytes"
	"encoding/csv"
	"slices"
	"strconv"
)

// Export renders the visible standings at index as CSV
// Only games visible under the active filter become columns; Total is the
// visible cumulative score
func (s *Store) Export(index int) string {
	return ExportFrame(s.Frame(index))
}

// ExportFrame renders a frame as CSV: Rank, Team, Game n P, Game n K..., Total
func ExportFrame(f Frame) string {
	games := visibleGameNumbers(f)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := make([]string, 0, 3+2*len(games))
	header = append(header, "Rank", "Team")
	for _, g := range games {
		n := strconv.Itoa(g)
		header = append(header, "Game "+n+" P", "Game "+n+" K")
	}
	header = append(header, "Total")
	w.Write(header)

	for i, e := range f.Entries {
		row := make([]string, 0, len(header))
		row = append(row, strconv.Itoa(i+1), e.Team)
		byGame := make(map[int]GameContribution, len(e.VisibleGames))
		for _, c := range e.VisibleGames {
			byGame[c.GameNumber] = c
		}
		for _, g := range games {
			c := byGame[g]
			row = append(row, strconv.Itoa(c.PlacementPoints), strconv.Itoa(c.KillPoints))
		}
		row = append(row, strconv.Itoa(e.CumulativeScore))
		w.Write(row)
	}
	w.Flush()
	return buf.String()
}

func visibleGameNumbers(f Frame) []int {
	var games []int
	for _, e := range f.Entries {
		for _, c := range e.VisibleGames {
			if !slices.Contains(games, c.GameNumber) {
				games = append(games, c.GameNumber)
			}
		}
	}
	slices.Sort(games)
	return games
}
