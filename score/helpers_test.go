package score

import (
	"bytes"
	"log"
	"os"
	"strconv"
	"testing"
)

// wideTable builds a wide table from per-team (placement, kills) pairs
func wideTable(teams []string, scores [][][2]int) Table {
	games := 0
	for _, s := range scores {
		games = max(games, len(s))
	}
	header := []string{"Team"}
	for g := 1; g <= games; g++ {
		n := strconv.Itoa(g)
		header = append(header, "Game "+n+" P", "Game "+n+" K")
	}
	t := Table{Header: header}
	for i, team := range teams {
		row := []string{team}
		for g := 0; g < games; g++ {
			var pk [2]int
			if g < len(scores[i]) {
				pk = scores[i][g]
			}
			row = append(row, strconv.Itoa(pk[0]), strconv.Itoa(pk[1]))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// scenarioTable is the two-team tie dataset: A [12, 9], B [5, 16]
func scenarioTable() Table {
	return wideTable(
		[]string{"A", "B"},
		[][][2]int{
			{{10, 2}, {5, 4}},
			{{3, 2}, {10, 6}},
		},
	)
}

// sixGameTable has six teams over six games, listed out of alphabetical order
func sixGameTable() Table {
	return wideTable(
		[]string{"Zeta", "alpha", "Mango", "Bravo", "Kilo", "echo"},
		[][][2]int{
			{{12, 3}, {1, 0}, {5, 2}, {9, 4}, {0, 1}, {7, 7}},
			{{3, 1}, {12, 8}, {2, 2}, {1, 1}, {12, 2}, {4, 0}},
			{{5, 5}, {5, 5}, {12, 6}, {2, 0}, {3, 3}, {1, 1}},
			{{1, 0}, {2, 1}, {3, 0}, {12, 10}, {5, 5}, {12, 3}},
			{{7, 2}, {3, 3}, {1, 1}, {4, 4}, {7, 0}, {2, 2}},
			{{0, 0}, {9, 1}, {7, 3}, {3, 2}, {1, 0}, {5, 5}},
		},
	)
}

// captureLog redirects the standard logger for the duration of the test
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevFlags := log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		log.SetFlags(prevFlags)
	})
	return &buf
}

func mustLoad(t *testing.T, table Table, lookup MapLookup, matchup string) *Store {
	t.Helper()
	s := NewStore(nil, nil)
	if err := s.Load(table, lookup, matchup); err != nil {
		t.Fatalf("Unexpected load error: %v", err)
	}
	return s
}
