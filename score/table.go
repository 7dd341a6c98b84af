package score

import (
	"fmt"
	"log"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Table is a raw tabular score source: a header row and data rows
type Table struct {
	Header []string
	Rows   [][]string
}

// Convention identifies the column layout of a Table
type Convention int

const (
	ConventionUnknown Convention = iota
	ConventionWide               // Team, Game {n} P, Game {n} K, [Total]
	ConventionLong               // Team, Game, Placement, Kills
)

func (c Convention) String() string {
	switch c {
	case ConventionWide:
		return "wide"
	case ConventionLong:
		return "long"
	default:
		return "unknown"
	}
}

var wideColumn = regexp.MustCompile(`^game\s*(\d+)\s*([pk])$`)

// MaxGameNumber bounds the game axis; larger game numbers are skipped
const MaxGameNumber = 512

// columns is the resolved header layout
type columns struct {
	convention Convention
	team       int
	total      int // -1 when absent
	placement  map[int]int
	kills      map[int]int
	maxGames   int

	// long convention
	game, place, kill int
}

func headerKey(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Detect resolves the column convention of the header
func Detect(header []string) Convention {
	return detect(header).convention
}

func detect(header []string) columns {
	c := columns{
		team:      -1,
		total:     -1,
		game:      -1,
		place:     -1,
		kill:      -1,
		placement: make(map[int]int),
		kills:     make(map[int]int),
	}
	for i, h := range header {
		key := headerKey(h)
		switch key {
		case "team", "team name":
			if c.team < 0 {
				c.team = i
			}
			continue
		case "total", "overall", "total points":
			c.total = i
			continue
		case "game":
			c.game = i
			continue
		case "placement", "placement points":
			c.place = i
			continue
		case "kills", "kill points":
			c.kill = i
			continue
		}
		if m := wideColumn.FindStringSubmatch(key); m != nil {
			n, err := strconv.Atoi(m[1])
			if err != nil || n < 1 {
				continue
			}
			if n > MaxGameNumber {
				log.Printf("score: column %q: game number above %d ignored", h, MaxGameNumber)
				continue
			}
			if m[2] == "p" {
				c.placement[n] = i
			} else {
				c.kills[n] = i
			}
			c.maxGames = max(c.maxGames, n)
		}
	}

	switch {
	case c.team >= 0 && c.maxGames > 0:
		c.convention = ConventionWide
	case c.team >= 0 && c.game >= 0 && c.place >= 0 && c.kill >= 0:
		c.convention = ConventionLong
	}
	return c
}

// parseInt accepts integers and integral floats ("12", "12.0"), blank is zero
func parseInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	f = math.Round(f)
	// float64(math.MaxInt) rounds up to 2^63, itself out of range
	if f < math.MinInt || f >= math.MaxInt {
		return 0, fmt.Errorf("not a number: %q out of range", s)
	}
	return int(f), nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// Records parses the table into wide records, normalizing the long convention
// Invalid rows are skipped and logged; the caller decides if zero records is fatal
func (t Table) Records() ([]Record, int, error) {
	cols := detect(t.Header)
	switch cols.convention {
	case ConventionWide:
		recs, maxGames := parseWide(t.Rows, cols)
		return recs, maxGames, nil
	case ConventionLong:
		recs, maxGames := parseLong(t.Rows, cols)
		return recs, maxGames, nil
	default:
		return nil, 0, fmt.Errorf("unrecognized column convention in header %v", t.Header)
	}
}

func parseWide(rows [][]string, cols columns) ([]Record, int) {
	recs := make([]Record, 0, len(rows))
	seen := make(map[string]bool, len(rows))

rows:
	for i, row := range rows {
		team := strings.TrimSpace(cell(row, cols.team))
		if team == "" {
			continue
		}
		if seen[team] {
			log.Printf("score: row %d: duplicate team %q skipped", i+1, team)
			continue
		}

		rec := Record{
			Team:      team,
			Placement: make([]int, cols.maxGames),
			Kills:     make([]int, cols.maxGames),
		}
		for g := 1; g <= cols.maxGames; g++ {
			p, err := parseInt(cell(row, colOr(cols.placement, g)))
			if err != nil {
				log.Printf("score: row %d (%s): game %d placement: %v", i+1, team, g, err)
				continue rows
			}
			k, err := parseInt(cell(row, colOr(cols.kills, g)))
			if err != nil {
				log.Printf("score: row %d (%s): game %d kills: %v", i+1, team, g, err)
				continue rows
			}
			rec.Placement[g-1] = p
			rec.Kills[g-1] = k
		}
		if cols.total >= 0 && strings.TrimSpace(cell(row, cols.total)) != "" {
			total, err := parseInt(cell(row, cols.total))
			if err == nil {
				rec.Total = total
				rec.HasTotal = true
			}
		}
		seen[team] = true
		recs = append(recs, rec)
	}
	return recs, cols.maxGames
}

func colOr(m map[int]int, g int) int {
	if i, ok := m[g]; ok {
		return i
	}
	return -1
}

func parseLong(rows [][]string, cols columns) ([]Record, int) {
	type gameScore struct{ p, k int }
	order := make([]string, 0)
	byTeam := make(map[string]map[int]gameScore)
	maxGames := 0

	for i, row := range rows {
		team := strings.TrimSpace(cell(row, cols.team))
		if team == "" {
			continue
		}
		g, err := parseInt(cell(row, cols.game))
		if err != nil || g < 1 {
			log.Printf("score: row %d (%s): invalid game number %q", i+1, team, cell(row, cols.game))
			continue
		}
		if g > MaxGameNumber {
			log.Printf("score: row %d (%s): game %d above %d skipped", i+1, team, g, MaxGameNumber)
			continue
		}
		p, err := parseInt(cell(row, cols.place))
		if err != nil {
			log.Printf("score: row %d (%s): placement: %v", i+1, team, err)
			continue
		}
		k, err := parseInt(cell(row, cols.kill))
		if err != nil {
			log.Printf("score: row %d (%s): kills: %v", i+1, team, err)
			continue
		}

		games, ok := byTeam[team]
		if !ok {
			games = make(map[int]gameScore)
			byTeam[team] = games
			order = append(order, team)
		}
		if _, dup := games[g]; dup {
			log.Printf("score: row %d (%s): game %d repeated, last row wins", i+1, team, g)
		}
		games[g] = gameScore{p, k}
		maxGames = max(maxGames, g)
	}

	recs := make([]Record, 0, len(order))
	for _, team := range order {
		rec := Record{
			Team:      team,
			Placement: make([]int, maxGames),
			Kills:     make([]int, maxGames),
		}
		for g, s := range byTeam[team] {
			rec.Placement[g-1] = s.p
			rec.Kills[g-1] = s.k
		}
		recs = append(recs, rec)
	}
	return recs, maxGames
}
