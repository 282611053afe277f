package normalizer

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/desertthunder/wicket/internal/models"
)

// tossSeparator splits "India elected to bat" into winner and decision.
const tossSeparator = " elected to "

const (
	checkpointStep = 5
	checkpointMax  = 50
)

// Normalize builds a snapshot from raw provider bytes. Invalid JSON yields an empty snapshot.
func Normalize(data []byte, fetchedAt time.Time) *models.Snapshot {
	var root gjson.Result
	if gjson.ValidBytes(data) {
		root = gjson.ParseBytes(data)
	}
	return FromResult(root, fetchedAt)
}

// FromResult builds a snapshot from an already parsed document.
func FromResult(root gjson.Result, fetchedAt time.Time) *models.Snapshot {
	innings, teams := readInnings(root.Get("scoreCard"))

	header := readHeader(root)
	header.Teams = teams

	return &models.Snapshot{
		Header:    header,
		Innings:   innings,
		Progress:  synthesizeProgress(innings),
		FetchedAt: fetchedAt,
	}
}

func readHeader(root gjson.Result) models.MatchHeader {
	return models.MatchHeader{
		MatchID:     integer(pick(root, "matchId", "matchHeader.matchId")),
		SeriesID:    integer(pick(root, "seriesId", "matchHeader.seriesId")),
		SeriesName:  text(pick(root, "seriesName", "matchHeader.seriesName")),
		Description: text(pick(root, "matchDesc", "matchHeader.matchDescription")),
		Format:      text(pick(root, "matchType", "matchHeader.matchFormat")),
		Status:      text(pick(root, "status", "matchHeader.status")),
		Venue: models.Venue{
			Name:    text(root.Get("venueInfo.ground")),
			City:    text(root.Get("venueInfo.city")),
			Country: text(root.Get("venueInfo.country")),
		},
		Date: text(root.Get("matchHeader.matchDate")),
		Toss: readToss(root),
	}
}

// readToss prefers the flat tossInfo sentence and falls back to the structured form.
func readToss(root gjson.Result) models.Toss {
	if info := root.Get("tossInfo"); info.Exists() {
		winner, decision, ok := strings.Cut(text(info), tossSeparator)
		if !ok {
			return models.Toss{}
		}
		return models.Toss{Winner: strings.TrimSpace(winner), Decision: strings.TrimSpace(decision)}
	}

	return models.Toss{
		Winner:   text(root.Get("matchHeader.tossResults.tossWinnerName")),
		Decision: strings.ToLower(text(root.Get("matchHeader.tossResults.decision"))),
	}
}

func readInnings(card gjson.Result) ([]models.Innings, []models.Team) {
	if !card.IsArray() {
		return []models.Innings{}, []models.Team{}
	}

	innings := []models.Innings{}
	teams := []models.Team{}
	seen := make(map[int64]bool)
	addTeam := func(team models.Team) {
		if (team.ID == 0 && team.Name == "") || seen[team.ID] {
			return
		}
		seen[team.ID] = true
		teams = append(teams, team)
	}

	for _, entry := range card.Array() {
		bat := entry.Get("batTeamDetails")
		bowl := entry.Get("bowlTeamDetails")
		score := entry.Get("scoreDetails")

		batting := models.Team{
			ID:        integer(bat.Get("batTeamId")),
			Name:      text(bat.Get("batTeamName")),
			ShortName: text(bat.Get("batTeamShortName")),
		}
		addTeam(batting)
		addTeam(models.Team{
			ID:        integer(bowl.Get("bowlTeamId")),
			Name:      text(bowl.Get("bowlTeamName")),
			ShortName: text(bowl.Get("bowlTeamShortName")),
		})

		innings = append(innings, models.Innings{
			ID:      integer(entry.Get("inningsId")),
			TeamID:  batting.ID,
			Team:    batting.Name,
			Overs:   overs(score.Get("overs")),
			Runs:    int(integer(score.Get("runs"))),
			Wickets: int(integer(score.Get("wickets"))),
			Batsmen: readBatsmen(bat.Get("batsmenData")),
			Bowlers: readBowlers(bowl.Get("bowlersData")),
		})
	}

	if ordered(innings) {
		sort.SliceStable(innings, func(i, j int) bool { return innings[i].ID < innings[j].ID })
	}
	return innings, teams
}

// ordered reports whether every innings carries an id to sort by.
func ordered(innings []models.Innings) bool {
	for _, in := range innings {
		if in.ID <= 0 {
			return false
		}
	}
	return len(innings) > 1
}

// readBatsmen walks batsmenData in document order, one record per entry.
func readBatsmen(data gjson.Result) []models.Batsman {
	batsmen := []models.Batsman{}
	each(data, func(v gjson.Result) {
		batsmen = append(batsmen, models.Batsman{
			Name:  text(v.Get("batName")),
			Runs:  int(integer(v.Get("runs"))),
			Balls: int(integer(v.Get("balls"))),
			Fours: int(integer(v.Get("fours"))),
			Sixes: int(integer(v.Get("sixes"))),
		})
	})
	return batsmen
}

func readBowlers(data gjson.Result) []models.Bowler {
	bowlers := []models.Bowler{}
	each(data, func(v gjson.Result) {
		bowlers = append(bowlers, models.Bowler{
			Name:    text(v.Get("bowlName")),
			Overs:   overs(v.Get("overs")),
			Maidens: int(integer(v.Get("maidens"))),
			Runs:    int(integer(v.Get("runs"))),
			Wickets: int(integer(v.Get("wickets"))),
		})
	})
	return bowlers
}

// each visits the values of an object or array. Scalars have no entries.
func each(r gjson.Result, fn func(gjson.Result)) {
	if !r.IsObject() && !r.IsArray() {
		return
	}
	r.ForEach(func(_, v gjson.Result) bool {
		fn(v)
		return true
	})
}

// pick returns the first path that exists in r.
func pick(r gjson.Result, paths ...string) gjson.Result {
	for _, p := range paths {
		if v := r.Get(p); v.Exists() {
			return v
		}
	}
	return gjson.Result{}
}

func text(r gjson.Result) string {
	if r.Type != gjson.String {
		return ""
	}
	return r.Str
}

func integer(r gjson.Result) int64 {
	switch r.Type {
	case gjson.Number:
		if math.IsNaN(r.Num) || math.IsInf(r.Num, 0) {
			return 0
		}
		return r.Int()
	case gjson.String:
		s := strings.TrimSpace(r.Str)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return int64(f)
		}
	}
	return 0
}

func overs(r gjson.Result) models.Overs {
	switch r.Type {
	case gjson.Number:
		return models.OversFromFloat(r.Num)
	case gjson.String:
		return models.ParseOvers(r.Str)
	}
	return 0
}
