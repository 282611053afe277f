package models

import (
	"strconv"
	"time"
)

// Venue is where the match is played.
type Venue struct {
	Name    string `json:"name"`
	City    string `json:"city"`
	Country string `json:"country"`
}

// Toss is the toss result split into the winning side and its decision.
type Toss struct {
	Winner   string `json:"winner"`
	Decision string `json:"decision"`
}

// Team is a side appearing in the match.
type Team struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
}

// MatchHeader describes the match itself.
type MatchHeader struct {
	MatchID     int64  `json:"matchId"`
	SeriesID    int64  `json:"seriesId"`
	SeriesName  string `json:"seriesName"`
	Description string `json:"matchDescription"`
	Format      string `json:"matchFormat"`
	Status      string `json:"status"`
	Venue       Venue  `json:"venue"`
	Date        string `json:"matchDate"`
	Toss        Toss   `json:"tossResults"`
	Teams       []Team `json:"teams"`
}

// Batsman holds one batter's figures. runs >= 4*fours + 6*sixes is not enforced.
type Batsman struct {
	Name  string `json:"name"`
	Runs  int    `json:"runs"`
	Balls int    `json:"balls"`
	Fours int    `json:"fours"`
	Sixes int    `json:"sixes"`
}

// StrikeRate is runs per hundred balls faced.
func (b Batsman) StrikeRate() float64 {
	if b.Balls == 0 {
		return 0
	}
	return float64(b.Runs) * 100 / float64(b.Balls)
}

// Bowler holds one bowler's figures.
type Bowler struct {
	Name    string `json:"name"`
	Overs   Overs  `json:"overs"`
	Maidens int    `json:"maidens"`
	Runs    int    `json:"runs"`
	Wickets int    `json:"wickets"`
}

// Economy is runs conceded per over.
func (b Bowler) Economy() float64 {
	return RunRate(b.Runs, b.Overs)
}

// Innings is one batting side's innings.
type Innings struct {
	ID      int64     `json:"inningsId"`
	TeamID  int64     `json:"teamId"`
	Team    string    `json:"team"`
	Overs   Overs     `json:"overs"`
	Runs    int       `json:"runs"`
	Wickets int       `json:"wickets"`
	Batsmen []Batsman `json:"batsmen"`
	Bowlers []Bowler  `json:"bowlers"`
}

// RunRate is the innings' runs per over.
func (i Innings) RunRate() float64 {
	return RunRate(i.Runs, i.Overs)
}

// Score renders "runs/wickets (overs)".
func (i Innings) Score() string {
	return strconv.Itoa(i.Runs) + "/" + strconv.Itoa(i.Wickets) + " (" + i.Overs.String() + ")"
}

// Checkpoint is the cumulative score of both sides at a given over.
// Team2Runs is nil when the second side had not reached that over.
type Checkpoint struct {
	Over      int  `json:"over"`
	Team1Runs int  `json:"team1Score"`
	Team2Runs *int `json:"team2Score,omitempty"`
}

// MatchProgress is a synthesized over-by-over series. The provider sends only
// final totals, so each checkpoint assumes a linear scoring rate and
// Interpolated is set to say so.
type MatchProgress struct {
	Interpolated bool         `json:"interpolated"`
	Checkpoints  []Checkpoint `json:"overByOver"`
}

// Snapshot is the normalized state of one match at FetchedAt.
type Snapshot struct {
	Header    MatchHeader   `json:"matchHeader"`
	Innings   []Innings     `json:"innings"`
	Progress  MatchProgress `json:"matchProgress"`
	FetchedAt time.Time     `json:"fetchedAt"`
}

// InningsAt returns the innings at index i, or false when out of range.
func (s *Snapshot) InningsAt(i int) (Innings, bool) {
	if s == nil || i < 0 || i >= len(s.Innings) {
		return Innings{}, false
	}
	return s.Innings[i], true
}

// Empty reports whether the snapshot carries no innings and no match id.
func (s *Snapshot) Empty() bool {
	return s == nil || (len(s.Innings) == 0 && s.Header.MatchID == 0)
}
