package testing

// Scorecard is a two-innings hscard document in the flat shape, with one
// bowler's overs sent as a string carrying a "*" marker.
const Scorecard = `{
  "matchId": 41881,
  "seriesId": 7607,
  "seriesName": "ICC Cricket World Cup 2023",
  "matchDesc": "Final",
  "matchType": "ODI",
  "status": "Australia won by 6 wkts",
  "venueInfo": {"ground": "Narendra Modi Stadium", "city": "Ahmedabad", "country": "India"},
  "matchHeader": {"matchDate": "2023-11-19"},
  "tossInfo": "Australia elected to bowl",
  "scoreCard": [
    {
      "inningsId": 1,
      "batTeamDetails": {
        "batTeamId": 2,
        "batTeamName": "India",
        "batTeamShortName": "IND",
        "batsmenData": {
          "bat_1": {"batName": "Rohit Sharma", "runs": 47, "balls": 31, "fours": 4, "sixes": 3},
          "bat_2": {"batName": "Shubman Gill", "runs": 4, "balls": 7, "fours": 0, "sixes": 0},
          "bat_3": {"batName": "Virat Kohli", "runs": "54", "balls": 63, "fours": 4, "sixes": 0}
        }
      },
      "bowlTeamDetails": {
        "bowlTeamId": 4,
        "bowlTeamName": "Australia",
        "bowlTeamShortName": "AUS",
        "bowlersData": {
          "bowl_1": {"bowlName": "Mitchell Starc", "overs": 10, "maidens": 0, "runs": 55, "wickets": 3},
          "bowl_2": {"bowlName": "Pat Cummins", "overs": "9.4*", "maidens": 0, "runs": 34, "wickets": 2}
        }
      },
      "scoreDetails": {"overs": 50, "runs": 240, "wickets": 10}
    },
    {
      "inningsId": 2,
      "batTeamDetails": {
        "batTeamId": 4,
        "batTeamName": "Australia",
        "batTeamShortName": "AUS",
        "batsmenData": {
          "bat_1": {"batName": "Travis Head", "runs": 137, "balls": 120, "fours": 15, "sixes": 4}
        }
      },
      "bowlTeamDetails": {
        "bowlTeamId": 2,
        "bowlTeamName": "India",
        "bowlTeamShortName": "IND",
        "bowlersData": {
          "bowl_1": {"bowlName": "Jasprit Bumrah", "overs": 9, "maidens": 2, "runs": 43, "wickets": 2}
        }
      },
      "scoreDetails": {"overs": "43", "runs": 241, "wickets": 4}
    }
  ]
}`

// NestedScorecard uses the nested matchHeader shape and structured toss results.
const NestedScorecard = `{
  "matchHeader": {
    "matchId": 100,
    "seriesId": 9,
    "seriesName": "Test Series",
    "matchDescription": "1st T20I",
    "matchFormat": "T20",
    "status": "In Progress",
    "matchDate": "2026-10-15",
    "tossResults": {"tossWinnerName": "England", "decision": "Batting"}
  },
  "scoreCard": [
    {
      "inningsId": 1,
      "batTeamDetails": {"batTeamId": 9, "batTeamName": "England", "batsmenData": {}},
      "bowlTeamDetails": {"bowlTeamId": 3, "bowlTeamName": "Pakistan", "bowlersData": {}},
      "scoreDetails": {"overs": 14.3, "runs": 120, "wickets": 3}
    }
  ]
}`
