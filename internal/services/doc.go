// Package services implements [MatchFetcher] for the Cricbuzz scorecard API on RapidAPI.
//
// # Request
//
// [CricbuzzClient.FetchMatch] issues one GET to
//
//	{base}/mcenter/v1/{matchID}/hscard
//
// with the x-rapidapi-key and x-rapidapi-host headers and a 10 second
// deadline. A token bucket (golang.org/x/time/rate) spaces calls to protect
// the RapidAPI quota; time spent waiting on it counts against the deadline.
//
// # Error Handling
//
// Every failure is marked with exactly one fetch error from the shared package:
//   - [shared.ErrNetwork] : transport failure or timeout
//   - [shared.ErrRateLimited] : HTTP 429, with a hint that limits reset after 24 hours
//   - [shared.ErrProvider] : any other non-200 status
//   - [shared.ErrDecode] : a 200 whose body is not JSON
//
// A 200 with valid JSON is always handed to the normalizer, which never fails.
package services
