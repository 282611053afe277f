// Package normalizer turns a Cricbuzz scorecard document into a [models.Snapshot].
//
// [Normalize] never fails. The document is read with gjson, every path is
// optional, and each leaf goes through one of three extraction helpers that
// fall back to the zero value:
//
//   - text: strings only
//   - integer: numbers, or strings holding a clean number
//   - overs: numbers, or strings in overs notation with trailing markers ("14.3*")
//
// Header fields are read from the top level first and then from the nested
// matchHeader object, so both shapes the provider has used are accepted.
//
// # Progress
//
// The provider reports only final innings totals. When exactly two innings are
// present a checkpoint series at overs 5, 10, ... 50 is synthesized assuming a
// linear scoring rate, and [models.MatchProgress.Interpolated] is set.
package normalizer
