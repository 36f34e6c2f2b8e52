// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package tabulate computes results for ranked, single-choice and plurality polls.

# Ranked Ballots

A Ballot maps option IDs to ranks, 0 being the first preference. Options
missing from the map, or carrying a negative rank, are unranked on that
ballot. ValidateBallot rejects unknown options and duplicate ranks; Calculate
validates every ballot before any counting starts.

# Methods

Both methods run in rounds over first preferences among the options that are
still unresolved. A leader with more than half of the ballots cast that round
wins, as does the leader when no more options remain than open seats.
Otherwise one option is eliminated:

  - irv: the option with the fewest first preferences
  - coombs: the option ranked last by the most ballots

Ties are resolved by option order: the earlier-listed option leads and the
later-listed option is eliminated. Tabulation ends once enough winners are
found or a round has no ballots cast.

	winners, err := tabulate.Calculate(tabulate.MethodIRV, optionIDs, ballots, 1)

Calculate never modifies the ballots it is given. Nothing in this package
logs.
*/
package tabulate
