package domain

import "strings"

// Activity is one step in the user's recommendation chain. ID is the stable
// join key against the recommendation service; Name falls back to ID when
// the service omits a label.
type Activity struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	WeeklyPlan string `json:"weeklyPlan"`
}

// Chain is the ordered history of activities shown to the user, oldest
// first. Append only. The last element is the frontier: every finish action
// advances from it no matter which card the user tapped. Repeated ids are
// legal; the chain itself is never deduplicated.
type Chain []Activity

// Frontier returns the last element of the chain. ok is false for an empty
// chain.
func (c Chain) Frontier() (Activity, bool) {
	if len(c) == 0 {
		return Activity{}, false
	}
	return c[len(c)-1], true
}

// Append returns a new chain with a appended. The receiver is not mutated;
// callers always hand out fresh snapshots.
func (c Chain) Append(a Activity) Chain {
	out := make(Chain, 0, len(c)+1)
	out = append(out, c...)
	return append(out, a)
}

// IDs returns the activity ids in chain order.
func (c Chain) IDs() []string {
	out := make([]string, 0, len(c))
	for _, a := range c {
		out = append(out, a.ID)
	}
	return out
}

// FinishedSet holds the ids the user has explicitly completed, in the order
// they were marked. Membership is idempotent.
type FinishedSet []string

func (s FinishedSet) Contains(id string) bool {
	for _, v := range s {
		if v == id {
			return true
		}
	}
	return false
}

// Add returns the set with id included. Adding an existing id is a no-op.
func (s FinishedSet) Add(id string) FinishedSet {
	if s.Contains(id) {
		return s
	}
	return append(s, id)
}

// BuildExcludeIDs unions the finished set with the current activity id,
// deduplicated. Order is not significant to the service contract but is kept
// stable (finished order, current id last when new) so requests are
// reproducible.
func BuildExcludeIDs(currentID string, finished FinishedSet) []string {
	out := make([]string, 0, len(finished)+1)
	seen := make(map[string]bool, len(finished)+1)
	for _, id := range finished {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	if currentID != "" && !seen[currentID] {
		out = append(out, currentID)
	}
	return out
}
