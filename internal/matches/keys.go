package matches

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hetulpatel/moneylinearb/internal/collectors"
	"github.com/hetulpatel/moneylinearb/internal/hashutil"
)

// PairID builds an order-independent identifier for a bookmaker/market event pair.
func PairID(book, market collectors.Event) string {
	return hashutil.HashSet(
		fmt.Sprintf("%s:%s", collectors.SourceBookmaker, book.ID),
		fmt.Sprintf("%s:%s", collectors.SourceMarket, market.ID),
	)
}

// VerdictCacheKey identifies one ambiguity: the target event and the exact set of
// candidate IDs it tied between. Candidate order does not matter.
func VerdictCacheKey(target collectors.Event, candidates []collectors.Event) string {
	if len(candidates) == 0 {
		return ""
	}
	ids := make([]string, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.ID)
	}
	sort.Strings(ids)
	return hashutil.HashStrings(
		target.ID,
		strings.ToLower(target.SideA),
		strings.ToLower(target.SideB),
		strings.Join(ids, ","),
	)
}
