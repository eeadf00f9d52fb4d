package imapbox

import (
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-imap"
)

// searchSpec is the IMAP rendition of one mailbox search query.
type searchSpec struct {
	folder   string
	criteria *imap.SearchCriteria
}

// parseQuery translates the Gmail-style query mini-language into an IMAP
// folder + search criteria. Supported terms: is:unread, -is:unread, in:trash,
// older_than:<N>d|m|y. Category terms have no IMAP equivalent and do not
// narrow the search; the unread predicate attached to them still applies.
func parseQuery(query string, trashFolder string, now time.Time) searchSpec {
	spec := searchSpec{
		folder:   "INBOX",
		criteria: imap.NewSearchCriteria(),
	}

	for _, term := range strings.Fields(query) {
		switch {
		case term == "is:unread":
			spec.criteria.WithoutFlags = append(spec.criteria.WithoutFlags, imap.SeenFlag)
		case term == "-is:unread":
			spec.criteria.WithFlags = append(spec.criteria.WithFlags, imap.SeenFlag)
		case term == "in:trash":
			spec.folder = trashFolder
		case strings.HasPrefix(term, "older_than:"):
			if before, ok := parseAge(strings.TrimPrefix(term, "older_than:"), now); ok {
				spec.criteria.Before = before
			}
		case strings.HasPrefix(term, "category:"):
			// no category taxonomy in plain IMAP
		}
	}

	return spec
}

// parseAge turns an age like "30d", "6m" or "1y" into the matching cutoff.
func parseAge(age string, now time.Time) (time.Time, bool) {
	if len(age) < 2 {
		return time.Time{}, false
	}

	n, err := strconv.Atoi(age[:len(age)-1])
	if err != nil || n < 0 {
		return time.Time{}, false
	}

	switch age[len(age)-1] {
	case 'd':
		return now.AddDate(0, 0, -n), true
	case 'm':
		return now.AddDate(0, -n, 0), true
	case 'y':
		return now.AddDate(-n, 0, 0), true
	}
	return time.Time{}, false
}
